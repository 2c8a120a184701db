package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/shenikar/ghostnet/internal/models"
	"github.com/shenikar/ghostnet/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres поднимает PostgreSQL в контейнере и применяет миграции проекта
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "ghostnet",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
			return fmt.Sprintf("postgres://test:test@%s:%s/ghostnet?sslmode=disable", host, port.Port())
		}),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/ghostnet?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := stdlib.OpenDBFromPool(pool)
	t.Cleanup(func() { _ = db.Close() })

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	require.NoError(t, err)

	_, currentFile, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")
	migrationsPath := "file://" + filepath.Join(projectRoot, "migrations")

	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "pgx5", driver)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return pool
}

func TestStore_Catalog(t *testing.T) {
	store := NewStore(setupPostgres(t))
	ctx := context.Background()

	roles, err := store.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, models.RoleAnonymousReporter, roles[0].Code)

	relevant := true
	statuses, err := store.ListStatuses(ctx, models.StatusFilter{RelevantForRecovery: &relevant})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, models.StatusReported, statuses[0].Code)
	assert.Equal(t, models.StatusRecoveryPending, statuses[1].Code)

	t.Run("Create update delete status", func(t *testing.T) {
		status := &models.Status{Code: "archived", Description: "Archived"}
		require.NoError(t, store.SaveStatus(ctx, status))
		require.NotZero(t, status.ID)

		status.Description = "Archived for good"
		require.NoError(t, store.SaveStatus(ctx, status))

		found, err := store.ListStatuses(ctx, models.StatusFilter{Description: "FOR GOOD"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, status.ID, found[0].ID)

		require.NoError(t, store.DeleteStatus(ctx, status.ID))
		_, err = store.GetStatus(ctx, status.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Unknown ids", func(t *testing.T) {
		_, err := store.GetRole(ctx, 999)
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = store.GetStatusByCode(ctx, "archived")
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.ErrorIs(t, store.SaveRole(ctx, &models.Role{ID: 999, Code: "ghost"}), models.ErrNotFound)
		assert.ErrorIs(t, store.DeleteRole(ctx, 999), models.ErrNotFound)
	})
}

func TestStore_PersonsAndReports(t *testing.T) {
	store := NewStore(setupPostgres(t))
	ctx := context.Background()

	reporterRole, err := store.GetRoleByCode(ctx, models.RoleReporter)
	require.NoError(t, err)
	reported, err := store.GetStatusByCode(ctx, models.StatusReported)
	require.NoError(t, err)
	lost, err := store.GetStatusByCode(ctx, models.StatusLost)
	require.NoError(t, err)

	alice := &models.Person{Name: "Alice", TelephoneNumber: "+49 100", RoleID: &reporterRole.ID}
	require.NoError(t, store.SavePerson(ctx, alice))
	require.NotEqual(t, uuid.Nil, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	first := models.NewReport(alice, reported)
	first.Latitude, first.Longitude = 54.32, 10.13
	first.Size = "large"
	require.NoError(t, store.SaveReport(ctx, first))

	second := models.NewReport(alice, lost)
	require.NoError(t, store.SaveReport(ctx, second))

	t.Run("Round trip", func(t *testing.T) {
		got, err := store.GetReport(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, reported.ID, *got.StatusID)
		assert.Equal(t, alice.ID, *got.ReportingPersonID)
		assert.Nil(t, got.RecoveringPersonID)
		assert.InDelta(t, 54.32, got.Latitude, 1e-9)
		assert.Equal(t, "large", got.Size)
	})

	t.Run("Filter by status set", func(t *testing.T) {
		reports, err := store.ListReports(ctx, models.ReportFilter{StatusIDs: []int64{lost.ID}})
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, second.ID, reports[0].ID)

		reports, err = store.ListReports(ctx, models.ReportFilter{ReportingPersonID: &alice.ID, PageSize: 1})
		require.NoError(t, err)
		assert.Len(t, reports, 1)
	})

	t.Run("Persons by role", func(t *testing.T) {
		persons, err := store.ListPersons(ctx, models.PersonFilter{RoleID: &reporterRole.ID, Name: "ALI"})
		require.NoError(t, err)
		require.Len(t, persons, 1)
		assert.Equal(t, alice.ID, persons[0].ID)
	})

	t.Run("Foreign key keeps referenced rows", func(t *testing.T) {
		err := store.DeletePerson(ctx, alice.ID)
		var storeErr *models.StoreError
		assert.ErrorAs(t, err, &storeErr)

		err = store.DeleteStatus(ctx, reported.ID)
		assert.ErrorAs(t, err, &storeErr)
	})

	t.Run("Update unknown report", func(t *testing.T) {
		err := store.SaveReport(ctx, &models.Report{ID: uuid.New()})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestStore_WithinTx(t *testing.T) {
	store := NewStore(setupPostgres(t))
	ctx := context.Background()

	reporterRole, err := store.GetRoleByCode(ctx, models.RoleReporter)
	require.NoError(t, err)

	t.Run("Rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		var created *models.Person
		err := store.WithinTx(ctx, func(tx service.Repository) error {
			created = &models.Person{Name: "Bob", TelephoneNumber: "+49 200", RoleID: &reporterRole.ID}
			if err := tx.SavePerson(ctx, created); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = store.GetPerson(ctx, created.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Commit detach and delete", func(t *testing.T) {
		carol := &models.Person{Name: "Carol", TelephoneNumber: "+49 300", RoleID: &reporterRole.ID}
		require.NoError(t, store.SavePerson(ctx, carol))

		err := store.WithinTx(ctx, func(tx service.Repository) error {
			carol.DetachRole()
			if err := tx.SavePerson(ctx, carol); err != nil {
				return err
			}
			return tx.DeletePerson(ctx, carol.ID)
		})
		require.NoError(t, err)

		_, err = store.GetPerson(ctx, carol.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
