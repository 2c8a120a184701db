package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/ghostnet/internal/models"
	"github.com/shenikar/ghostnet/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock возвращает часы, которые сдвигаются на секунду при каждом вызове
func fixedClock() func() time.Time {
	current := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newSeededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.now = fixedClock()
	s.Seed()
	return s
}

func mustStatus(t *testing.T, s *Store, code string) *models.Status {
	t.Helper()
	status, err := s.GetStatusByCode(context.Background(), code)
	require.NoError(t, err)
	return status
}

func mustRole(t *testing.T, s *Store, code string) *models.Role {
	t.Helper()
	role, err := s.GetRoleByCode(context.Background(), code)
	require.NoError(t, err)
	return role
}

func savePerson(t *testing.T, s *Store, name string, roleID int64) *models.Person {
	t.Helper()
	person := &models.Person{Name: name, TelephoneNumber: "+49 100", RoleID: &roleID}
	require.NoError(t, s.SavePerson(context.Background(), person))
	return person
}

func saveReport(t *testing.T, s *Store, reporter *models.Person, status *models.Status) *models.Report {
	t.Helper()
	report := models.NewReport(reporter, status)
	require.NoError(t, s.SaveReport(context.Background(), report))
	return report
}

func TestSeed(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	roles, err := s.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, models.RoleAnonymousReporter, roles[0].Code)
	assert.Equal(t, models.RoleRecoverer, roles[2].Code)

	statuses, err := s.ListStatuses(ctx, models.StatusFilter{})
	require.NoError(t, err)
	require.Len(t, statuses, 4)
	assert.Equal(t, int64(4), statuses[0].ID)
	assert.True(t, statuses[0].RelevantForRecovery)
	assert.True(t, statuses[1].RelevantForRecovery)
	assert.False(t, statuses[2].RelevantForRecovery)
	assert.False(t, statuses[3].RelevantForRecovery)
}

func TestStatusCatalog(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	t.Run("Filter by description and relevance", func(t *testing.T) {
		relevant := true
		statuses, err := s.ListStatuses(ctx, models.StatusFilter{RelevantForRecovery: &relevant})
		require.NoError(t, err)
		assert.Len(t, statuses, 2)

		statuses, err = s.ListStatuses(ctx, models.StatusFilter{Description: "RECOVER"})
		require.NoError(t, err)
		require.Len(t, statuses, 2)
		assert.Equal(t, models.StatusRecoveryPending, statuses[0].Code)
		assert.Equal(t, models.StatusRecovered, statuses[1].Code)
	})

	t.Run("Duplicate code", func(t *testing.T) {
		err := s.SaveStatus(ctx, &models.Status{Code: models.StatusLost})
		var storeErr *models.StoreError
		assert.ErrorAs(t, err, &storeErr)
	})

	t.Run("Update unknown", func(t *testing.T) {
		err := s.SaveStatus(ctx, &models.Status{ID: 999, Code: "archived"})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Create and delete", func(t *testing.T) {
		status := &models.Status{Code: "archived", Description: "Archived"}
		require.NoError(t, s.SaveStatus(ctx, status))
		assert.NotZero(t, status.ID)

		require.NoError(t, s.DeleteStatus(ctx, status.ID))
		_, err := s.GetStatus(ctx, status.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestSavePerson(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()
	reporter := mustRole(t, s, models.RoleReporter)

	t.Run("Create assigns ID and timestamps", func(t *testing.T) {
		person := savePerson(t, s, "Alice", reporter.ID)
		assert.NotEqual(t, uuid.Nil, person.ID)
		assert.False(t, person.CreatedAt.IsZero())
		assert.Equal(t, person.CreatedAt, person.UpdatedAt)
	})

	t.Run("Update keeps CreatedAt", func(t *testing.T) {
		person := savePerson(t, s, "Bob", reporter.ID)
		created := person.CreatedAt

		person.Name = "Robert"
		person.CreatedAt = time.Time{}
		require.NoError(t, s.SavePerson(ctx, person))
		assert.Equal(t, created, person.CreatedAt)
		assert.True(t, person.UpdatedAt.After(created))

		stored, err := s.GetPerson(ctx, person.ID)
		require.NoError(t, err)
		assert.Equal(t, "Robert", stored.Name)
	})

	t.Run("Unknown role", func(t *testing.T) {
		roleID := int64(999)
		err := s.SavePerson(ctx, &models.Person{Name: "Ghost", RoleID: &roleID})
		var storeErr *models.StoreError
		assert.ErrorAs(t, err, &storeErr)
	})

	t.Run("Update unknown person", func(t *testing.T) {
		err := s.SavePerson(ctx, &models.Person{ID: uuid.New(), Name: "Nobody"})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Returned copies are isolated", func(t *testing.T) {
		person := savePerson(t, s, "Carol", reporter.ID)
		stored, err := s.GetPerson(ctx, person.ID)
		require.NoError(t, err)

		*stored.RoleID = 999
		again, err := s.GetPerson(ctx, person.ID)
		require.NoError(t, err)
		assert.Equal(t, reporter.ID, *again.RoleID)
	})
}

func TestListPersons(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()
	reporter := mustRole(t, s, models.RoleReporter)
	recoverer := mustRole(t, s, models.RoleRecoverer)

	savePerson(t, s, "Zoe", recoverer.ID)
	savePerson(t, s, "Anna", recoverer.ID)
	savePerson(t, s, "Mark", reporter.ID)

	persons, err := s.ListPersons(ctx, models.PersonFilter{RoleID: &recoverer.ID})
	require.NoError(t, err)
	require.Len(t, persons, 2)
	assert.Equal(t, "Anna", persons[0].Name)
	assert.Equal(t, "Zoe", persons[1].Name)

	persons, err = s.ListPersons(ctx, models.PersonFilter{Name: "ar"})
	require.NoError(t, err)
	require.Len(t, persons, 1)
	assert.Equal(t, "Mark", persons[0].Name)

	persons, err = s.ListPersons(ctx, models.PersonFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, persons, 1)
	assert.Equal(t, "Zoe", persons[0].Name)

	persons, err = s.ListPersons(ctx, models.PersonFilter{Page: 5, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, persons)
}

func TestListReports(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()
	reporterRole := mustRole(t, s, models.RoleReporter)
	reported := mustStatus(t, s, models.StatusReported)
	lost := mustStatus(t, s, models.StatusLost)

	alice := savePerson(t, s, "Alice", reporterRole.ID)
	bob := savePerson(t, s, "Bob", reporterRole.ID)

	first := saveReport(t, s, alice, reported)
	second := saveReport(t, s, bob, lost)
	third := saveReport(t, s, alice, lost)

	t.Run("Newest first", func(t *testing.T) {
		reports, err := s.ListReports(ctx, models.ReportFilter{})
		require.NoError(t, err)
		require.Len(t, reports, 3)
		assert.Equal(t, third.ID, reports[0].ID)
		assert.Equal(t, second.ID, reports[1].ID)
		assert.Equal(t, first.ID, reports[2].ID)
	})

	t.Run("By status set", func(t *testing.T) {
		reports, err := s.ListReports(ctx, models.ReportFilter{StatusIDs: []int64{reported.ID}})
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, first.ID, reports[0].ID)
	})

	t.Run("By reporting person", func(t *testing.T) {
		reports, err := s.ListReports(ctx, models.ReportFilter{ReportingPersonID: &alice.ID})
		require.NoError(t, err)
		assert.Len(t, reports, 2)
	})

	t.Run("Detached report is excluded from status filter", func(t *testing.T) {
		second.DetachStatus()
		require.NoError(t, s.SaveReport(ctx, second))

		reports, err := s.ListReports(ctx, models.ReportFilter{StatusIDs: []int64{lost.ID}})
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, third.ID, reports[0].ID)
	})
}

func TestSaveReport_ReferenceChecks(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()
	reporterRole := mustRole(t, s, models.RoleReporter)
	reported := mustStatus(t, s, models.StatusReported)
	alice := savePerson(t, s, "Alice", reporterRole.ID)

	unknownStatus := int64(999)
	err := s.SaveReport(ctx, &models.Report{StatusID: &unknownStatus, ReportingPersonID: &alice.ID})
	var storeErr *models.StoreError
	assert.ErrorAs(t, err, &storeErr)

	stranger := uuid.New()
	statusID := reported.ID
	err = s.SaveReport(ctx, &models.Report{StatusID: &statusID, ReportingPersonID: &stranger})
	assert.ErrorAs(t, err, &storeErr)

	err = s.SaveReport(ctx, &models.Report{ID: uuid.New(), StatusID: &statusID})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDelete_ReferencesStillAttached(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()
	reporterRole := mustRole(t, s, models.RoleReporter)
	reported := mustStatus(t, s, models.StatusReported)
	alice := savePerson(t, s, "Alice", reporterRole.ID)
	report := saveReport(t, s, alice, reported)

	var storeErr *models.StoreError
	assert.ErrorAs(t, s.DeleteStatus(ctx, reported.ID), &storeErr)
	assert.ErrorAs(t, s.DeletePerson(ctx, alice.ID), &storeErr)
	assert.ErrorAs(t, s.DeleteRole(ctx, reporterRole.ID), &storeErr)

	require.NoError(t, s.DeleteReport(ctx, report.ID))
	assert.ErrorIs(t, s.DeleteReport(ctx, report.ID), models.ErrNotFound)
	require.NoError(t, s.DeleteStatus(ctx, reported.ID))
	require.NoError(t, s.DeletePerson(ctx, alice.ID))
	require.NoError(t, s.DeleteRole(ctx, reporterRole.ID))
}

func TestWithinTx(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()
	reporterRole := mustRole(t, s, models.RoleReporter)

	t.Run("Commit", func(t *testing.T) {
		var created *models.Person
		err := s.WithinTx(ctx, func(tx service.Repository) error {
			created = &models.Person{Name: "Alice", RoleID: &reporterRole.ID}
			return tx.SavePerson(ctx, created)
		})
		require.NoError(t, err)

		_, err = s.GetPerson(ctx, created.ID)
		assert.NoError(t, err)
	})

	t.Run("Rollback restores snapshot", func(t *testing.T) {
		boom := errors.New("boom")
		var created *models.Person
		err := s.WithinTx(ctx, func(tx service.Repository) error {
			created = &models.Person{Name: "Bob", RoleID: &reporterRole.ID}
			if err := tx.SavePerson(ctx, created); err != nil {
				return err
			}
			recoverer, err := tx.GetRoleByCode(ctx, models.RoleRecoverer)
			if err != nil {
				return err
			}
			if err := tx.DeleteRole(ctx, recoverer.ID); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = s.GetPerson(ctx, created.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = s.GetRoleByCode(ctx, models.RoleRecoverer)
		assert.NoError(t, err)
	})

	t.Run("Rollback keeps writes made outside the transaction", func(t *testing.T) {
		boom := errors.New("boom")
		started := make(chan struct{})
		release := make(chan struct{})
		txDone := make(chan error, 1)
		inside := &models.Person{Name: "Dora", RoleID: &reporterRole.ID}

		go func() {
			txDone <- s.WithinTx(ctx, func(tx service.Repository) error {
				if err := tx.SavePerson(ctx, inside); err != nil {
					return err
				}
				close(started)
				<-release
				return boom
			})
		}()
		<-started

		outside := &models.Person{Name: "Emil", RoleID: &reporterRole.ID}
		writeDone := make(chan error, 1)
		go func() {
			writeDone <- s.SavePerson(ctx, outside)
		}()

		select {
		case err := <-writeDone:
			t.Fatalf("write outside the transaction finished before it ended: %v", err)
		case <-time.After(50 * time.Millisecond):
		}

		close(release)
		assert.ErrorIs(t, <-txDone, boom)
		require.NoError(t, <-writeDone)

		_, err := s.GetPerson(ctx, outside.ID)
		assert.NoError(t, err)
		_, err = s.GetPerson(ctx, inside.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Nested call joins outer transaction", func(t *testing.T) {
		boom := errors.New("boom")
		var created *models.Person
		err := s.WithinTx(ctx, func(tx service.Repository) error {
			err := tx.WithinTx(ctx, func(inner service.Repository) error {
				created = &models.Person{Name: "Carol", RoleID: &reporterRole.ID}
				return inner.SavePerson(ctx, created)
			})
			if err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = s.GetPerson(ctx, created.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
