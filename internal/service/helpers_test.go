package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shenikar/ghostnet/internal/metrics"
	"github.com/shenikar/ghostnet/internal/models"
	"github.com/shenikar/ghostnet/internal/repository/memory"
	"github.com/shenikar/ghostnet/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

// catalogFixture повторяет сидированный каталог статусов
func catalogFixture() []*models.Status {
	return []*models.Status{
		{ID: 4, Code: models.StatusReported, RelevantForRecovery: true},
		{ID: 5, Code: models.StatusRecoveryPending, RelevantForRecovery: true},
		{ID: 6, Code: models.StatusRecovered},
		{ID: 7, Code: models.StatusLost},
	}
}

func roleFixture(code string) *models.Role {
	ids := map[string]int64{
		models.RoleAnonymousReporter: 1,
		models.RoleReporter:          2,
		models.RoleRecoverer:         3,
	}
	return &models.Role{ID: ids[code], Code: code}
}

// testEnv собирает все сервисы поверх хранилища в памяти
type testEnv struct {
	ctx       context.Context
	store     *memory.Store
	metrics   *metrics.Lifecycle
	catalog   service.CatalogService
	persons   service.PersonService
	reports   service.ReportService
	integrity service.IntegrityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	store.Seed()
	return newTestEnvWithRepo(t, store, store)
}

func newTestEnvWithRepo(t *testing.T, store *memory.Store, repo service.Repository) *testEnv {
	t.Helper()

	logger := newTestLogger()
	m := metrics.New(prometheus.NewRegistry())
	catalog := service.NewCatalogService(repo, nil, logger)
	return &testEnv{
		ctx:       context.Background(),
		store:     store,
		metrics:   m,
		catalog:   catalog,
		persons:   service.NewPersonService(repo, logger),
		reports:   service.NewReportService(repo, catalog, m, logger),
		integrity: service.NewIntegrityService(repo, nil, m, logger),
	}
}

func (e *testEnv) role(t *testing.T, code string) *models.Role {
	t.Helper()
	role, err := e.store.GetRoleByCode(e.ctx, code)
	require.NoError(t, err)
	return role
}

func (e *testEnv) status(t *testing.T, code string) *models.Status {
	t.Helper()
	status, err := e.store.GetStatusByCode(e.ctx, code)
	require.NoError(t, err)
	return status
}

func (e *testEnv) person(t *testing.T, name, roleCode string) *models.Person {
	t.Helper()
	roleID := e.role(t, roleCode).ID
	person := &models.Person{
		Name:            name,
		TelephoneNumber: "+49 170 0000000",
		RoleID:          &roleID,
	}
	require.NoError(t, e.persons.CreatePerson(e.ctx, person))
	return person
}

func (e *testEnv) report(t *testing.T, reporter *models.Person) *models.Report {
	t.Helper()
	report := &models.Report{Latitude: 54.32, Longitude: 10.13, Size: "large"}
	require.NoError(t, e.reports.CreateReport(e.ctx, reporter.ID, report))
	return report
}

func (e *testEnv) reload(t *testing.T, id uuid.UUID) *models.Report {
	t.Helper()
	report, err := e.store.GetReport(e.ctx, id)
	require.NoError(t, err)
	return report
}

func statusCodes(statuses []*models.Status) []string {
	codes := make([]string, 0, len(statuses))
	for _, status := range statuses {
		codes = append(codes, status.Code)
	}
	return codes
}
