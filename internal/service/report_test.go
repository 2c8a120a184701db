package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/ghostnet/internal/models"
	"github.com/shenikar/ghostnet/internal/service"
	"github.com/shenikar/ghostnet/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type reportFixture struct {
	repo    *mocks.MockRepository
	catalog *mocks.MockCatalogService
	metrics *mocks.MockMetrics
	service service.ReportService
}

// newTestReportService - вспомогательная функция для создания сервиса с моками.
func newTestReportService(t *testing.T) *reportFixture {
	ctrl := gomock.NewController(t)
	f := &reportFixture{
		repo:    mocks.NewMockRepository(ctrl),
		catalog: mocks.NewMockCatalogService(ctrl),
		metrics: mocks.NewMockMetrics(ctrl),
	}
	f.service = service.NewReportService(f.repo, f.catalog, f.metrics, newTestLogger())
	return f
}

// expectActing настраивает загрузку действующего участника и его роли
func (f *reportFixture) expectActing(ctx context.Context, personID uuid.UUID, role *models.Role) {
	roleID := role.ID
	f.repo.EXPECT().GetPerson(ctx, personID).Return(&models.Person{ID: personID, RoleID: &roleID}, nil).Times(1)
	f.repo.EXPECT().GetRole(ctx, roleID).Return(role, nil).Times(1)
}

func newReportInStatus(status *models.Status) *models.Report {
	statusID := status.ID
	reporterID := uuid.New()
	return &models.Report{
		ID:                uuid.New(),
		StatusID:          &statusID,
		ReportingPersonID: &reporterID,
	}
}

func TestApplyTransition_RecoveryPendingAttachesRecoverer(t *testing.T) {
	// Подготовка
	f := newTestReportService(t)
	ctx := context.Background()
	catalog := catalogFixture()
	report := newReportInStatus(catalog[0])
	recovererID := uuid.New()

	// Ожидания
	f.repo.EXPECT().GetReport(ctx, report.ID).Return(report, nil).Times(1)
	f.expectActing(ctx, recovererID, roleFixture(models.RoleRecoverer))
	f.repo.EXPECT().GetStatus(ctx, int64(4)).Return(catalog[0], nil).Times(1)
	f.catalog.EXPECT().ListStatuses(ctx, models.StatusFilter{}).Return(catalog, nil).Times(1)
	f.repo.EXPECT().
		SaveReport(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, saved *models.Report) error {
			assert.True(t, saved.HasStatus(5))
			require.NotNil(t, saved.RecoveringPersonID)
			assert.Equal(t, recovererID, *saved.RecoveringPersonID)
			return nil
		}).Times(1)
	f.metrics.EXPECT().IncTransition(models.StatusRecoveryPending, "applied").Times(1)

	// Действие
	updated, err := f.service.ApplyTransition(ctx, report.ID, 5, recovererID)

	// Проверки
	require.NoError(t, err)
	assert.True(t, updated.HasStatus(5))
}

func TestApplyTransition_NonRelevantKeepsRecoverer(t *testing.T) {
	f := newTestReportService(t)
	ctx := context.Background()
	catalog := catalogFixture()
	report := newReportInStatus(catalog[1])
	firstRecoverer := uuid.New()
	report.RecoveringPersonID = &firstRecoverer
	secondRecoverer := uuid.New()

	f.repo.EXPECT().GetReport(ctx, report.ID).Return(report, nil).Times(1)
	f.expectActing(ctx, secondRecoverer, roleFixture(models.RoleRecoverer))
	f.repo.EXPECT().GetStatus(ctx, int64(5)).Return(catalog[1], nil).Times(1)
	f.catalog.EXPECT().ListStatuses(ctx, models.StatusFilter{}).Return(catalog, nil).Times(1)
	f.repo.EXPECT().SaveReport(ctx, report).Return(nil).Times(1)
	f.metrics.EXPECT().IncTransition(models.StatusRecovered, "applied").Times(1)

	updated, err := f.service.ApplyTransition(ctx, report.ID, 6, secondRecoverer)

	require.NoError(t, err)
	assert.True(t, updated.HasStatus(6))
	require.NotNil(t, updated.RecoveringPersonID)
	assert.Equal(t, firstRecoverer, *updated.RecoveringPersonID)
}

func TestApplyTransition_UnauthorizedLeavesReportUntouched(t *testing.T) {
	f := newTestReportService(t)
	ctx := context.Background()
	catalog := catalogFixture()
	report := newReportInStatus(catalog[0])
	anonymousID := uuid.New()

	f.repo.EXPECT().GetReport(ctx, report.ID).Return(report, nil).Times(1)
	f.expectActing(ctx, anonymousID, roleFixture(models.RoleAnonymousReporter))
	f.repo.EXPECT().GetStatus(ctx, int64(4)).Return(catalog[0], nil).Times(1)
	f.catalog.EXPECT().ListStatuses(ctx, models.StatusFilter{}).Return(catalog, nil).Times(1)
	f.repo.EXPECT().SaveReport(gomock.Any(), gomock.Any()).Times(0) // Сохранения быть не должно
	f.metrics.EXPECT().IncTransition(models.StatusLost, "rejected").Times(1)

	updated, err := f.service.ApplyTransition(ctx, report.ID, 7, anonymousID)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Nil(t, updated)
	assert.True(t, report.HasStatus(4))
	assert.Nil(t, report.RecoveringPersonID)
}

func TestApplyTransition_ReporterCannotMoveToRecovered(t *testing.T) {
	f := newTestReportService(t)
	ctx := context.Background()
	catalog := catalogFixture()
	report := newReportInStatus(catalog[1])
	reporterID := uuid.New()

	f.repo.EXPECT().GetReport(ctx, report.ID).Return(report, nil).Times(1)
	f.expectActing(ctx, reporterID, roleFixture(models.RoleReporter))
	f.repo.EXPECT().GetStatus(ctx, int64(5)).Return(catalog[1], nil).Times(1)
	f.catalog.EXPECT().ListStatuses(ctx, models.StatusFilter{}).Return(catalog, nil).Times(1)
	f.repo.EXPECT().SaveReport(gomock.Any(), gomock.Any()).Times(0)
	f.metrics.EXPECT().IncTransition(models.StatusRecovered, "rejected").Times(1)

	_, err := f.service.ApplyTransition(ctx, report.ID, 6, reporterID)

	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestApplyTransition_UnknownTargetStatus(t *testing.T) {
	f := newTestReportService(t)
	ctx := context.Background()
	catalog := catalogFixture()
	report := newReportInStatus(catalog[0])
	recovererID := uuid.New()

	f.repo.EXPECT().GetReport(ctx, report.ID).Return(report, nil).Times(1)
	f.expectActing(ctx, recovererID, roleFixture(models.RoleRecoverer))
	f.repo.EXPECT().GetStatus(ctx, int64(4)).Return(catalog[0], nil).Times(1)
	f.catalog.EXPECT().ListStatuses(ctx, models.StatusFilter{}).Return(catalog, nil).Times(1)
	f.metrics.EXPECT().IncTransition("unknown", "rejected").Times(1)

	_, err := f.service.ApplyTransition(ctx, report.ID, 99, recovererID)

	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestApplyTransition_UnknownActingPerson(t *testing.T) {
	f := newTestReportService(t)
	ctx := context.Background()
	report := newReportInStatus(catalogFixture()[0])
	personID := uuid.New()

	f.repo.EXPECT().GetReport(ctx, report.ID).Return(report, nil).Times(1)
	f.repo.EXPECT().
		GetPerson(ctx, personID).
		Return(nil, fmt.Errorf("person with id %s not found: %w", personID, models.ErrNotFound)).
		Times(1)

	_, err := f.service.ApplyTransition(ctx, report.ID, 5, personID)

	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestApplyTransition_ActingPersonWithoutRole(t *testing.T) {
	f := newTestReportService(t)
	ctx := context.Background()
	report := newReportInStatus(catalogFixture()[0])
	personID := uuid.New()

	f.repo.EXPECT().GetReport(ctx, report.ID).Return(report, nil).Times(1)
	f.repo.EXPECT().GetPerson(ctx, personID).Return(&models.Person{ID: personID}, nil).Times(1)

	_, err := f.service.ApplyTransition(ctx, report.ID, 5, personID)

	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestApplyTransition_ReportWithoutStatus(t *testing.T) {
	f := newTestReportService(t)
	ctx := context.Background()
	report := newReportInStatus(catalogFixture()[0])
	report.DetachStatus()
	recovererID := uuid.New()

	f.repo.EXPECT().GetReport(ctx, report.ID).Return(report, nil).Times(1)
	f.expectActing(ctx, recovererID, roleFixture(models.RoleRecoverer))

	_, err := f.service.ApplyTransition(ctx, report.ID, 5, recovererID)

	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestApplyTransition_ReportNotFound(t *testing.T) {
	f := newTestReportService(t)
	ctx := context.Background()
	reportID := uuid.New()

	f.repo.EXPECT().
		GetReport(ctx, reportID).
		Return(nil, fmt.Errorf("report with id %s not found: %w", reportID, models.ErrNotFound)).
		Times(1)

	_, err := f.service.ApplyTransition(ctx, reportID, 5, uuid.New())

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestApplyTransition_StoreFailure(t *testing.T) {
	f := newTestReportService(t)
	ctx := context.Background()
	catalog := catalogFixture()
	report := newReportInStatus(catalog[0])
	reporterID := uuid.New()
	storeErr := &models.StoreError{Op: "update report", Err: errors.New("connection reset")}

	f.repo.EXPECT().GetReport(ctx, report.ID).Return(report, nil).Times(1)
	f.expectActing(ctx, reporterID, roleFixture(models.RoleReporter))
	f.repo.EXPECT().GetStatus(ctx, int64(4)).Return(catalog[0], nil).Times(1)
	f.catalog.EXPECT().ListStatuses(ctx, models.StatusFilter{}).Return(catalog, nil).Times(1)
	f.repo.EXPECT().SaveReport(ctx, report).Return(storeErr).Times(1)
	f.metrics.EXPECT().IncTransition(models.StatusLost, "failed").Times(1)

	_, err := f.service.ApplyTransition(ctx, report.ID, 7, reporterID)

	var target *models.StoreError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "update report", target.Op)
}

func TestCreateReport_StartsInReported(t *testing.T) {
	f := newTestReportService(t)
	ctx := context.Background()
	catalog := catalogFixture()
	reporterID := uuid.New()
	input := &models.Report{Latitude: 54.1, Longitude: 10.9, Size: "small", Description: "tangled near buoy"}

	f.repo.EXPECT().GetPerson(ctx, reporterID).Return(&models.Person{ID: reporterID}, nil).Times(1)
	f.repo.EXPECT().GetStatusByCode(ctx, models.StatusReported).Return(catalog[0], nil).Times(1)
	f.repo.EXPECT().
		SaveReport(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, r *models.Report) error {
			r.ID = uuid.New()
			return nil
		}).Times(1)

	err := f.service.CreateReport(ctx, reporterID, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, input.ID)
	assert.True(t, input.HasStatus(4))
	require.NotNil(t, input.ReportingPersonID)
	assert.Equal(t, reporterID, *input.ReportingPersonID)
	assert.Nil(t, input.RecoveringPersonID)
	assert.Equal(t, "tangled near buoy", input.Description)
}

func TestCreateReport_UnknownReporter(t *testing.T) {
	f := newTestReportService(t)
	ctx := context.Background()
	reporterID := uuid.New()

	f.repo.EXPECT().
		GetPerson(ctx, reporterID).
		Return(nil, fmt.Errorf("person with id %s not found: %w", reporterID, models.ErrNotFound)).
		Times(1)
	f.repo.EXPECT().SaveReport(gomock.Any(), gomock.Any()).Times(0)

	err := f.service.CreateReport(ctx, reporterID, &models.Report{})

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateReport_MissingInitialStatus(t *testing.T) {
	f := newTestReportService(t)
	ctx := context.Background()
	reporterID := uuid.New()

	f.repo.EXPECT().GetPerson(ctx, reporterID).Return(&models.Person{ID: reporterID}, nil).Times(1)
	f.repo.EXPECT().
		GetStatusByCode(ctx, models.StatusReported).
		Return(nil, fmt.Errorf("status with code %s not found: %w", models.StatusReported, models.ErrNotFound)).
		Times(1)
	f.repo.EXPECT().SaveReport(gomock.Any(), gomock.Any()).Times(0)

	err := f.service.CreateReport(ctx, reporterID, &models.Report{})

	assert.ErrorIs(t, err, models.ErrCatalogIncomplete)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}

func TestListReports_Paging(t *testing.T) {
	testCases := []struct {
		name     string
		input    models.ReportFilter
		expected models.ReportFilter
	}{
		{
			name:     "Defaults",
			input:    models.ReportFilter{},
			expected: models.ReportFilter{Page: 1, PageSize: 10},
		},
		{
			name:     "Page size is capped",
			input:    models.ReportFilter{Page: 3, PageSize: 500},
			expected: models.ReportFilter{Page: 3, PageSize: 100},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTestReportService(t)
			ctx := context.Background()

			f.repo.EXPECT().
				ListReports(ctx, tc.expected).
				Return([]*models.Report{}, nil).
				Times(1)

			reports, err := f.service.ListReports(ctx, tc.input)

			require.NoError(t, err)
			assert.Empty(t, reports)
		})
	}
}
