package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shenikar/ghostnet/internal/models"
	"github.com/shenikar/ghostnet/internal/service"
	"github.com/shenikar/ghostnet/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestCatalogService - вспомогательная функция для создания сервиса с моками.
func newTestCatalogService(t *testing.T) (service.CatalogService, *mocks.MockRepository, *mocks.MockCatalogCache) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockRepository(ctrl)
	cacheMock := mocks.NewMockCatalogCache(ctrl)

	return service.NewCatalogService(repoMock, cacheMock, newTestLogger()), repoMock, cacheMock
}

func TestListRoles_FromCache(t *testing.T) {
	// Подготовка
	svc, repoMock, cacheMock := newTestCatalogService(t)
	ctx := context.Background()
	roles := []*models.Role{roleFixture(models.RoleReporter)}

	// Ожидания
	cacheMock.EXPECT().GetRoles(ctx).Return(roles, nil).Times(1)
	repoMock.EXPECT().ListRoles(gomock.Any()).Times(0)

	// Действие
	got, err := svc.ListRoles(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, roles, got)
}

func TestListRoles_FromDB(t *testing.T) {
	svc, repoMock, cacheMock := newTestCatalogService(t)
	ctx := context.Background()
	roles := []*models.Role{roleFixture(models.RoleAnonymousReporter), roleFixture(models.RoleRecoverer)}

	// 1. Промах кеша
	cacheMock.EXPECT().GetRoles(ctx).Return(nil, nil).Times(1)
	// 2. Попадание в БД
	repoMock.EXPECT().ListRoles(ctx).Return(roles, nil).Times(1)
	// 3. Запись в кеш
	cacheMock.EXPECT().SetRoles(ctx, roles).Return(nil).Times(1)

	got, err := svc.ListRoles(ctx)

	require.NoError(t, err)
	assert.Equal(t, roles, got)
}

func TestListStatuses_CacheErrorFallsBackToDB(t *testing.T) {
	svc, repoMock, cacheMock := newTestCatalogService(t)
	ctx := context.Background()
	catalog := catalogFixture()

	cacheMock.EXPECT().GetStatuses(ctx).Return(nil, errors.New("connection refused")).Times(1)
	repoMock.EXPECT().ListStatuses(ctx, models.StatusFilter{}).Return(catalog, nil).Times(1)
	cacheMock.EXPECT().SetStatuses(ctx, catalog).Return(errors.New("connection refused")).Times(1)

	got, err := svc.ListStatuses(ctx, models.StatusFilter{})

	require.NoError(t, err)
	assert.Equal(t, catalog, got)
}

func TestListStatuses_FilteredBypassesCache(t *testing.T) {
	svc, repoMock, cacheMock := newTestCatalogService(t)
	ctx := context.Background()
	filter := models.StatusFilter{Description: "pending"}

	cacheMock.EXPECT().GetStatuses(gomock.Any()).Times(0)
	cacheMock.EXPECT().SetStatuses(gomock.Any(), gomock.Any()).Times(0)
	repoMock.EXPECT().ListStatuses(ctx, filter).Return(catalogFixture()[1:2], nil).Times(1)

	got, err := svc.ListStatuses(ctx, filter)

	require.NoError(t, err)
	assert.Equal(t, []string{models.StatusRecoveryPending}, statusCodes(got))
}

func TestListRecoveryRelevant(t *testing.T) {
	svc, _, cacheMock := newTestCatalogService(t)
	ctx := context.Background()

	cacheMock.EXPECT().GetStatuses(ctx).Return(catalogFixture(), nil).Times(1)

	got, err := svc.ListRecoveryRelevant(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{models.StatusReported, models.StatusRecoveryPending}, statusCodes(got))
}

func TestCreateStatus_InvalidatesCache(t *testing.T) {
	svc, repoMock, cacheMock := newTestCatalogService(t)
	ctx := context.Background()
	status := &models.Status{ID: 42, Code: "drifting", RelevantForRecovery: true}

	repoMock.EXPECT().
		SaveStatus(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, s *models.Status) error {
			assert.Zero(t, s.ID)
			s.ID = 8
			return nil
		}).Times(1)
	cacheMock.EXPECT().Invalidate(ctx).Return(nil).Times(1)

	require.NoError(t, svc.CreateStatus(ctx, status))
	assert.Equal(t, int64(8), status.ID)
}

func TestCreateStatus_CodeRequired(t *testing.T) {
	svc, repoMock, cacheMock := newTestCatalogService(t)
	ctx := context.Background()

	repoMock.EXPECT().SaveStatus(gomock.Any(), gomock.Any()).Times(0)
	cacheMock.EXPECT().Invalidate(gomock.Any()).Times(0)

	err := svc.CreateStatus(ctx, &models.Status{Code: "  "})

	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestUpdateRole_NotFound(t *testing.T) {
	svc, repoMock, cacheMock := newTestCatalogService(t)
	ctx := context.Background()

	repoMock.EXPECT().GetRole(ctx, int64(9)).Return(nil, models.ErrNotFound).Times(1)
	cacheMock.EXPECT().Invalidate(gomock.Any()).Times(0)

	err := svc.UpdateRole(ctx, &models.Role{ID: 9, Code: "inspector"})

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCatalogAllowedDestinations(t *testing.T) {
	svc, repoMock, cacheMock := newTestCatalogService(t)
	ctx := context.Background()
	catalog := catalogFixture()

	repoMock.EXPECT().GetStatus(ctx, int64(5)).Return(catalog[1], nil).Times(1)
	repoMock.EXPECT().GetRole(ctx, int64(3)).Return(roleFixture(models.RoleRecoverer), nil).Times(1)
	cacheMock.EXPECT().GetStatuses(ctx).Return(catalog, nil).Times(1)

	got, err := svc.AllowedDestinations(ctx, 5, 3)

	require.NoError(t, err)
	assert.Equal(t, []string{models.StatusRecovered, models.StatusLost}, statusCodes(got))
}

func TestUpdateRole_CodeIsImmutable(t *testing.T) {
	svc, repoMock, cacheMock := newTestCatalogService(t)
	ctx := context.Background()

	repoMock.EXPECT().GetRole(ctx, int64(3)).Return(roleFixture(models.RoleRecoverer), nil).Times(1)
	repoMock.EXPECT().SaveRole(gomock.Any(), gomock.Any()).Times(0)
	cacheMock.EXPECT().Invalidate(gomock.Any()).Times(0)

	err := svc.UpdateRole(ctx, &models.Role{ID: 3, Code: "retter"})

	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestUpdateStatus_CodeIsImmutable(t *testing.T) {
	svc, repoMock, cacheMock := newTestCatalogService(t)
	ctx := context.Background()

	repoMock.EXPECT().GetStatus(ctx, int64(4)).Return(catalogFixture()[0], nil).Times(1)
	repoMock.EXPECT().SaveStatus(gomock.Any(), gomock.Any()).Times(0)
	cacheMock.EXPECT().Invalidate(gomock.Any()).Times(0)

	err := svc.UpdateStatus(ctx, &models.Status{ID: 4, Code: "gemeldet"})

	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestUpdateStatus_KeepsCode(t *testing.T) {
	testCases := []struct {
		name string
		code string
	}{
		{name: "Code omitted", code: ""},
		{name: "Same code", code: models.StatusReported},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repoMock, cacheMock := newTestCatalogService(t)
			ctx := context.Background()

			repoMock.EXPECT().GetStatus(ctx, int64(4)).Return(catalogFixture()[0], nil).Times(1)
			repoMock.EXPECT().
				SaveStatus(ctx, gomock.Any()).
				DoAndReturn(func(_ context.Context, saved *models.Status) error {
					assert.Equal(t, models.StatusReported, saved.Code)
					assert.Equal(t, "Freshly reported", saved.Description)
					assert.False(t, saved.RelevantForRecovery)
					return nil
				}).Times(1)
			cacheMock.EXPECT().Invalidate(ctx).Return(nil).Times(1)

			status := &models.Status{ID: 4, Code: tc.code, Description: "Freshly reported"}
			err := svc.UpdateStatus(ctx, status)

			require.NoError(t, err)
			assert.Equal(t, models.StatusReported, status.Code)
		})
	}
}
