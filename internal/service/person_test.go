package service_test

import (
	"context"
	"testing"

	"github.com/shenikar/ghostnet/internal/models"
	"github.com/shenikar/ghostnet/internal/service"
	"github.com/shenikar/ghostnet/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCreatePerson_TelephoneRules(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		phone   string
		wantErr error
	}{
		{"anonymous without phone", models.RoleAnonymousReporter, "", nil},
		{"reporter with phone", models.RoleReporter, "+47 900 00 000", nil},
		{"reporter without phone", models.RoleReporter, "", models.ErrInvalidArgument},
		{"recoverer blank phone", models.RoleRecoverer, "   ", models.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			roleID := env.role(t, tt.role).ID
			person := &models.Person{Name: "Ola", TelephoneNumber: tt.phone, RoleID: &roleID}

			err := env.persons.CreatePerson(env.ctx, person)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, person.ID)
		})
	}
}

func TestCreatePerson_RoleChecks(t *testing.T) {
	env := newTestEnv(t)
	unknown := int64(999)

	err := env.persons.CreatePerson(env.ctx, &models.Person{Name: "Ola", TelephoneNumber: "1", RoleID: &unknown})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	err = env.persons.CreatePerson(env.ctx, &models.Person{Name: "Ola", TelephoneNumber: "1"})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	roleID := env.role(t, models.RoleReporter).ID
	err = env.persons.CreatePerson(env.ctx, &models.Person{TelephoneNumber: "1", RoleID: &roleID})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestGetPerson_DerivedReports(t *testing.T) {
	env := newTestEnv(t)
	reporter := env.person(t, "Hanna", models.RoleReporter)
	recoverer := env.person(t, "Jonas", models.RoleRecoverer)
	first := env.report(t, reporter)
	env.report(t, reporter)

	_, err := env.reports.ApplyTransition(env.ctx, first.ID, env.status(t, models.StatusRecoveryPending).ID, recoverer.ID)
	require.NoError(t, err)

	details, err := env.persons.GetPerson(env.ctx, reporter.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleReporter, details.Role.Code)
	assert.Len(t, details.ReportedReports, 2)
	assert.Empty(t, details.RecoveringReports)

	details, err = env.persons.GetPerson(env.ctx, recoverer.ID)
	require.NoError(t, err)
	assert.Empty(t, details.ReportedReports)
	require.Len(t, details.RecoveringReports, 1)
	assert.Equal(t, first.ID, details.RecoveringReports[0].ID)
}

func TestUpdatePerson_ChangeRole(t *testing.T) {
	env := newTestEnv(t)
	person := env.person(t, "Hanna", models.RoleReporter)
	anonymousID := env.role(t, models.RoleAnonymousReporter).ID

	update := &models.Person{ID: person.ID, Name: "Hanna B.", RoleID: &anonymousID}
	require.NoError(t, env.persons.UpdatePerson(env.ctx, update))

	stored, err := env.store.GetPerson(env.ctx, person.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hanna B.", stored.Name)
	assert.Equal(t, anonymousID, *stored.RoleID)
	assert.Empty(t, stored.TelephoneNumber)
}

func TestListPersons_ByRoleOrderedByName(t *testing.T) {
	env := newTestEnv(t)
	env.person(t, "Zoe", models.RoleRecoverer)
	env.person(t, "Anna", models.RoleRecoverer)
	env.person(t, "Mats", models.RoleReporter)
	roleID := env.role(t, models.RoleRecoverer).ID

	persons, err := env.persons.ListPersons(env.ctx, models.PersonFilter{RoleID: &roleID})

	require.NoError(t, err)
	require.Len(t, persons, 2)
	assert.Equal(t, "Anna", persons[0].Name)
	assert.Equal(t, "Zoe", persons[1].Name)
}

func TestListPersons_Paging(t *testing.T) {
	testCases := []struct {
		name     string
		input    models.PersonFilter
		expected models.PersonFilter
	}{
		{
			name:     "Defaults",
			input:    models.PersonFilter{Name: "an"},
			expected: models.PersonFilter{Name: "an", Page: 1, PageSize: models.DefaultPageSize},
		},
		{
			name:     "Page size is capped",
			input:    models.PersonFilter{Page: 2, PageSize: 5000},
			expected: models.PersonFilter{Page: 2, PageSize: models.MaxPageSize},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repoMock := mocks.NewMockRepository(ctrl)
			svc := service.NewPersonService(repoMock, newTestLogger())
			ctx := context.Background()

			repoMock.EXPECT().ListPersons(ctx, tc.expected).Return([]*models.Person{}, nil).Times(1)

			persons, err := svc.ListPersons(ctx, tc.input)

			require.NoError(t, err)
			assert.Empty(t, persons)
		})
	}
}
