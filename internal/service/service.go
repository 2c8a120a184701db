package service

//go:generate mockgen -source=service.go -destination=mocks/service_mock.go -package=mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shenikar/ghostnet/internal/models"
)

// Repository определяет контракт хранилища сущностей.
// Связи между сущностями хранятся один раз (на стороне "многие"),
// обратные коллекции вычисляются выборками List* с фильтром.
// Save вставляет запись с нулевым ID и обновляет существующую.
type Repository interface {
	GetRole(ctx context.Context, id int64) (*models.Role, error)
	GetRoleByCode(ctx context.Context, code string) (*models.Role, error)
	ListRoles(ctx context.Context) ([]*models.Role, error)
	SaveRole(ctx context.Context, role *models.Role) error
	DeleteRole(ctx context.Context, id int64) error

	GetStatus(ctx context.Context, id int64) (*models.Status, error)
	GetStatusByCode(ctx context.Context, code string) (*models.Status, error)
	ListStatuses(ctx context.Context, filter models.StatusFilter) ([]*models.Status, error)
	SaveStatus(ctx context.Context, status *models.Status) error
	DeleteStatus(ctx context.Context, id int64) error

	GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error)
	ListPersons(ctx context.Context, filter models.PersonFilter) ([]*models.Person, error)
	SavePerson(ctx context.Context, person *models.Person) error
	DeletePerson(ctx context.Context, id uuid.UUID) error

	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListReports(ctx context.Context, filter models.ReportFilter) ([]*models.Report, error)
	SaveReport(ctx context.Context, report *models.Report) error
	DeleteReport(ctx context.Context, id uuid.UUID) error

	// WithinTx выполняет fn атомарно: либо все записи fn сохраняются,
	// либо ни одна.
	WithinTx(ctx context.Context, fn func(tx Repository) error) error
}

// CatalogCache определяет контракт кеша справочников ролей и статусов.
// Промах кеша возвращает nil, nil.
type CatalogCache interface {
	GetRoles(ctx context.Context) ([]*models.Role, error)
	SetRoles(ctx context.Context, roles []*models.Role) error
	GetStatuses(ctx context.Context) ([]*models.Status, error)
	SetStatuses(ctx context.Context, statuses []*models.Status) error
	Invalidate(ctx context.Context) error
}

// Metrics определяет счетчики жизненного цикла
type Metrics interface {
	IncTransition(destination, outcome string)
	IncDeletion(entity, outcome string)
}

// CatalogService определяет контракт справочников ролей и статусов
type CatalogService interface {
	ListRoles(ctx context.Context) ([]*models.Role, error)
	GetRole(ctx context.Context, id int64) (*models.Role, error)
	CreateRole(ctx context.Context, role *models.Role) error
	UpdateRole(ctx context.Context, role *models.Role) error

	ListStatuses(ctx context.Context, filter models.StatusFilter) ([]*models.Status, error)
	ListRecoveryRelevant(ctx context.Context) ([]*models.Status, error)
	GetStatus(ctx context.Context, id int64) (*models.Status, error)
	CreateStatus(ctx context.Context, status *models.Status) error
	UpdateStatus(ctx context.Context, status *models.Status) error

	AllowedDestinations(ctx context.Context, statusID, roleID int64) ([]*models.Status, error)
}

// PersonService определяет контракт управления участниками
type PersonService interface {
	CreatePerson(ctx context.Context, person *models.Person) error
	GetPerson(ctx context.Context, id uuid.UUID) (*models.PersonDetails, error)
	UpdatePerson(ctx context.Context, person *models.Person) error
	ListPersons(ctx context.Context, filter models.PersonFilter) ([]*models.Person, error)
}

// ReportService определяет контракт жизненного цикла сообщений
type ReportService interface {
	CreateReport(ctx context.Context, reportingPersonID uuid.UUID, report *models.Report) error
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	UpdateReportDetails(ctx context.Context, report *models.Report) error
	ListReports(ctx context.Context, filter models.ReportFilter) ([]*models.Report, error)
	ApplyTransition(ctx context.Context, reportID uuid.UUID, statusID int64, actingPersonID uuid.UUID) (*models.Report, error)
	ApplyTransitions(ctx context.Context, actingPersonID uuid.UUID, requests []models.TransitionRequest) []models.TransitionResult
	RecoveryQueue(ctx context.Context, actingPersonID uuid.UUID) ([]*models.QueueItem, error)
}

// IntegrityService определяет контракт удаления с отвязкой всех связей
type IntegrityService interface {
	DeleteReport(ctx context.Context, id uuid.UUID) error
	DeleteStatus(ctx context.Context, id int64) error
	DeletePerson(ctx context.Context, id uuid.UUID) error
	DeleteRole(ctx context.Context, id int64) error
}

type noopMetrics struct{}

func (noopMetrics) IncTransition(string, string) {}
func (noopMetrics) IncDeletion(string, string)   {}

// normalizePage подставляет первую страницу и размер по умолчанию;
// размер больше MaxPageSize ограничивается
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = models.DefaultPageSize
	}
	if pageSize > models.MaxPageSize {
		pageSize = models.MaxPageSize
	}
	return page, pageSize
}
