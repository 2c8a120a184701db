// Package memory содержит хранилище сущностей в памяти процесса
// с теми же ограничениями внешних ключей, что и схема PostgreSQL.
// Используется в тестах сервисов.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/ghostnet/internal/models"
	"github.com/shenikar/ghostnet/internal/service"
)

// arena хранит сущности по ID. Связи хранятся только в полях
// зависимой записи (Report.StatusID, Person.RoleID и т.д.).
type arena struct {
	roles    map[int64]models.Role
	statuses map[int64]models.Status
	persons  map[uuid.UUID]models.Person
	reports  map[uuid.UUID]models.Report
	nextID   int64
}

func newArena() *arena {
	return &arena{
		roles:    make(map[int64]models.Role),
		statuses: make(map[int64]models.Status),
		persons:  make(map[uuid.UUID]models.Person),
		reports:  make(map[uuid.UUID]models.Report),
	}
}

func (a *arena) clone() *arena {
	c := newArena()
	c.nextID = a.nextID
	for k, v := range a.roles {
		c.roles[k] = v
	}
	for k, v := range a.statuses {
		c.statuses[k] = v
	}
	for k, v := range a.persons {
		c.persons[k] = copyPerson(v)
	}
	for k, v := range a.reports {
		c.reports[k] = copyReport(v)
	}
	return c
}

// Store - потокобезопасное хранилище в памяти. Транзакция удерживает
// блокировку хранилища до завершения, поэтому записи вне транзакции
// ждут ее окончания; при ошибке состояние восстанавливается из снимка.
type Store struct {
	*state
	inTx bool
}

type state struct {
	mu   sync.Mutex
	data *arena
	now  func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		state: &state{
			data: newArena(),
			now:  time.Now,
		},
	}
}

// Compile-time check that Store implements service.Repository.
var _ service.Repository = (*Store)(nil)

// lock захватывает хранилище; внутри транзакции блокировка уже удерживается
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Seed заполняет справочники ролей и статусов так же, как миграции PostgreSQL
func (s *Store) Seed() {
	defer s.lock()()

	roles := []models.Role{
		{Code: models.RoleAnonymousReporter, Description: "Anonymous reporter"},
		{Code: models.RoleReporter, Description: "Reporter"},
		{Code: models.RoleRecoverer, Description: "Recoverer"},
	}
	for _, role := range roles {
		s.data.nextID++
		role.ID = s.data.nextID
		s.data.roles[role.ID] = role
	}

	statuses := []models.Status{
		{Code: models.StatusReported, Description: "Reported", RelevantForRecovery: true},
		{Code: models.StatusRecoveryPending, Description: "Recovery pending", RelevantForRecovery: true},
		{Code: models.StatusRecovered, Description: "Recovered"},
		{Code: models.StatusLost, Description: "Lost"},
	}
	for _, status := range statuses {
		s.data.nextID++
		status.ID = s.data.nextID
		s.data.statuses[status.ID] = status
	}
}

// WithinTx выполняет fn с хранилищем, привязанным к транзакции.
// Вложенный вызов выполняется в рамках внешней транзакции.
// Хранилище транзакции нельзя использовать после возврата fn.
func (s *Store) WithinTx(ctx context.Context, fn func(tx service.Repository) error) error {
	if s.inTx {
		return fn(s)
	}

	defer s.lock()()

	snapshot := s.data.clone()
	if err := fn(&Store{state: s.state, inTx: true}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Роли

func (s *Store) GetRole(ctx context.Context, id int64) (*models.Role, error) {
	defer s.lock()()

	role, ok := s.data.roles[id]
	if !ok {
		return nil, fmt.Errorf("role with id %d not found: %w", id, models.ErrNotFound)
	}
	return &role, nil
}

func (s *Store) GetRoleByCode(ctx context.Context, code string) (*models.Role, error) {
	defer s.lock()()

	for _, role := range s.data.roles {
		if role.Code == code {
			r := role
			return &r, nil
		}
	}
	return nil, fmt.Errorf("role with code %s not found: %w", code, models.ErrNotFound)
}

func (s *Store) ListRoles(ctx context.Context) ([]*models.Role, error) {
	defer s.lock()()

	roles := make([]*models.Role, 0, len(s.data.roles))
	for _, role := range s.data.roles {
		r := role
		roles = append(roles, &r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles, nil
}

func (s *Store) SaveRole(ctx context.Context, role *models.Role) error {
	defer s.lock()()

	for _, existing := range s.data.roles {
		if existing.Code == role.Code && existing.ID != role.ID {
			return &models.StoreError{Op: "save role", Err: fmt.Errorf("duplicate role code %s", role.Code)}
		}
	}
	if role.ID == 0 {
		s.data.nextID++
		role.ID = s.data.nextID
	} else if _, ok := s.data.roles[role.ID]; !ok {
		return fmt.Errorf("role with id %d not found for update: %w", role.ID, models.ErrNotFound)
	}
	s.data.roles[role.ID] = *role
	return nil
}

func (s *Store) DeleteRole(ctx context.Context, id int64) error {
	defer s.lock()()

	if _, ok := s.data.roles[id]; !ok {
		return fmt.Errorf("role with id %d not found for delete: %w", id, models.ErrNotFound)
	}
	for _, person := range s.data.persons {
		if person.RoleID != nil && *person.RoleID == id {
			return &models.StoreError{Op: "delete role", Err: fmt.Errorf("role %d is still referenced by person %s", id, person.ID)}
		}
	}
	delete(s.data.roles, id)
	return nil
}

// Статусы

func (s *Store) GetStatus(ctx context.Context, id int64) (*models.Status, error) {
	defer s.lock()()

	status, ok := s.data.statuses[id]
	if !ok {
		return nil, fmt.Errorf("status with id %d not found: %w", id, models.ErrNotFound)
	}
	return &status, nil
}

func (s *Store) GetStatusByCode(ctx context.Context, code string) (*models.Status, error) {
	defer s.lock()()

	for _, status := range s.data.statuses {
		if status.Code == code {
			st := status
			return &st, nil
		}
	}
	return nil, fmt.Errorf("status with code %s not found: %w", code, models.ErrNotFound)
}

func (s *Store) ListStatuses(ctx context.Context, filter models.StatusFilter) ([]*models.Status, error) {
	defer s.lock()()

	needle := strings.ToLower(filter.Description)
	statuses := make([]*models.Status, 0, len(s.data.statuses))
	for _, status := range s.data.statuses {
		if needle != "" && !strings.Contains(strings.ToLower(status.Description), needle) {
			continue
		}
		if filter.RelevantForRecovery != nil && status.RelevantForRecovery != *filter.RelevantForRecovery {
			continue
		}
		st := status
		statuses = append(statuses, &st)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].ID < statuses[j].ID })
	return statuses, nil
}

func (s *Store) SaveStatus(ctx context.Context, status *models.Status) error {
	defer s.lock()()

	for _, existing := range s.data.statuses {
		if existing.Code == status.Code && existing.ID != status.ID {
			return &models.StoreError{Op: "save status", Err: fmt.Errorf("duplicate status code %s", status.Code)}
		}
	}
	if status.ID == 0 {
		s.data.nextID++
		status.ID = s.data.nextID
	} else if _, ok := s.data.statuses[status.ID]; !ok {
		return fmt.Errorf("status with id %d not found for update: %w", status.ID, models.ErrNotFound)
	}
	s.data.statuses[status.ID] = *status
	return nil
}

func (s *Store) DeleteStatus(ctx context.Context, id int64) error {
	defer s.lock()()

	if _, ok := s.data.statuses[id]; !ok {
		return fmt.Errorf("status with id %d not found for delete: %w", id, models.ErrNotFound)
	}
	for _, report := range s.data.reports {
		if report.HasStatus(id) {
			return &models.StoreError{Op: "delete status", Err: fmt.Errorf("status %d is still referenced by report %s", id, report.ID)}
		}
	}
	delete(s.data.statuses, id)
	return nil
}

// Участники

func (s *Store) GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	defer s.lock()()

	person, ok := s.data.persons[id]
	if !ok {
		return nil, fmt.Errorf("person with id %s not found: %w", id, models.ErrNotFound)
	}
	p := copyPerson(person)
	return &p, nil
}

func (s *Store) ListPersons(ctx context.Context, filter models.PersonFilter) ([]*models.Person, error) {
	defer s.lock()()

	name := strings.ToLower(filter.Name)
	phone := strings.ToLower(filter.TelephoneNumber)
	persons := make([]*models.Person, 0)
	for _, person := range s.data.persons {
		if filter.RoleID != nil && (person.RoleID == nil || *person.RoleID != *filter.RoleID) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(person.Name), name) {
			continue
		}
		if phone != "" && !strings.Contains(strings.ToLower(person.TelephoneNumber), phone) {
			continue
		}
		p := copyPerson(person)
		persons = append(persons, &p)
	}
	sort.Slice(persons, func(i, j int) bool {
		if persons[i].Name != persons[j].Name {
			return persons[i].Name < persons[j].Name
		}
		return persons[i].ID.String() < persons[j].ID.String()
	})
	return paginate(persons, filter.Page, filter.PageSize), nil
}

func (s *Store) SavePerson(ctx context.Context, person *models.Person) error {
	defer s.lock()()

	if person.RoleID != nil {
		if _, ok := s.data.roles[*person.RoleID]; !ok {
			return &models.StoreError{Op: "save person", Err: fmt.Errorf("role %d does not exist", *person.RoleID)}
		}
	}

	now := s.now()
	if person.ID == uuid.Nil {
		person.ID = uuid.New()
		person.CreatedAt = now
	} else {
		existing, ok := s.data.persons[person.ID]
		if !ok {
			return fmt.Errorf("person with id %s not found for update: %w", person.ID, models.ErrNotFound)
		}
		person.CreatedAt = existing.CreatedAt
	}
	person.UpdatedAt = now
	s.data.persons[person.ID] = copyPerson(*person)
	return nil
}

func (s *Store) DeletePerson(ctx context.Context, id uuid.UUID) error {
	defer s.lock()()

	if _, ok := s.data.persons[id]; !ok {
		return fmt.Errorf("person with id %s not found for delete: %w", id, models.ErrNotFound)
	}
	for _, report := range s.data.reports {
		if sameID(report.ReportingPersonID, id) || sameID(report.RecoveringPersonID, id) {
			return &models.StoreError{Op: "delete person", Err: fmt.Errorf("person %s is still referenced by report %s", id, report.ID)}
		}
	}
	delete(s.data.persons, id)
	return nil
}

// Сообщения

func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	defer s.lock()()

	report, ok := s.data.reports[id]
	if !ok {
		return nil, fmt.Errorf("report with id %s not found: %w", id, models.ErrNotFound)
	}
	r := copyReport(report)
	return &r, nil
}

func (s *Store) ListReports(ctx context.Context, filter models.ReportFilter) ([]*models.Report, error) {
	defer s.lock()()

	reports := make([]*models.Report, 0)
	for _, report := range s.data.reports {
		if len(filter.StatusIDs) > 0 && !inStatuses(report.StatusID, filter.StatusIDs) {
			continue
		}
		if filter.ReportingPersonID != nil && !sameID(report.ReportingPersonID, *filter.ReportingPersonID) {
			continue
		}
		if filter.RecoveringPersonID != nil && !sameID(report.RecoveringPersonID, *filter.RecoveringPersonID) {
			continue
		}
		r := copyReport(report)
		reports = append(reports, &r)
	}
	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].CreatedAt.After(reports[j].CreatedAt)
		}
		return reports[i].ID.String() < reports[j].ID.String()
	})
	return paginate(reports, filter.Page, filter.PageSize), nil
}

func (s *Store) SaveReport(ctx context.Context, report *models.Report) error {
	defer s.lock()()

	if report.StatusID != nil {
		if _, ok := s.data.statuses[*report.StatusID]; !ok {
			return &models.StoreError{Op: "save report", Err: fmt.Errorf("status %d does not exist", *report.StatusID)}
		}
	}
	for _, personID := range []*uuid.UUID{report.ReportingPersonID, report.RecoveringPersonID} {
		if personID == nil {
			continue
		}
		if _, ok := s.data.persons[*personID]; !ok {
			return &models.StoreError{Op: "save report", Err: fmt.Errorf("person %s does not exist", *personID)}
		}
	}

	now := s.now()
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
		report.CreatedAt = now
	} else {
		existing, ok := s.data.reports[report.ID]
		if !ok {
			return fmt.Errorf("report with id %s not found for update: %w", report.ID, models.ErrNotFound)
		}
		report.CreatedAt = existing.CreatedAt
	}
	report.UpdatedAt = now
	s.data.reports[report.ID] = copyReport(*report)
	return nil
}

func (s *Store) DeleteReport(ctx context.Context, id uuid.UUID) error {
	defer s.lock()()

	if _, ok := s.data.reports[id]; !ok {
		return fmt.Errorf("report with id %s not found for delete: %w", id, models.ErrNotFound)
	}
	delete(s.data.reports, id)
	return nil
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize < 1 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return items[:0]
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func inStatuses(statusID *int64, ids []int64) bool {
	if statusID == nil {
		return false
	}
	for _, id := range ids {
		if *statusID == id {
			return true
		}
	}
	return false
}

func sameID(ref *uuid.UUID, id uuid.UUID) bool {
	return ref != nil && *ref == id
}

// copyPerson и copyReport разрывают общие указатели между ареной и вызывающим кодом
func copyPerson(p models.Person) models.Person {
	if p.RoleID != nil {
		roleID := *p.RoleID
		p.RoleID = &roleID
	}
	return p
}

func copyReport(r models.Report) models.Report {
	if r.StatusID != nil {
		statusID := *r.StatusID
		r.StatusID = &statusID
	}
	if r.ReportingPersonID != nil {
		id := *r.ReportingPersonID
		r.ReportingPersonID = &id
	}
	if r.RecoveringPersonID != nil {
		id := *r.RecoveringPersonID
		r.RecoveringPersonID = &id
	}
	return r
}
