package service

import (
	"fmt"

	"github.com/shenikar/ghostnet/internal/models"
)

// TransitionRule разрешает перевод в статус To.
// Пустой From означает "из любого статуса". Роль должна входить в Roles
// (если список задан) и не входить в ExceptRoles.
type TransitionRule struct {
	To          string
	From        string
	Roles       []string
	ExceptRoles []string
}

// TransitionRules - плоская таблица разрешенных переходов.
// Статус, для которого нет правила (в том числе "reported"), никогда не
// является целью перехода.
var TransitionRules = []TransitionRule{
	{To: models.StatusRecoveryPending, From: models.StatusReported, Roles: []string{models.RoleRecoverer}},
	{To: models.StatusRecovered, From: models.StatusRecoveryPending, Roles: []string{models.RoleRecoverer}},
	{To: models.StatusLost, ExceptRoles: []string{models.RoleAnonymousReporter}},
}

// AllowedDestinations возвращает подмножество каталога, в которое участник
// с ролью role может перевести сообщение из статуса current.
// Порядок каталога сохраняется.
func AllowedDestinations(current *models.Status, role *models.Role, catalog []*models.Status) ([]*models.Status, error) {
	if current == nil {
		return nil, fmt.Errorf("current status is required: %w", models.ErrInvalidArgument)
	}
	if role == nil {
		return nil, fmt.Errorf("acting role is required: %w", models.ErrInvalidArgument)
	}

	allowed := make([]*models.Status, 0, len(catalog))
	for _, candidate := range catalog {
		for _, rule := range TransitionRules {
			if rule.permits(candidate, current, role) {
				allowed = append(allowed, candidate)
				break
			}
		}
	}
	return allowed, nil
}

func (r TransitionRule) permits(candidate, current *models.Status, role *models.Role) bool {
	if candidate.Code != r.To {
		return false
	}
	if r.From != "" && current.Code != r.From {
		return false
	}
	if len(r.Roles) > 0 && !contains(r.Roles, role.Code) {
		return false
	}
	return !contains(r.ExceptRoles, role.Code)
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

func findStatus(statuses []*models.Status, id int64) *models.Status {
	for _, s := range statuses {
		if s.ID == id {
			return s
		}
	}
	return nil
}
