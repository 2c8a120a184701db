package models

import (
	"time"

	"github.com/google/uuid"
)

// Person представляет участника: сообщающего о сети или спасателя
type Person struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	TelephoneNumber string    `json:"telephone_number"`
	RoleID          *int64    `json:"role_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DetachRole снимает связь участника с ролью
func (p *Person) DetachRole() {
	p.RoleID = nil
}

// PersonDetails - участник вместе с производными коллекциями,
// вычисленными при чтении
type PersonDetails struct {
	Person            *Person
	Role              *Role
	ReportedReports   []*Report
	RecoveringReports []*Report
}

// PersonFilter ограничивает выборку участников
type PersonFilter struct {
	RoleID          *int64
	Name            string
	TelephoneNumber string
	Page            int
	PageSize        int
}
