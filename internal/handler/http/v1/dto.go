package v1

import (
	"time"

	"github.com/google/uuid"
)

// RoleRequest DTO для создания роли
// @Description DTO для создания роли
type RoleRequest struct {
	Code        string `json:"code" validate:"required,min=2,max=64"`
	Description string `json:"description,omitempty" validate:"max=255"`
}

// RoleUpdateRequest DTO для обновления роли. Код можно не передавать,
// изменить его нельзя.
// @Description DTO для обновления роли
type RoleUpdateRequest struct {
	Code        string `json:"code,omitempty" validate:"omitempty,min=2,max=64"`
	Description string `json:"description,omitempty" validate:"max=255"`
}

// RoleResponse DTO для ответа с информацией о роли
// @Description DTO для ответа с информацией о роли
type RoleResponse struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// StatusRequest DTO для создания статуса
// @Description DTO для создания статуса
type StatusRequest struct {
	Code                string `json:"code" validate:"required,min=2,max=64"`
	Description         string `json:"description,omitempty" validate:"max=255"`
	RelevantForRecovery bool   `json:"relevant_for_recovery"`
}

// StatusUpdateRequest DTO для обновления статуса. Код неизменяем.
// @Description DTO для обновления статуса
type StatusUpdateRequest struct {
	Code                string `json:"code,omitempty" validate:"omitempty,min=2,max=64"`
	Description         string `json:"description,omitempty" validate:"max=255"`
	RelevantForRecovery bool   `json:"relevant_for_recovery"`
}

// StatusResponse DTO для ответа с информацией о статусе
// @Description DTO для ответа с информацией о статусе
type StatusResponse struct {
	ID                  int64  `json:"id"`
	Code                string `json:"code"`
	Description         string `json:"description,omitempty"`
	RelevantForRecovery bool   `json:"relevant_for_recovery"`
}

// PersonRequest DTO для регистрации и обновления участника
// @Description DTO для регистрации и обновления участника
type PersonRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=255"`
	TelephoneNumber string `json:"telephone_number,omitempty" validate:"max=32"`
	RoleID          int64  `json:"role_id" validate:"required,gt=0"`
}

// PersonResponse DTO для ответа с информацией об участнике
// @Description DTO для ответа с информацией об участнике
type PersonResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	TelephoneNumber string    `json:"telephone_number,omitempty"`
	RoleID          *int64    `json:"role_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PersonDetailsResponse DTO участника с ролью и связанными сообщениями
// @Description DTO участника с ролью и связанными сообщениями
type PersonDetailsResponse struct {
	PersonResponse
	Role              *RoleResponse     `json:"role,omitempty"`
	ReportedReports   []*ReportResponse `json:"reported_reports"`
	RecoveringReports []*ReportResponse `json:"recovering_reports"`
}

// ReportRequest DTO для создания и обновления сообщения о сети
// @Description DTO для создания и обновления сообщения о сети
type ReportRequest struct {
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
	Size        string   `json:"size,omitempty" validate:"max=64"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
}

// ReportResponse DTO для ответа с информацией о сообщении
// @Description DTO для ответа с информацией о сообщении
type ReportResponse struct {
	ID                 uuid.UUID  `json:"id"`
	StatusID           *int64     `json:"status_id"`
	ReportingPersonID  *uuid.UUID `json:"reporting_person_id"`
	RecoveringPersonID *uuid.UUID `json:"recovering_person_id"`
	Latitude           float64    `json:"latitude"`
	Longitude          float64    `json:"longitude"`
	Size               string     `json:"size,omitempty"`
	Description        string     `json:"description,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TransitionRequest DTO для смены статуса сообщения
// @Description DTO для смены статуса сообщения
type TransitionRequest struct {
	StatusID int64 `json:"status_id" validate:"required,gt=0"`
}

// QueueTransition DTO одного перехода, выбранного в очереди
// @Description DTO одного перехода, выбранного в очереди
type QueueTransition struct {
	ReportID string `json:"report_id" validate:"required,uuid"`
	StatusID int64  `json:"status_id" validate:"required,gt=0"`
}

// AcceptQueueRequest DTO для пакетного применения переходов из очереди
// @Description DTO для пакетного применения переходов из очереди
type AcceptQueueRequest struct {
	Transitions []QueueTransition `json:"transitions" validate:"required,min=1,max=100,dive"`
}

// TransitionResultResponse DTO с итогом одного перехода из пакета
// @Description DTO с итогом одного перехода из пакета
type TransitionResultResponse struct {
	ReportID uuid.UUID       `json:"report_id"`
	Report   *ReportResponse `json:"report,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// QueueItemResponse DTO элемента очереди спасателя
// @Description DTO элемента очереди спасателя
type QueueItemResponse struct {
	Report       *ReportResponse   `json:"report"`
	Status       *StatusResponse   `json:"status"`
	Destinations []*StatusResponse `json:"destinations"`
}
