package models

import (
	"time"

	"github.com/google/uuid"
)

// Report представляет сообщение о брошенной рыболовной сети
type Report struct {
	ID                 uuid.UUID  `json:"id"`
	StatusID           *int64     `json:"status_id"`
	ReportingPersonID  *uuid.UUID `json:"reporting_person_id"`
	RecoveringPersonID *uuid.UUID `json:"recovering_person_id"`
	Latitude           float64    `json:"latitude"`
	Longitude          float64    `json:"longitude"`
	Size               string     `json:"size"`
	Description        string     `json:"description"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewReport создает сообщение в начальном статусе без спасателя
func NewReport(reportingPerson *Person, reported *Status) *Report {
	reporterID := reportingPerson.ID
	statusID := reported.ID
	return &Report{
		StatusID:          &statusID,
		ReportingPersonID: &reporterID,
	}
}

// ApplyTransition переводит сообщение в новый статус. Допустимость перехода
// проверяется до вызова. Спасатель закрепляется только при переходе
// в статус, значимый для спасения.
func (r *Report) ApplyTransition(newStatus *Status, acting *Person) {
	statusID := newStatus.ID
	r.StatusID = &statusID
	if newStatus.RelevantForRecovery {
		actingID := acting.ID
		r.RecoveringPersonID = &actingID
	}
}

// HasStatus сообщает, находится ли сообщение в статусе с данным ID
func (r *Report) HasStatus(id int64) bool {
	return r.StatusID != nil && *r.StatusID == id
}

// DetachStatus снимает связь сообщения со статусом
func (r *Report) DetachStatus() {
	r.StatusID = nil
}

// DetachReportingPerson снимает связь с сообщающим
func (r *Report) DetachReportingPerson() {
	r.ReportingPersonID = nil
}

// DetachRecoveringPerson снимает связь со спасателем
func (r *Report) DetachRecoveringPerson() {
	r.RecoveringPersonID = nil
}

// ReportFilter ограничивает выборку сообщений.
// Пустой StatusIDs означает отсутствие фильтра по статусу.
type ReportFilter struct {
	StatusIDs          []int64
	ReportingPersonID  *uuid.UUID
	RecoveringPersonID *uuid.UUID
	Page               int
	PageSize           int
}
