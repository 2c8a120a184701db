package models

import "github.com/google/uuid"

// QueueItem - элемент очереди спасателя: сообщение, его текущий статус
// и статусы, в которые действующий участник может его перевести
type QueueItem struct {
	Report       *Report
	Status       *Status
	Destinations []*Status
}

// TransitionRequest - запрос на смену статуса одного сообщения
type TransitionRequest struct {
	ReportID uuid.UUID
	StatusID int64
}

// TransitionResult - итог применения одного запроса из пакета
type TransitionResult struct {
	ReportID uuid.UUID
	Report   *Report
	Err      error
}
