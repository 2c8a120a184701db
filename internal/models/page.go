package models

// Границы пагинации списков участников и сообщений
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)
