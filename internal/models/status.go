package models

// Коды статусов, которые использует матрица переходов.
// Остальные статусы каталога допустимы, но никогда не являются целью перехода.
const (
	StatusReported        = "reported"
	StatusRecoveryPending = "recovery_pending"
	StatusRecovered       = "recovered"
	StatusLost            = "lost"
)

// Status представляет стадию жизненного цикла сообщения о сети
type Status struct {
	ID                  int64  `json:"id"`
	Code                string `json:"code"`
	Description         string `json:"description"`
	RelevantForRecovery bool   `json:"relevant_for_recovery"`
}

// Is сообщает, совпадает ли код статуса с переданным
func (s *Status) Is(code string) bool {
	return s != nil && s.Code == code
}

// StatusFilter ограничивает выборку статусов
type StatusFilter struct {
	Description         string
	RelevantForRecovery *bool
}
