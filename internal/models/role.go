package models

// Коды ролей, на которые опирается матрица переходов статусов
const (
	RoleAnonymousReporter = "anonymous_reporter"
	RoleReporter          = "reporter"
	RoleRecoverer         = "recoverer"
)

// Role представляет роль участника (анонимный сообщающий, сообщающий, спасатель)
type Role struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Is сообщает, совпадает ли код роли с переданным
func (r *Role) Is(code string) bool {
	return r != nil && r.Code == code
}
