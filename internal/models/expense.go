package models

// Expense представляет расход, привязанный к конкретной работе.
// Категория — свободная строка; какие категории перевыставляются
// клиенту, решает allowlist в constants (materials, rental), все
// остальное — внутренние издержки. Записи неизменяемы после создания.
type Expense struct {
	ID          int64     `json:"id"`
	JobID       int64     `json:"job_id"`
	Category    string    `json:"category"`
	Amount      FlexFloat `json:"amount"` // Битая сумма разбирается в 0 и не ломает расчет
	Description string    `json:"description,omitempty"`
	SpentAt     string    `json:"spent_at,omitempty"`
}
