package models

import "time"

// Earning представляет начисление сотруднику. Создается только как
// побочный эффект отметки счета оплаченным: по одной записи на каждого
// назначенного техника за одно событие оплаты. Никогда не обновляется.
type Earning struct {
	ID       int64     `json:"id,omitempty"`
	UserID   int64     `json:"user_id"`
	JobID    int64     `json:"job_id"`
	Type     string    `json:"type"`
	Amount   float64   `json:"amount"`
	EarnedAt time.Time `json:"earned_at"`
}
