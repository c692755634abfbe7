package models

import "time"

// Lead представляет клиента (заявку с лендинга), к которому привязана работа.
type Lead struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Job представляет работу (проект) со всеми вложенными сущностями,
// как их отдает GET /jobs/{id}: клиент, бригада, расходы, счет.
// Price приходит как FlexFloat: отсутствующая или битая цена = 0,
// расчет из-за одного кривого поля не падает.
type Job struct {
	ID            int64     `json:"id"`
	Price         FlexFloat `json:"price"`
	Status        string    `json:"status"`
	ScheduledDate string    `json:"scheduled_date,omitempty"`
	Description   string    `json:"description,omitempty"`
	Lead          *Lead     `json:"lead,omitempty"`
	Employees     []User    `json:"employees,omitempty"`
	Expenses      []Expense `json:"expenses,omitempty"`
	Invoice       *Invoice  `json:"invoice,omitempty"`
	OfferID       int64     `json:"offer_id,omitempty"` // Опционально: работа могла быть создана из принятого оффера
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}
