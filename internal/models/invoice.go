package models

// Invoice представляет счет, выставленный клиенту по работе.
// Переход unpaid -> paid происходит ровно один раз через POST
// /invoices/{id}/pay; повторная оплата — no-op на стороне бэкенда.
type Invoice struct {
	ID            int64     `json:"id"`
	JobID         int64     `json:"job_id"`
	Total         FlexFloat `json:"total"`
	Status        string    `json:"status"`
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	IssuedAt      string    `json:"issued_at,omitempty"`
}
