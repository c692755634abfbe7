package models

// User represents a user in the system.
// Роль неизменяема после создания (в наблюдаемых потоках).
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}
