// Package audit ведет журнал финансово значимых действий: просмотр
// расчета, смена статуса, фиксация оплаты, частичные распределения.
// Журнал — единственное, что сервис хранит локально.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event - одна запись журнала аудита.
type Event struct {
	ID        uuid.UUID         `json:"id,omitempty"`
	Type      string            `json:"event_type,omitempty"`
	Data      any               `json:"event_data,omitempty"`
	Metadata  map[string]string `json:"event_metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type EventOption func(*Event)

// WithType задает тип события (см. constants.EVENT_*).
func WithType(eventType string) EventOption {
	return func(e *Event) {
		e.Type = eventType
	}
}

// WithData прикладывает произвольные данные события (итог распределения,
// расчет и т.п.). Сериализуются в JSONB как есть.
func WithData(data any) EventOption {
	return func(e *Event) {
		e.Data = data
	}
}

// WithActor помечает событие пользователем, который его произвел.
func WithActor(userID int64, role string) EventOption {
	return func(e *Event) {
		e.Metadata["actor_id"] = formatID(userID)
		e.Metadata["actor_role"] = role
	}
}

// WithMetadata добавляет произвольные метаданные.
func WithMetadata(metadata map[string]string) EventOption {
	return func(e *Event) {
		for k, v := range metadata {
			e.Metadata[k] = v
		}
	}
}

// NewEvent создает событие с заполненными ID и временем.
func NewEvent(opts ...EventOption) Event {
	e := Event{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Metadata:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// EventStore - хранилище журнала. Реализация на PostgreSQL — в sql.go,
// тесты используют фейк в памяти.
type EventStore interface {
	Save(ctx context.Context, e Event) error
	GetByType(ctx context.Context, eventType string) ([]Event, error)
}
