package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type sqlEventStore struct {
	db *sql.DB
}

// NewSqlEventStore создает хранилище журнала поверх PostgreSQL.
func NewSqlEventStore(db *sql.DB) *sqlEventStore {
	return &sqlEventStore{
		db: db,
	}
}

func (s *sqlEventStore) Save(ctx context.Context, e Event) error {
	jsonData, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("ошибка сериализации данных события: %w", err)
	}
	jsonMetadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("ошибка сериализации метаданных события: %w", err)
	}

	statement := `INSERT INTO audit_events (id, event_type, event_data, event_metadata, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err = s.db.ExecContext(ctx, statement, e.ID, e.Type, jsonData, jsonMetadata, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка записи события аудита: %w", err)
	}

	return nil
}

func (s *sqlEventStore) GetByType(ctx context.Context, eventType string) ([]Event, error) {
	query := `SELECT id, event_type, event_data, event_metadata, created_at FROM audit_events WHERE event_type = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, eventType)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала аудита: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var (
			event        Event
			jsonData     []byte
			jsonMetadata []byte
		)
		if err := rows.Scan(&event.ID, &event.Type, &jsonData, &jsonMetadata, &event.CreatedAt); err != nil {
			return events, err
		}
		if len(jsonData) > 0 {
			var data any
			if err := json.Unmarshal(jsonData, &data); err == nil {
				event.Data = data
			}
		}
		if len(jsonMetadata) > 0 {
			_ = json.Unmarshal(jsonMetadata, &event.Metadata)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return events, err
	}
	return events, nil
}
