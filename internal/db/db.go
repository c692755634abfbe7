// Файл: internal/db/db.go
package db

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var DB *sql.DB // Глобальная переменная для хранения подключения к БД

// InitDB инициализирует соединение с базой данных и создает таблицы.
// Локальная БД хранит только журнал аудита — бизнес-данные (джобы,
// счета, начисления) живут на стороне бэкенда и сюда не дублируются.
func InitDB() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL не установлена")
	}

	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return fmt.Errorf("ошибка парсинга DATABASE_URL: %v", err)
	}

	DB, err = sql.Open("postgres", parsedURL.String())
	if err != nil {
		return fmt.Errorf("ошибка подключения к базе данных: %v", err)
	}

	// Настройки пула соединений
	DB.SetMaxOpenConns(50)
	DB.SetMaxIdleConns(20)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("ошибка проверки соединения с базой данных: %v", err)
	}

	log.Println("Успешное подключение к базе данных.")

	if err := createTables(); err != nil {
		return err
	}

	log.Println("Миграции базы данных выполнены.")
	return nil
}

// createTables создает таблицы, если их еще нет.
func createTables() error {
	createAuditEventsTableSQL := `
	CREATE TABLE IF NOT EXISTS audit_events (
		id UUID PRIMARY KEY,
		event_type TEXT NOT NULL,
		event_data JSONB,
		event_metadata JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`
	if _, err := DB.Exec(createAuditEventsTableSQL); err != nil {
		return fmt.Errorf("ошибка создания таблицы audit_events: %v", err)
	}

	indexSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_audit_events_type ON audit_events (event_type);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_created_at ON audit_events (created_at);`,
	}
	for _, stmt := range indexSQL {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("ошибка создания индекса audit_events: %v", err)
		}
	}

	return nil
}

// CloseDB закрывает соединение с базой данных.
func CloseDB() {
	if DB != nil {
		if err := DB.Close(); err != nil {
			log.Printf("Ошибка закрытия соединения с базой данных: %v", err)
		} else {
			log.Println("Соединение с базой данных закрыто.")
		}
	}
}
