package audit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"ArborCRM/internal/audit"
)

type memStore struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *memStore) Save(ctx context.Context, e audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memStore) GetByType(ctx context.Context, eventType string) ([]audit.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []audit.Event
	for _, e := range m.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func TestNewEvent_Options(t *testing.T) {
	e := audit.NewEvent(
		audit.WithType("invoice.payment_recorded"),
		audit.WithData(map[string]int64{"job_id": 42}),
		audit.WithActor(7, "super_admin"),
		audit.WithMetadata(map[string]string{"source": "api"}),
	)

	if e.Type != "invoice.payment_recorded" {
		t.Errorf("Type = %q", e.Type)
	}
	if e.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("ID не заполнен")
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt не заполнен")
	}
	if e.Metadata["actor_id"] != "7" || e.Metadata["actor_role"] != "super_admin" {
		t.Errorf("Metadata = %v", e.Metadata)
	}
	if e.Metadata["source"] != "api" {
		t.Errorf("Metadata = %v", e.Metadata)
	}
}

func TestWorker_SavesQueuedEvents(t *testing.T) {
	store := &memStore{}
	w := audit.NewWorker(store, 16)
	w.Start()

	for i := 0; i < 5; i++ {
		w.Log(audit.NewEvent(audit.WithType("job.status_advanced")))
	}

	deadline := time.Now().Add(2 * time.Second)
	for store.count() < 5 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	w.Shutdown()

	if store.count() != 5 {
		t.Errorf("сохранено %d событий, want 5", store.count())
	}
}

func TestWorker_DrainsBufferOnShutdown(t *testing.T) {
	store := &memStore{}
	w := audit.NewWorker(store, 64)

	// Воркер еще не запущен: события копятся в буфере
	for i := 0; i < 10; i++ {
		w.Log(audit.NewEvent(audit.WithType("job.crew_toggled")))
	}

	w.Start()
	w.Shutdown()

	if store.count() != 10 {
		t.Errorf("после Shutdown сохранено %d событий, want 10", store.count())
	}
}

func TestWorker_FullBufferDoesNotBlock(t *testing.T) {
	store := &memStore{}
	w := audit.NewWorker(store, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			w.Log(audit.NewEvent(audit.WithType("x")))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Log заблокировался на переполненном буфере")
	}
}
