package audit

import (
	"context"
	"log"
	"strconv"
	"sync"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Worker пишет события журнала асинхронно через буферизованный канал,
// чтобы запись аудита не задерживала ответ пользователю. При остановке
// дописывает все, что осталось в буфере.
type Worker struct {
	eventCh chan Event
	store   EventStore
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWorker создает воркер журнала с буфером на bufferSize событий.
func NewWorker(store EventStore, bufferSize int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		eventCh: make(chan Event, bufferSize),
		store:   store,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start запускает фоновую запись событий.
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.ctx.Done():
				// Дописываем остаток буфера перед выходом
				remaining := len(w.eventCh)
				if remaining > 0 {
					log.Printf("audit.Worker: дописываем %d событий перед остановкой.", remaining)
				}
				for len(w.eventCh) > 0 {
					event := <-w.eventCh
					if err := w.store.Save(context.Background(), event); err != nil {
						log.Printf("audit.Worker: ошибка записи события '%s' при остановке: %v", event.Type, err)
					}
				}
				return
			case event := <-w.eventCh:
				if err := w.store.Save(w.ctx, event); err != nil {
					log.Printf("audit.Worker: ошибка записи события '%s': %v", event.Type, err)
				}
			}
		}
	}()
}

// Log ставит событие в очередь на запись. Переполненный буфер не
// блокирует вызывающего: событие теряется с записью в лог.
func (w *Worker) Log(event Event) {
	select {
	case w.eventCh <- event:
	default:
		log.Printf("audit.Worker: буфер журнала переполнен, событие '%s' потеряно.", event.Type)
	}
}

// Shutdown останавливает воркер, дождавшись записи остатка буфера.
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
	close(w.eventCh)
}
