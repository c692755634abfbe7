// Package payroll распределяет комиссии бригаде при отметке счета
// оплаченным. Комиссия — правило расчета зарплаты (фикс. доля от
// базовой цены работы), оно намеренно НЕ связано с расчетом прибыли
// в пакете settlement: две независимые политики.
package payroll

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"ArborCRM/internal/constants"
	"ArborCRM/internal/models"
)

// Backend - узкий интерфейс бэкенда, нужный распределителю.
// Реальная реализация — backend.Client; в тестах — фейк в памяти.
type Backend interface {
	PayInvoice(ctx context.Context, invoiceID int64) error
	CreateEarning(ctx context.Context, earning models.Earning) error
	UpdateJobStatus(ctx context.Context, jobID int64, status string) (*models.Job, error)
}

// ErrNoInvoice - у работы нет счета: оплатить через этот путь нельзя,
// неявно создавать счет мы не имеем права. Ошибка показывается оператору.
var ErrNoInvoice = errors.New("у работы нет счета, оплата невозможна")

// ErrPartialDistribution - часть начислений не создана. Счет НЕ отмечен
// оплаченным; в результате перечислено, кому начисление прошло, а кому
// нет, чтобы оператор повторил только остаток.
var ErrPartialDistribution = errors.New("комиссии начислены не всем техникам, оплата не зафиксирована")

// TechOutcome - исход начисления одному технику.
type TechOutcome struct {
	UserID int64   `json:"user_id"`
	Name   string  `json:"name,omitempty"`
	Amount float64 `json:"amount"`
	Error  string  `json:"error,omitempty"`
}

// Result - итог одного события оплаты.
type Result struct {
	JobID             int64         `json:"job_id"`
	InvoiceID         int64         `json:"invoice_id"`
	AlreadyPaid       bool          `json:"already_paid"`
	CommissionPerTech float64       `json:"commission_per_tech"`
	Credited          []TechOutcome `json:"credited"`
	Failed            []TechOutcome `json:"failed,omitempty"`
	Skipped           []int64       `json:"skipped_user_ids,omitempty"` // Уже начислено при прошлой попытке
	InvoicePaid       bool          `json:"invoice_paid"`
	JobStatus         string        `json:"job_status,omitempty"`
	PaidAt            time.Time     `json:"paid_at,omitempty"`
}

// Distributor выполняет сагу «оплата счета + комиссии бригаде».
type Distributor struct {
	backend Backend
	rate    float64
	clock   func() time.Time // Подменяется в тестах
}

// NewDistributor создает распределитель с заданной долей комиссии.
func NewDistributor(b Backend, rate float64) *Distributor {
	return &Distributor{
		backend: b,
		rate:    rate,
		clock:   time.Now,
	}
}

// WithClock подменяет источник времени (для тестов).
func (d *Distributor) WithClock(clock func() time.Time) *Distributor {
	d.clock = clock
	return d
}

// Distribute проводит одно событие оплаты по работе job.
//
// Порядок фиксации: сначала ВСЕ начисления, и только потом отметка
// счета и перевод работы в "paid". Транзакции на стороне бэкенда нет,
// поэтому при любом отказе начисления счет остается неоплаченным, а
// результат перечисляет успевших и не успевших — оператор повторяет
// вызов с skip-списком уже начисленных.
//
// skip - user_id техников, которым начисление уже прошло при прошлой
// попытке (retry-of-remainder). Может быть nil.
func (d *Distributor) Distribute(ctx context.Context, job *models.Job, skip map[int64]bool) (*Result, error) {
	if job.Invoice == nil {
		log.Printf("payroll.Distribute: у работы #%d нет счета.", job.ID)
		return nil, ErrNoInvoice
	}

	res := &Result{
		JobID:     job.ID,
		InvoiceID: job.Invoice.ID,
		JobStatus: job.Status,
	}

	// Идемпотентность: уже оплаченный счет — no-op с прежним итогом,
	// никаких повторных начислений.
	if constants.IsInvoicePaid(job.Invoice.Status) || job.Status == constants.STATUS_PAID {
		log.Printf("payroll.Distribute: счет #%d по работе #%d уже оплачен, повторный вызов игнорируется.", job.Invoice.ID, job.ID)
		res.AlreadyPaid = true
		res.InvoicePaid = true
		return res, nil
	}

	// Комиссия считается от ВАЛОВОЙ базовой цены: расходы (ни
	// перевыставляемые, ни внутренние) из нее не вычитаются.
	res.CommissionPerTech = job.Price.Value() * d.rate
	res.PaidAt = d.clock()

	// Начисляем всем назначенным техникам параллельно: все запросы
	// уходят сразу, ждем все. errgroup здесь не годится — отказ одного
	// не должен отменять остальных, нужен исход по каждому.
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, emp := range job.Employees {
		if skip[emp.ID] {
			res.Skipped = append(res.Skipped, emp.ID)
			continue
		}

		wg.Add(1)
		go func(emp models.User) {
			defer wg.Done()
			earning := models.Earning{
				UserID:   emp.ID,
				JobID:    job.ID,
				Type:     constants.EARNING_TYPE_JOB_COMMISSION,
				Amount:   res.CommissionPerTech,
				EarnedAt: res.PaidAt,
			}
			outcome := TechOutcome{UserID: emp.ID, Name: emp.Name, Amount: res.CommissionPerTech}
			err := d.backend.CreateEarning(ctx, earning)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("payroll.Distribute: начисление технику #%d по работе #%d не прошло: %v", emp.ID, job.ID, err)
				outcome.Error = err.Error()
				res.Failed = append(res.Failed, outcome)
			} else {
				res.Credited = append(res.Credited, outcome)
			}
		}(emp)
	}
	wg.Wait()

	if len(res.Failed) > 0 {
		log.Printf("payroll.Distribute: работа #%d: начислено %d, отказов %d. Счет НЕ отмечен оплаченным.", job.ID, len(res.Credited), len(res.Failed))
		return res, ErrPartialDistribution
	}

	// Ноль назначенных техников — валидный случай: начислений нет,
	// комиссия остается компании, счет все равно оплачивается.
	if err := d.backend.PayInvoice(ctx, job.Invoice.ID); err != nil {
		return res, fmt.Errorf("ошибка отметки счета #%d оплаченным: %w", job.Invoice.ID, err)
	}
	res.InvoicePaid = true

	updated, err := d.backend.UpdateJobStatus(ctx, job.ID, constants.STATUS_PAID)
	if err != nil {
		// Счет оплачен, начисления созданы, но статус работы не
		// продвинулся — отдаем результат вместе с ошибкой.
		return res, fmt.Errorf("счет оплачен, но статус работы #%d не обновлен: %w", job.ID, err)
	}
	res.JobStatus = updated.Status

	log.Printf("payroll.Distribute: работа #%d оплачена, начислений: %d по %.2f.", job.ID, len(res.Credited), res.CommissionPerTech)
	return res, nil
}
