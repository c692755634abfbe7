// Файл: internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ArborCRM/internal/access"
	"ArborCRM/internal/audit"
	"ArborCRM/internal/backend"
	"ArborCRM/internal/config"
	"ArborCRM/internal/constants"
	"ArborCRM/internal/models"
	"ArborCRM/internal/payroll"
	"ArborCRM/internal/session"
	"ArborCRM/internal/settlement"
	"ArborCRM/internal/utils"
)

// BackendService - часть backend.Client, нужная обработчикам.
// Выделено в интерфейс ради httptest-тестов с фейком.
type BackendService interface {
	GetJob(ctx context.Context, jobID int64) (*models.Job, error)
	UpdateJobStatus(ctx context.Context, jobID int64, status string) (*models.Job, error)
	ToggleAssignment(ctx context.Context, jobID, userID int64) error
	ListEarnings(ctx context.Context, page int) ([]models.Earning, error)
}

// PayrollService проводит событие оплаты (реализуется payroll.Distributor).
type PayrollService interface {
	Distribute(ctx context.Context, job *models.Job, skip map[int64]bool) (*payroll.Result, error)
}

// AuditLog - асинхронный журнал (реализуется audit.Worker). nil допустим.
type AuditLog interface {
	Log(event audit.Event)
}

// AuditStore - чтение журнала для админского просмотра. nil допустим.
type AuditStore interface {
	GetByType(ctx context.Context, eventType string) ([]audit.Event, error)
}

// Notifier - уведомления бухгалтерии. nil допустим.
type Notifier interface {
	PaymentRecorded(res *payroll.Result)
	PartialDistribution(res *payroll.Result)
}

// ApiDependencies содержит зависимости для обработчиков API.
type ApiDependencies struct {
	Config   *config.Config
	Backend  BackendService
	Sessions *session.SessionManager
	Payroll  PayrollService
	Audit    AuditLog
	Events   AuditStore
	Notify   Notifier
}

// jsonResponse - вспомогательная структура для стандартного ответа API
type jsonResponse struct {
	Status  string      `json:"status"` // "success" или "error"
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, resp jsonResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("writeJSON: ошибка кодирования ответа: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, jsonResponse{Status: "error", Message: message})
}

func writeJSONSuccess(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, jsonResponse{Status: "success", Message: message, Data: data})
}

func accessDeniedText() string {
	return constants.AccessDeniedMessage
}

func (deps *ApiDependencies) parseRole(user *models.User) (access.Role, error) {
	return access.ParseRole(user.Role)
}

// backendStatusCode переводит ошибку бэкенда в наш HTTP-статус:
// 404 пробрасываем как есть, остальное — 502.
func backendStatusCode(err error) int {
	var backendErr *backend.BackendError
	if errors.As(err, &backendErr) && backendErr.StatusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// jobIDFromURL достает и проверяет {id} из пути.
func jobIDFromURL(r *http.Request) (int64, error) {
	return utils.ParseID(chi.URLParam(r, "id"))
}

// GetClientConfig отдает публичную конфигурацию для фронтенда.
func (deps *ApiDependencies) GetClientConfig(w http.ResponseWriter, r *http.Request) {
	writeJSONSuccess(w, "", map[string]string{
		"env":              deps.Config.AppEnv,
		"payment_page_url": deps.Config.PaymentPageURL,
	})
}

// GetJobSettlement считает финансовую картину работы: подытог, налог,
// итог по счету и чистую прибыль. Расчет производный и нигде не
// сохраняется — каждый запрос считает заново по свежим данным.
func (deps *ApiDependencies) GetJobSettlement(w http.ResponseWriter, r *http.Request) {
	jobID, err := jobIDFromURL(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректный идентификатор работы.")
		return
	}

	job, err := deps.Backend.GetJob(r.Context(), jobID)
	if err != nil {
		log.Printf("GetJobSettlement: ошибка загрузки работы #%d: %v", jobID, err)
		writeJSONError(w, backendStatusCode(err), "Не удалось загрузить работу.")
		return
	}

	settings, err := deps.Sessions.GetSettings(r.Context())
	if err != nil {
		log.Printf("GetJobSettlement: ошибка загрузки настроек: %v", err)
		writeJSONError(w, http.StatusBadGateway, "Не удалось загрузить настройки.")
		return
	}

	breakdown := settlement.Calculate(job, settings.TaxRate)

	if user, ok := currentUser(r); ok {
		deps.logEvent(audit.NewEvent(
			audit.WithType(constants.EVENT_SETTLEMENT_VIEWED),
			audit.WithData(map[string]int64{"job_id": jobID}),
			audit.WithActor(user.ID, user.Role),
		))
	}

	writeJSONSuccess(w, "", breakdown)
}

// GetProfile отдает текущего пользователя и вариант дашборда его роли.
func (deps *ApiDependencies) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Пользователь не найден в контексте запроса.")
		return
	}

	role, err := deps.parseRole(user)
	if err != nil {
		writeJSONError(w, http.StatusForbidden, "Роль пользователя не распознана.")
		return
	}

	writeJSONSuccess(w, "", map[string]interface{}{
		"user": user,
		"view": access.ViewFor(role),
	})
}

// payJobRequest - тело POST /api/jobs/{id}/pay.
type payJobRequest struct {
	// SkipUserIDs - техники, которым начисление уже прошло при
	// предыдущей (частично неудачной) попытке.
	SkipUserIDs []int64 `json:"skip_user_ids,omitempty"`
}

// PayJob проводит событие оплаты: начисляет комиссии всей бригаде,
// затем отмечает счет оплаченным и переводит работу в "paid".
func (deps *ApiDependencies) PayJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := jobIDFromURL(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректный идентификатор работы.")
		return
	}

	var req payJobRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Некорректное тело запроса.")
			return
		}
	}
	skip := make(map[int64]bool, len(req.SkipUserIDs))
	for _, id := range req.SkipUserIDs {
		skip[id] = true
	}

	job, err := deps.Backend.GetJob(r.Context(), jobID)
	if err != nil {
		log.Printf("PayJob: ошибка загрузки работы #%d: %v", jobID, err)
		writeJSONError(w, backendStatusCode(err), "Не удалось загрузить работу.")
		return
	}

	user, _ := currentUser(r)
	res, err := deps.Payroll.Distribute(r.Context(), job, skip)

	switch {
	case errors.Is(err, payroll.ErrNoInvoice):
		writeJSONError(w, http.StatusConflict, "У работы нет счета, оплата невозможна.")
		return

	case errors.Is(err, payroll.ErrPartialDistribution):
		// Частичный успех: счет не оплачен, но исходы по каждому
		// технику отдаем, чтобы оператор повторил остаток.
		deps.logPayEvent(constants.EVENT_DISTRIBUTION_PARTIAL, user, res)
		if deps.Notify != nil {
			deps.Notify.PartialDistribution(res)
		}
		writeJSON(w, http.StatusBadGateway, jsonResponse{
			Status:  "error",
			Message: "Комиссии начислены не всем техникам. Счет не отмечен оплаченным, повторите оплату с учетом уже начисленных.",
			Data:    res,
		})
		return

	case err != nil:
		log.Printf("PayJob: ошибка проведения оплаты по работе #%d: %v", jobID, err)
		writeJSON(w, http.StatusBadGateway, jsonResponse{
			Status:  "error",
			Message: "Ошибка проведения оплаты.",
			Data:    res,
		})
		return
	}

	if res.AlreadyPaid {
		deps.logPayEvent(constants.EVENT_PAYMENT_DUPLICATE, user, res)
		writeJSONSuccess(w, "Счет уже был оплачен, повторное проведение не требуется.", res)
		return
	}

	deps.logPayEvent(constants.EVENT_PAYMENT_RECORDED, user, res)
	if deps.Notify != nil {
		deps.Notify.PaymentRecorded(res)
	}
	writeJSONSuccess(w, "Оплата проведена.", res)
}

// updateStatusRequest - тело PUT /api/jobs/{id}/status.
type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateJobStatus переводит работу в новый статус. Статус движется
// только вперед по жизненному циклу pending -> active -> completed ->
// paid; попытка отката отклоняется.
func (deps *ApiDependencies) UpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := jobIDFromURL(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректный идентификатор работы.")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректное тело запроса.")
		return
	}

	newRank, ok := constants.JobStatusRank[req.Status]
	if !ok {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Неизвестный статус: %q.", req.Status))
		return
	}

	// Перевод в "paid" идет только через проведение оплаты: иначе
	// работа окажется оплаченной без начисленных комиссий.
	if req.Status == constants.STATUS_PAID {
		writeJSONError(w, http.StatusConflict, "Статус 'paid' выставляется только проведением оплаты.")
		return
	}

	job, err := deps.Backend.GetJob(r.Context(), jobID)
	if err != nil {
		writeJSONError(w, backendStatusCode(err), "Не удалось загрузить работу.")
		return
	}

	currentRank, ok := constants.JobStatusRank[job.Status]
	if ok && newRank <= currentRank {
		writeJSONError(w, http.StatusConflict,
			fmt.Sprintf("Статус не может вернуться назад: текущий '%s', запрошен '%s'.", job.Status, req.Status))
		return
	}

	updated, err := deps.Backend.UpdateJobStatus(r.Context(), jobID, req.Status)
	if err != nil {
		log.Printf("UpdateJobStatus: ошибка обновления статуса работы #%d: %v", jobID, err)
		writeJSONError(w, backendStatusCode(err), "Не удалось обновить статус работы.")
		return
	}

	if user, ok := currentUser(r); ok {
		deps.logEvent(audit.NewEvent(
			audit.WithType(constants.EVENT_STATUS_ADVANCED),
			audit.WithData(map[string]string{"from": job.Status, "to": updated.Status}),
			audit.WithActor(user.ID, user.Role),
			audit.WithMetadata(map[string]string{"job_id": fmt.Sprintf("%d", jobID)}),
		))
	}

	writeJSONSuccess(w, "Статус обновлен.", updated)
}

// toggleAssignmentRequest - тело POST /api/jobs/{id}/assign.
type toggleAssignmentRequest struct {
	UserID int64 `json:"user_id"`
}

// ToggleAssignment переключает назначение техника на работу.
func (deps *ApiDependencies) ToggleAssignment(w http.ResponseWriter, r *http.Request) {
	jobID, err := jobIDFromURL(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректный идентификатор работы.")
		return
	}

	var req toggleAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "Некорректное тело запроса: требуется user_id.")
		return
	}

	if err := deps.Backend.ToggleAssignment(r.Context(), jobID, req.UserID); err != nil {
		log.Printf("ToggleAssignment: ошибка назначения техника #%d на работу #%d: %v", req.UserID, jobID, err)
		writeJSONError(w, backendStatusCode(err), "Не удалось изменить назначение.")
		return
	}

	if user, ok := currentUser(r); ok {
		deps.logEvent(audit.NewEvent(
			audit.WithType(constants.EVENT_CREW_TOGGLED),
			audit.WithData(map[string]int64{"job_id": jobID, "user_id": req.UserID}),
			audit.WithActor(user.ID, user.Role),
		))
	}

	writeJSONSuccess(w, "Назначение изменено.", nil)
}

// ResolveView отвечает фронтенду, что показать по запрошенному пути:
// экран или редирект. Вся маршрутная логика ролей живет здесь, фронтенд
// только исполняет решение.
func (deps *ApiDependencies) ResolveView(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = constants.PATH_ROOT
	}

	// Эндпоинт публичный: аноним тоже должен получить свой редирект
	// на логин. Токен, если он есть, проверяем сами; невалидный токен
	// приравнивается к его отсутствию.
	var user *models.User
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		resolved, err := deps.Sessions.ResolveUser(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
		if err == nil {
			user = resolved
		}
	}

	decision, err := access.Resolve(path, user)
	if err != nil {
		log.Printf("ResolveView: ошибка резолва пути '%s': %v", path, err)
		writeJSONError(w, http.StatusForbidden, "Роль пользователя не распознана.")
		return
	}

	writeJSONSuccess(w, "", decision)
}

// ListAuditEvents отдает события журнала по типу (см. constants.EVENT_*).
func (deps *ApiDependencies) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	if deps.Events == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Журнал аудита не настроен.")
		return
	}

	eventType := r.URL.Query().Get("type")
	if eventType == "" {
		writeJSONError(w, http.StatusBadRequest, "Требуется параметр type.")
		return
	}

	events, err := deps.Events.GetByType(r.Context(), eventType)
	if err != nil {
		log.Printf("ListAuditEvents: ошибка чтения журнала: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось прочитать журнал аудита.")
		return
	}

	writeJSONSuccess(w, "", events)
}

func (deps *ApiDependencies) logEvent(event audit.Event) {
	if deps.Audit != nil {
		deps.Audit.Log(event)
	}
}

func (deps *ApiDependencies) logPayEvent(eventType string, user *models.User, res *payroll.Result) {
	event := audit.NewEvent(
		audit.WithType(eventType),
		audit.WithData(res),
	)
	if user != nil {
		audit.WithActor(user.ID, user.Role)(&event)
	}
	deps.logEvent(event)
}
