// Файл: internal/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"ArborCRM/internal/models"
)

// Client - HTTP-клиент REST-бэкенда компании. Весь доступ к данным
// (джобы, счета, начисления, настройки) идет только через него:
// локальной бизнес-БД у сервиса нет.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// BackendError - структурированная ошибка ответа бэкенда. Вызывающая
// сторона сама решает, как ее показать (не блокирующий alert, как было
// в старом клиенте, а обычный JSON с кодом).
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("бэкенд вернул ошибку: статус %d: %s", e.StatusCode, e.Message)
}

// NewClient создает клиент бэкенда с заданным таймаутом.
// Таймаут приравнивается к отказу: для саги распределения комиссий
// зависший запрос не лучше упавшего.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// doRequest выполняет запрос, проверяет статус и возвращает тело ответа.
// POST-запросы получают заголовок Idempotence-Key, чтобы ретраи не
// плодили дубликаты на стороне бэкенда.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			log.Printf("backend.doRequest: ошибка маршалинга тела запроса %s %s: %v", method, path, err)
			return nil, fmt.Errorf("ошибка подготовки запроса: %w", err)
		}
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания HTTP-запроса: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotence-Key", uuid.New().String())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("backend.doRequest: ошибка выполнения запроса %s %s: %v", method, path, err)
		return nil, fmt.Errorf("ошибка запроса к бэкенду: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа бэкенда: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Printf("backend.doRequest: %s %s вернул статус %d, тело: %.200s", method, path, resp.StatusCode, string(responseBody))
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(responseBody))}
	}

	return responseBody, nil
}

// GetJob возвращает работу со вложенными lead, employees, expenses, invoice.
func (c *Client) GetJob(ctx context.Context, jobID int64) (*models.Job, error) {
	body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/jobs/%d", jobID), nil)
	if err != nil {
		return nil, err
	}
	var job models.Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа /jobs/%d: %w", jobID, err)
	}
	return &job, nil
}

// GetSettings возвращает общесистемные настройки (в т.ч. tax_rate).
// Формат ответа исторически плавает (объект или массив пар) — разбор
// берет на себя models.Settings.
func (c *Client) GetSettings(ctx context.Context) (*models.Settings, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/settings", nil)
	if err != nil {
		return nil, err
	}
	var settings models.Settings
	if err := json.Unmarshal(body, &settings); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа /settings: %w", err)
	}
	return &settings, nil
}

// UpdateJobStatus обновляет статус работы и возвращает обновленную работу.
// Бэкенд отвечает то {"job": {...}}, то просто {...} — принимаем оба варианта.
func (c *Client) UpdateJobStatus(ctx context.Context, jobID int64, status string) (*models.Job, error) {
	payload := map[string]string{"status": status}
	body, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/jobs/%d", jobID), payload)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Job *models.Job `json:"job"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Job != nil {
		return wrapped.Job, nil
	}

	var job models.Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа PUT /jobs/%d: %w", jobID, err)
	}
	return &job, nil
}

// PayInvoice отмечает счет оплаченным. Вызов идемпотентен на стороне бэкенда.
func (c *Client) PayInvoice(ctx context.Context, invoiceID int64) error {
	_, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/invoices/%d/pay", invoiceID), nil)
	return err
}

// CreateEarning создает одну запись начисления технику.
func (c *Client) CreateEarning(ctx context.Context, earning models.Earning) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/earnings", earning)
	return err
}

// ToggleAssignment переключает назначение одного техника на работу.
func (c *Client) ToggleAssignment(ctx context.Context, jobID, userID int64) error {
	payload := map[string]int64{"user_id": userID}
	_, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/jobs/%d/assign", jobID), payload)
	return err
}

// ListEarnings возвращает страницу начислений (используется только
// экспортом отчетов). Бэкенд отдает либо массив, либо {"data": [...]}.
func (c *Client) ListEarnings(ctx context.Context, page int) ([]models.Earning, error) {
	body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/earnings?page=%d", page), nil)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Data []models.Earning `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}

	var earnings []models.Earning
	if err := json.Unmarshal(body, &earnings); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа /earnings: %w", err)
	}
	return earnings, nil
}

// GetCurrentUser проверяет пользовательский Bearer-токен через бэкенд
// и возвращает пользователя. Протокол аутентификации нам не принадлежит,
// это непрозрачный вызов.
func (c *Client) GetCurrentUser(ctx context.Context, userToken string) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me", nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания HTTP-запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+userToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к бэкенду: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа бэкенда: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа /me: %w", err)
	}
	return &user, nil
}
