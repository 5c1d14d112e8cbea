package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"promotion-console/internal/apperror"
	"promotion-console/internal/config"
	"promotion-console/internal/logger"
	"promotion-console/internal/metrics"
	"promotion-console/internal/models"

	"github.com/google/uuid"
)

const (
	promotionsPath  = "/promotions"
	maxBodyBytes    = 64 << 10
	requestIDHeader = "X-Request-ID"
)

// Операции API (метки метрик и логов).
const (
	OpCreate   = "create"
	OpRetrieve = "retrieve"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpSearch   = "search"
)

// messageFunc извлекает текст для пользователя из тела ответа с ошибкой.
type messageFunc func(body []byte) string

// PromotionClient выполняет CRUD и поиск по ресурсу /promotions.
// Все ошибки - *apperror.Error с готовым текстом для строки статуса.
type PromotionClient struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewPromotionClient создает клиент API промоакций.
func NewPromotionClient(cfg *config.APIConfig, log *logger.Logger, m *metrics.Metrics) *PromotionClient {
	return &PromotionClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout()},
		log:     log,
		metrics: m,
	}
}

// Create создаёт промоакцию; сервер назначает id.
func (c *PromotionClient) Create(ctx context.Context, payload models.PromotionPayload) (*models.Promotion, error) {
	var out models.Promotion
	if err := c.do(ctx, OpCreate, http.MethodPost, promotionsPath, payload, &out, serverMessage); err != nil {
		return nil, err
	}
	return &out, nil
}

// Retrieve получает промоакцию по id.
func (c *PromotionClient) Retrieve(ctx context.Context, id string) (*models.Promotion, error) {
	var out models.Promotion
	if err := c.do(ctx, OpRetrieve, http.MethodGet, promotionPath(id), nil, &out, serverMessage); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update заменяет промоакцию; id передаётся только в адресе.
func (c *PromotionClient) Update(ctx context.Context, id string, payload models.PromotionPayload) (*models.Promotion, error) {
	var out models.Promotion
	if err := c.do(ctx, OpUpdate, http.MethodPut, promotionPath(id), payload, &out, serverMessage); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete удаляет промоакцию. Тело ответа игнорируется, ошибка всегда с общим текстом.
func (c *PromotionClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, OpDelete, http.MethodDelete, promotionPath(id), nil, nil, genericMessage)
}

// Search ищет промоакции по готовой строке запроса (может быть пустой).
func (c *PromotionClient) Search(ctx context.Context, query string) ([]models.Promotion, error) {
	path := promotionsPath
	if query != "" {
		path += "?" + query
	}

	var out []models.Promotion
	if err := c.do(ctx, OpSearch, http.MethodGet, path, nil, &out, serverMessage); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Promotion{}
	}
	return out, nil
}

func (c *PromotionClient) do(ctx context.Context, op, method, path string, body, dest interface{}, failure messageFunc) (err error) {
	start := time.Now()
	requestID := uuid.NewString()
	entry := c.log.WithFields(map[string]interface{}{
		"operation":  op,
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	defer func() {
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = string(errorKind(err))
		}
		c.metrics.ObserveRequest(op, outcome, time.Since(start))
	}()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperror.Transport(apperror.GenericMessage, fmt.Errorf("failed to encode %s payload: %w", op, err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperror.Transport(apperror.GenericMessage, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		entry.WithError(err).Warn("Promotion API call failed")
		return apperror.Transport(apperror.GenericMessage, fmt.Errorf("failed to call %s: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		msg := failure(raw)
		entry.WithField("status", resp.StatusCode).WithField("message", msg).Info("Promotion API returned error")
		return apperror.Server(resp.StatusCode, msg, fmt.Errorf("%s returned status %d", op, resp.StatusCode))
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		entry.WithField("status", resp.StatusCode).Debug("Promotion API call succeeded")
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		entry.WithError(err).Warn("Failed to decode promotion API response")
		return apperror.Decode(apperror.GenericMessage, fmt.Errorf("failed to decode %s response: %w", op, err))
	}

	entry.WithField("status", resp.StatusCode).Debug("Promotion API call succeeded")
	return nil
}

func promotionPath(id string) string {
	return promotionsPath + "/" + url.PathEscape(id)
}

// serverMessage берёт поле message из тела ошибки, иначе общий текст.
func serverMessage(body []byte) string {
	var payload struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == nil || *payload.Message == "" {
		return apperror.GenericMessage
	}
	return *payload.Message
}

func genericMessage([]byte) string {
	return apperror.GenericMessage
}

func errorKind(err error) apperror.Kind {
	for _, kind := range []apperror.Kind{apperror.KindTransport, apperror.KindServer, apperror.KindDecode} {
		if apperror.Is(err, kind) {
			return kind
		}
	}
	return apperror.KindTransport
}
