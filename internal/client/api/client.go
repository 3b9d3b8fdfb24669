package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iudanet/podsync/internal/models"
	"github.com/iudanet/podsync/pkg/api"
)

const basePath = "/api/v1"

// Client представляет HTTP клиент удалённого хранилища записей
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient создает новый API клиент.
// timeout ограничивает каждый отдельный запрос.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// BaseURL returns the server address the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the bearer token sent with every request
func (c *Client) Token() string {
	return c.token
}

// FetchQuery ограничивает выборку коллекции
type FetchQuery struct {
	Since    time.Time // только записи с updated_at > Since; нулевое значение = все
	EntityID string
}

// Fetch получает коллекцию записей вида kind, упорядоченную по updated_at
func (c *Client) Fetch(ctx context.Context, kind string, q FetchQuery) ([]*models.Record, error) {
	params := url.Values{}
	if !q.Since.IsZero() {
		params.Set("since", q.Since.UTC().Format(time.RFC3339Nano))
	}
	if q.EntityID != "" {
		params.Set("entity_id", q.EntityID)
	}

	path := fmt.Sprintf("%s/records/%s", basePath, url.PathEscape(kind))
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp api.ListResponse
	if err := c.doRequest(ctx, "fetch", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]*models.Record, 0, len(resp.Records))
	for _, dto := range resp.Records {
		records = append(records, FromDTO(dto))
	}
	return records, nil
}

// Get получает одну запись
func (c *Client) Get(ctx context.Context, kind, id string) (*models.Record, error) {
	var resp api.Record
	if err := c.doRequest(ctx, "get", http.MethodGet, recordPath(kind, id), nil, &resp); err != nil {
		return nil, err
	}
	return FromDTO(resp), nil
}

// Insert создает запись. Возвращает ErrConflict если id уже занят.
func (c *Client) Insert(ctx context.Context, r *models.Record) (*models.Record, error) {
	var resp api.Record
	path := fmt.Sprintf("%s/records/%s", basePath, url.PathEscape(r.Kind))
	if err := c.doRequest(ctx, "insert", http.MethodPost, path, ToDTO(r), &resp); err != nil {
		return nil, err
	}
	return FromDTO(resp), nil
}

// Update перезаписывает запись по id (upsert на сервере)
func (c *Client) Update(ctx context.Context, r *models.Record) (*models.Record, error) {
	var resp api.Record
	if err := c.doRequest(ctx, "update", http.MethodPut, recordPath(r.Kind, r.ID), ToDTO(r), &resp); err != nil {
		return nil, err
	}
	return FromDTO(resp), nil
}

// Delete удаляет запись
func (c *Client) Delete(ctx context.Context, kind, id string) error {
	return c.doRequest(ctx, "delete", http.MethodDelete, recordPath(kind, id), nil, nil)
}

// Reactions получает сводку реакций по списку комментариев
func (c *Client) Reactions(ctx context.Context, commentIDs []string) (map[string]map[string]int, error) {
	params := url.Values{}
	for _, id := range commentIDs {
		params.Add("comment_id", id)
	}

	var resp api.ReactionsResponse
	if err := c.doRequest(ctx, "reactions", http.MethodGet, basePath+"/reactions?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]map[string]int, len(resp.Summaries))
	for _, s := range resp.Summaries {
		out[s.CommentID] = s.Reactions
	}
	return out, nil
}

// React добавляет реакцию на комментарий
func (c *Client) React(ctx context.Context, commentID, emoji string) error {
	path := fmt.Sprintf("%s/reactions/%s", basePath, url.PathEscape(commentID))
	return c.doRequest(ctx, "react", http.MethodPost, path, api.ReactRequest{Emoji: emoji}, nil)
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, "health", http.MethodGet, basePath+"/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func recordPath(kind, id string) string {
	return fmt.Sprintf("%s/records/%s/%s", basePath, url.PathEscape(kind), url.PathEscape(id))
}

// doRequest выполняет HTTP запрос и классифицирует ошибки
func (c *Client) doRequest(ctx context.Context, op, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Сетевая ошибка или таймаут: повторим при следующем flush/pull
		return &RemoteError{Op: op, Err: ErrTransient, Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteError{Op: op, Err: ErrTransient, Cause: err, Status: resp.StatusCode}
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remoteErr := &RemoteError{Op: op, Err: classify(resp.StatusCode), Status: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			remoteErr.Message = errResp.Message
		}
		return remoteErr
	}

	// Декодируем успешный ответ
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
