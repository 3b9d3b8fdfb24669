package api

import "time"

// Record представляет запись на границе клиент/сервер.
// Поля payload передаются как есть, в snake_case.
type Record struct {
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Fields    map[string]any `json:"fields"`
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	OwnerID   string         `json:"owner_id"`
	EntityID  string         `json:"entity_id"`
}

// ListResponse представляет ответ на выборку коллекции
type ListResponse struct {
	Records []Record `json:"records"`
}

// ChangeEvent представляет событие ленты изменений
type ChangeEvent struct {
	UpdatedAt time.Time `json:"updated_at"`
	Record    *Record   `json:"record,omitempty"` // nil для частичных событий и удалений
	ID        string    `json:"id"`               // ULID, монотонный в пределах сервера
	Topic     string    `json:"topic"`
	Kind      string    `json:"kind"` // insert, update, delete
	RecordID  string    `json:"record_id"`
	OwnerID   string    `json:"owner_id"`
}

// ReactionSummary представляет агрегированные реакции на комментарий
type ReactionSummary struct {
	Reactions map[string]int `json:"reactions"`
	CommentID string         `json:"comment_id"`
}

// ReactionsResponse представляет ответ на запрос реакций
type ReactionsResponse struct {
	Summaries []ReactionSummary `json:"summaries"`
}

// ReactRequest представляет запрос на добавление реакции
type ReactRequest struct {
	Emoji string `json:"emoji"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// TokenResponse представляет выпущенный bearer token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
