package handlers

import "context"

// contextKey тип для ключей контекста
type contextKey string

// OwnerIDKey ключ для хранения id владельца в контексте
const OwnerIDKey contextKey = "owner_id"

// WithOwnerID возвращает контекст с id владельца
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, OwnerIDKey, ownerID)
}

// GetOwnerID извлекает id владельца из контекста запроса
func GetOwnerID(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(OwnerIDKey).(string)
	return ownerID, ok && ownerID != ""
}
