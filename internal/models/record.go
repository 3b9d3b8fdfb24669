package models

import (
	"time"
)

// Record представляет синхронизируемую запись любого типа (progress, comment, profile).
// ID генерируется на клиенте до подтверждения сервером, поэтому одна и та же
// запись имеет одинаковый ID локально и на сервере.
type Record struct {
	CreatedAt time.Time  `json:"created_at"`          // CreatedAt время создания (не меняется)
	UpdatedAt time.Time  `json:"updated_at"`          // UpdatedAt время последней локальной или слитой мутации
	SyncedAt  *time.Time `json:"synced_at,omitempty"` // SyncedAt последнее подтверждение push/pull, nil если ни разу
	Fields    Fields     `json:"fields"`              // Fields полезная нагрузка, зависящая от Kind
	ID        string     `json:"id"`                  // ID уникальный идентификатор записи (UUID)
	Kind      string     `json:"kind"`                // Kind тип записи: "progress", "comment", "profile"
	OwnerID   string     `json:"owner_id"`            // OwnerID идентификатор владельца записи
	EntityID  string     `json:"entity_id"`           // EntityID логическая сущность (эпизод, профиль)
	NeedsSync bool       `json:"needs_sync"`          // NeedsSync локальное состояние не подтверждено сервером
	Deleted   bool       `json:"deleted"`             // Deleted локальное удаление, ожидающее отправки
}

// Record kinds
const (
	KindProgress = "progress"
	KindComment  = "comment"
	KindProfile  = "profile"
)

// Key returns the logical key used to coalesce pending writes.
func (r *Record) Key() string {
	return PendingKey(r.OwnerID, r.ID)
}

// CompositeKey returns the (owner, entity) pair that should be unique for
// kinds that keep one record per entity.
func (r *Record) CompositeKey() string {
	return r.OwnerID + "/" + r.EntityID
}

// PendingKey builds the aggregator key for a record.
func PendingKey(ownerID, recordID string) string {
	return ownerID + "/" + recordID
}

// Touch marks the record as locally modified at now.
func (r *Record) Touch(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	r.NeedsSync = true
}

// MarkSynced clears the needs-sync flag and stamps SyncedAt.
// Both happen together so the record is never observed as synced
// without a SyncedAt value.
func (r *Record) MarkSynced(now time.Time) {
	t := now
	r.SyncedAt = &t
	r.NeedsSync = false
}

// IsSynced reports whether the record was ever confirmed by the remote.
func (r *Record) IsSynced() bool {
	return r.SyncedAt != nil
}

// Clone создает глубокую копию записи
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	clone := *r
	if r.SyncedAt != nil {
		t := *r.SyncedAt
		clone.SyncedAt = &t
	}
	clone.Fields = r.Fields.Clone()

	return &clone
}

// PendingWrite is the latest local write for one logical key.
// At most one exists per key; newer writes overwrite it in place.
type PendingWrite struct {
	At       time.Time
	Fields   Fields
	Key      string
	RecordID string
	Kind     string
}
