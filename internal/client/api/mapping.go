package api

import (
	"github.com/iudanet/podsync/internal/models"
	"github.com/iudanet/podsync/pkg/api"
)

// ToDTO переводит локальную запись в формат API.
// Локальные флаги (needs_sync, synced_at, deleted) на сервер не уходят.
func ToDTO(r *models.Record) api.Record {
	return api.Record{
		ID:        r.ID,
		Kind:      r.Kind,
		OwnerID:   r.OwnerID,
		EntityID:  r.EntityID,
		Fields:    r.Fields.Clone(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// FromDTO переводит запись API в локальную модель
func FromDTO(dto api.Record) *models.Record {
	fields := models.Fields{}
	for k, v := range dto.Fields {
		fields.Set(k, v)
	}
	return &models.Record{
		ID:        dto.ID,
		Kind:      dto.Kind,
		OwnerID:   dto.OwnerID,
		EntityID:  dto.EntityID,
		Fields:    fields,
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
	}
}

// EventFromDTO переводит событие ленты в локальную модель
func EventFromDTO(dto api.ChangeEvent) models.ChangeEvent {
	ev := models.ChangeEvent{
		ID:       dto.ID,
		Topic:    dto.Topic,
		Kind:     models.EventKind(dto.Kind),
		RecordID: dto.RecordID,
		OwnerID:  dto.OwnerID,
		At:       dto.UpdatedAt,
	}
	if dto.Record != nil {
		ev.Record = FromDTO(*dto.Record)
	}
	return ev
}
