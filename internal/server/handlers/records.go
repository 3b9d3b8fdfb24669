package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iudanet/podsync/internal/models"
	"github.com/iudanet/podsync/internal/server/storage"
	"github.com/iudanet/podsync/pkg/api"
)

//go:generate moq -out publisher_mock.go . Publisher

// Publisher delivers change events to feed subscribers
type Publisher interface {
	Publish(ownerID string, ev api.ChangeEvent) api.ChangeEvent
}

// RecordsHandler serves the record collections of the authenticated owner
type RecordsHandler struct {
	logger   *slog.Logger
	storage  storage.RecordStorage
	events   Publisher
	policies models.Policies
	// partialEvents публикует события без записи: клиент догружает её сам
	partialEvents bool
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(logger *slog.Logger, s storage.RecordStorage, events Publisher, policies models.Policies, partialEvents bool) *RecordsHandler {
	return &RecordsHandler{
		logger:        logger,
		storage:       s,
		events:        events,
		policies:      policies,
		partialEvents: partialEvents,
	}
}

// List обрабатывает GET /api/v1/records/{kind}?since=RFC3339&entity_id=
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, kind, ok := h.scope(w, r)
	if !ok {
		return
	}

	var q storage.ListQuery
	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339Nano, since)
		if err != nil {
			h.logger.Warn("Invalid since parameter", "since", since, "error", err)
			writeError(w, h.logger, http.StatusBadRequest, "invalid_since", "since must be RFC 3339")
			return
		}
		q.Since = t
	}
	q.EntityID = r.URL.Query().Get("entity_id")

	records, err := h.storage.ListRecords(r.Context(), ownerID, kind, q)
	if err != nil {
		h.logger.Error("Failed to list records", "error", err, "owner_id", ownerID, "kind", kind)
		writeError(w, h.logger, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	resp := api.ListResponse{Records: make([]api.Record, 0, len(records))}
	for _, rec := range records {
		resp.Records = append(resp.Records, toDTO(rec))
	}

	h.logger.Debug("Records listed", "owner_id", ownerID, "kind", kind, "count", len(records))
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// Get обрабатывает GET /api/v1/records/{kind}/{id}
func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, kind, ok := h.scope(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	rec, err := h.storage.GetRecord(r.Context(), ownerID, kind, id)
	if errors.Is(err, storage.ErrRecordNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "not_found", "record not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to get record", "error", err, "record_id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toDTO(rec))
}

// Create обрабатывает POST /api/v1/records/{kind}.
// Повторный id отвечает 409 Conflict.
func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, kind, ok := h.scope(w, r)
	if !ok {
		return
	}

	rec, ok := h.decode(w, r, ownerID, kind, "")
	if !ok {
		return
	}

	err := h.storage.InsertRecord(r.Context(), rec)
	if errors.Is(err, storage.ErrRecordExists) {
		writeError(w, h.logger, http.StatusConflict, "conflict", "record already exists")
		return
	}
	if err != nil {
		h.logger.Error("Failed to insert record", "error", err, "record_id", rec.ID)
		writeError(w, h.logger, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	h.logger.Info("Record created", "owner_id", ownerID, "kind", kind, "record_id", rec.ID)
	h.publish(ownerID, models.EventInsert, rec)
	writeJSON(w, h.logger, http.StatusCreated, toDTO(rec))
}

// Update обрабатывает PUT /api/v1/records/{kind}/{id}.
// Отсутствующая запись создаётся (upsert), повтор запроса идемпотентен.
func (h *RecordsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, kind, ok := h.scope(w, r)
	if !ok {
		return
	}

	rec, ok := h.decode(w, r, ownerID, kind, mux.Vars(r)["id"])
	if !ok {
		return
	}

	created, err := h.storage.UpsertRecord(r.Context(), rec)
	if errors.Is(err, storage.ErrRecordExists) {
		writeError(w, h.logger, http.StatusConflict, "conflict", "record belongs to another owner")
		return
	}
	if err != nil {
		h.logger.Error("Failed to save record", "error", err, "record_id", rec.ID)
		writeError(w, h.logger, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	status, kindOfEvent := http.StatusOK, models.EventUpdate
	if created {
		status, kindOfEvent = http.StatusCreated, models.EventInsert
	}

	h.logger.Info("Record saved", "owner_id", ownerID, "kind", kind, "record_id", rec.ID, "created", created)
	h.publish(ownerID, kindOfEvent, rec)
	writeJSON(w, h.logger, status, toDTO(rec))
}

// Delete обрабатывает DELETE /api/v1/records/{kind}/{id}
func (h *RecordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, kind, ok := h.scope(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	err := h.storage.DeleteRecord(r.Context(), ownerID, kind, id)
	if errors.Is(err, storage.ErrRecordNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "not_found", "record not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete record", "error", err, "record_id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	h.logger.Info("Record deleted", "owner_id", ownerID, "kind", kind, "record_id", id)
	h.events.Publish(ownerID, api.ChangeEvent{
		Topic:     kind,
		Kind:      string(models.EventDelete),
		RecordID:  id,
		UpdatedAt: time.Now().UTC(),
	})
	w.WriteHeader(http.StatusNoContent)
}

// scope извлекает владельца и проверяет тип записи
func (h *RecordsHandler) scope(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	ownerID, ok := GetOwnerID(r.Context())
	if !ok {
		h.logger.Error("Owner ID not found in context")
		writeError(w, h.logger, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return "", "", false
	}

	kind := mux.Vars(r)["kind"]
	if _, err := h.policies.Get(kind); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "unknown_kind", err.Error())
		return "", "", false
	}

	return ownerID, kind, true
}

// decode читает запись из тела запроса. pathID пуст для POST.
func (h *RecordsHandler) decode(w http.ResponseWriter, r *http.Request, ownerID, kind, pathID string) (*models.Record, bool) {
	var dto api.Record
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "invalid_body", "invalid request body")
		return nil, false
	}

	if dto.ID == "" {
		dto.ID = pathID
	}
	if dto.Kind == "" {
		dto.Kind = kind
	}
	switch {
	case dto.ID == "":
		writeError(w, h.logger, http.StatusBadRequest, "invalid_body", "record id is required")
		return nil, false
	case pathID != "" && dto.ID != pathID:
		writeError(w, h.logger, http.StatusBadRequest, "invalid_body", "record id does not match path")
		return nil, false
	case dto.Kind != kind:
		writeError(w, h.logger, http.StatusBadRequest, "invalid_body", "record kind does not match path")
		return nil, false
	}

	rec := fromDTO(dto)
	// Владелец берётся только из токена
	rec.OwnerID = ownerID

	policy, _ := h.policies.Get(kind)
	rec.Fields = policy.Payload(rec.Fields)
	if err := policy.Check(rec.Fields); err != nil {
		writeError(w, h.logger, http.StatusUnprocessableEntity, "invalid_value", err.Error())
		return nil, false
	}

	now := time.Now().UTC()
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}

	return rec, true
}

func (h *RecordsHandler) publish(ownerID string, kind models.EventKind, rec *models.Record) {
	ev := api.ChangeEvent{
		Topic:     rec.Kind,
		Kind:      string(kind),
		RecordID:  rec.ID,
		UpdatedAt: rec.UpdatedAt,
	}
	if !h.partialEvents {
		dto := toDTO(rec)
		ev.Record = &dto
	}
	h.events.Publish(ownerID, ev)
}

func toDTO(r *models.Record) api.Record {
	return api.Record{
		ID:        r.ID,
		Kind:      r.Kind,
		OwnerID:   r.OwnerID,
		EntityID:  r.EntityID,
		Fields:    r.Fields,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func fromDTO(dto api.Record) *models.Record {
	fields := models.Fields{}
	for name, value := range dto.Fields {
		fields.Set(name, value)
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
