package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapan/eventbus/internal/domain/event"
	"github.com/zapan/eventbus/internal/infrastructure/rabbitmq"
	"github.com/zapan/eventbus/internal/registry"
	"github.com/zapan/eventbus/internal/usecase"
)

type Handlers struct {
	publishUC *usecase.PublishEvent
	registry  *registry.Registry
}

func NewHandlers(publishUC *usecase.PublishEvent, reg *registry.Registry) *Handlers {
	return &Handlers{
		publishUC: publishUC,
		registry:  reg,
	}
}

func (h *Handlers) PublishEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoutingKey string         `json:"routing_key"`
		Payload    map[string]any `json:"payload"`
		Expiration *int64         `json:"expiration,omitempty"`
		Headers    map[string]any `json:"headers,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	params := usecase.PublishEventParams{
		RoutingKey: req.RoutingKey,
		Payload:    req.Payload,
		Expiration: req.Expiration,
		Headers:    req.Headers,
	}

	messageID, err := h.publishUC.Execute(r.Context(), params)
	if err != nil {
		writePublishError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"status":      "published",
		"message_id":  messageID,
		"routing_key": req.RoutingKey,
	})
}

func (h *Handlers) GetRegistry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.registry.Table())
}

func (h *Handlers) GetRegistryKey(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		http.Error(w, "missing routing key", http.StatusBadRequest)
		return
	}

	ev, err := h.registry.Get(key)
	if err != nil {
		var unknown *registry.UnknownRoutingKeyError
		if errors.As(err, &unknown) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"routing_key": key,
		"event_type":  event.TypeID(ev),
	})
}

func (h *Handlers) RegenerateRegistry(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Regenerate(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "regenerated",
		"size":   len(h.registry.Table()),
	})
}

func writePublishError(w http.ResponseWriter, err error) {
	var (
		unknownKey *registry.UnknownRoutingKeyError
		exhausted  *rabbitmq.ConnectionExhaustedError
		empty      *rabbitmq.EmptyMessageError
	)

	switch {
	case errors.As(err, &unknownKey):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, rabbitmq.ErrInvalidExpiration):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &empty):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &exhausted):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
