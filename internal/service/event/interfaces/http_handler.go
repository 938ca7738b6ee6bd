// internal/service/event/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"evently/internal/service/event/application"
	"evently/internal/service/event/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
)

const serviceName = "event-service"

// EventHandler 封装了 event 服务的 HTTP 处理器
type EventHandler struct {
	service *application.EventApplicationService
}

// NewEventHandler 创建一个新的 HTTP 处理器实例
func NewEventHandler(service *application.EventApplicationService) *EventHandler {
	return &EventHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *EventHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("GET /events/health", h.health)
	mux.HandleFunc("POST /events", h.createEvent)
	mux.HandleFunc("GET /events", h.getAllEvents)
	mux.HandleFunc("GET /events/available", h.getAvailableEvents)
	mux.HandleFunc("GET /events/search", h.searchEvents)
	mux.HandleFunc("GET /events/category/{category}", h.getEventsByCategory)
	mux.HandleFunc("GET /events/{id}", h.getEventByID)
	mux.HandleFunc("PUT /events/{id}", h.updateEvent)
	mux.HandleFunc("DELETE /events/{id}", h.deleteEvent)
	mux.HandleFunc("POST /events/{id}/publish", h.publishEvent)
	mux.HandleFunc("POST /events/{id}/cancel", h.cancelEvent)

	// 座位账本契约，Booking Service 的库存客户端消费这两个端点
	mux.HandleFunc("POST /events/{id}/reserve", h.reserveSeats)
	mux.HandleFunc("POST /events/{id}/release", h.releaseSeats)
}

func (h *EventHandler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("Event Service is running"))
}

func (h *EventHandler) createEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer(serviceName).Start(extract(r), "event-service.CreateEvent")
	defer span.End()

	var dto application.EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.service.CreateEvent(ctx, &dto)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *EventHandler) getAllEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.GetAllEvents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) getEventByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	event, err := h.service.GetEventByID(extract(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) getAvailableEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.GetAvailableEvents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) searchEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.SearchEvents(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) getEventsByCategory(w http.ResponseWriter, r *http.Request) {
	category := domain.Category(r.PathValue("category"))
	events, err := h.service.GetEventsByCategory(r.Context(), category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) updateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var dto application.EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	updated, err := h.service.UpdateEvent(extract(r), id, &dto)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *EventHandler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteEvent(extract(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) publishEvent(w http.ResponseWriter, r *http.Request) {
	h.statusTransition(w, r, h.service.PublishEvent)
}

func (h *EventHandler) cancelEvent(w http.ResponseWriter, r *http.Request) {
	h.statusTransition(w, r, h.service.CancelEvent)
}

func (h *EventHandler) statusTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uint64) (*application.EventDTO, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	updated, err := fn(extract(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *EventHandler) reserveSeats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	seats, ok := seatCount(w, r)
	if !ok {
		return
	}
	ctx, span := otel.Tracer(serviceName).Start(extract(r), "event-service.ReserveSeats")
	defer span.End()

	reserved, err := h.service.ReserveSeats(ctx, id, seats)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reserved)
}

func (h *EventHandler) releaseSeats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	seats, ok := seatCount(w, r)
	if !ok {
		return
	}
	ctx, span := otel.Tracer(serviceName).Start(extract(r), "event-service.ReleaseSeats")
	defer span.End()

	if err := h.service.ReleaseSeats(ctx, id, seats); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
