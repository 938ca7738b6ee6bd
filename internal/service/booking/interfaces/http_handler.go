// internal/service/booking/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"

	"evently/internal/service/booking/application"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
)

const serviceName = "booking-service"

// BookingHandler 封装了 booking 服务的 HTTP 处理器
type BookingHandler struct {
	service *application.BookingApplicationService
}

// NewBookingHandler 创建一个新的 HTTP 处理器实例
func NewBookingHandler(service *application.BookingApplicationService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *BookingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("GET /bookings/health", h.health)
	mux.HandleFunc("POST /bookings", h.createBooking)
	mux.HandleFunc("GET /bookings", h.listBookings)
	mux.HandleFunc("GET /bookings/{id}", h.getBooking)
	mux.HandleFunc("POST /bookings/{id}/cancel", h.cancelBooking)
	mux.HandleFunc("POST /bookings/{id}/confirm", h.confirmBooking)
}

func (h *BookingHandler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("Booking Service is running"))
}

func (h *BookingHandler) createBooking(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer(serviceName).Start(extract(r), "booking-service.CreateBooking")
	defer span.End()

	var req application.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.service.CreateBooking(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *BookingHandler) listBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListBookings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) getBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	booking, err := h.service.GetBooking(extract(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, span := otel.Tracer(serviceName).Start(extract(r), "booking-service.CancelBooking")
	defer span.End()

	cancelled, err := h.service.CancelBooking(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cancelled)
}

func (h *BookingHandler) confirmBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, span := otel.Tracer(serviceName).Start(extract(r), "booking-service.ConfirmBooking")
	defer span.End()

	confirmed, err := h.service.ConfirmBooking(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmed)
}
