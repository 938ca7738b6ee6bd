// internal/service/event/interfaces/http_helpers.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"evently/internal/pkg/logger"
	"evently/internal/service/event/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// extract 从入站请求头恢复追踪上下文。
func extract(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

// pathID 解析 {id} 路径参数，非法时写出 400 并返回 false。
func pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// seatCount 解析 numberOfSeats 查询参数，必须为正整数。
func seatCount(w http.ResponseWriter, r *http.Request) (int, bool) {
	seats, err := strconv.Atoi(r.URL.Query().Get("numberOfSeats"))
	if err != nil || seats < 1 {
		http.Error(w, "numberOfSeats must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return seats, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError 把领域错误映射为 HTTP 状态码。
func writeError(w http.ResponseWriter, err error) {
	switch {
	case err == domain.ErrEventNotFound:
		http.Error(w, err.Error(), http.StatusNotFound)
	case err == domain.ErrInvalidTransition:
		http.Error(w, err.Error(), http.StatusConflict)
	case err == domain.ErrInvalidCapacity:
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
