// internal/service/booking/interfaces/http_helpers.go
package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"evently/internal/pkg/logger"
	"evently/internal/service/booking/application"
	"evently/internal/service/booking/domain"

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
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError 把领域错误映射为 HTTP 状态码。
// 校验失败返回按字段组织的错误明细，方便前端逐项提示。
func writeError(w http.ResponseWriter, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, verr)
	case errors.Is(err, domain.ErrBookingNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrSeatsUnavailable),
		errors.Is(err, domain.ErrBookingNotCancellable),
		errors.Is(err, domain.ErrBookingNotConfirmable):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
