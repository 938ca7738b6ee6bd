// internal/service/notification/consumer.go
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"evently/internal/pkg/logger"
	"evently/internal/pkg/mq"
	"evently/internal/service/booking/domain/port"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Notification 是推送给用户的最终消息体。
type Notification struct {
	Type        string    `json:"type"`
	BookingCode string    `json:"bookingCode"`
	EventName   string    `json:"eventName"`
	Message     string    `json:"message"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Consumer 消费 booking-events topic，把预订生命周期事件
// 翻译成面向用户的通知，并通过 Hub 推送给在线用户。
type Consumer struct {
	reader *kafka.Reader
	hub    *Hub
	tracer trace.Tracer
}

func NewConsumer(reader *kafka.Reader, hub *Hub, tracer trace.Tracer) *Consumer {
	return &Consumer{reader: reader, hub: hub, tracer: tracer}
}

// Run 阻塞消费，直到 ctx 被取消。
func (c *Consumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Ctx(ctx).Error().Err(err).Msg("failed to read booking event")
			continue
		}
		c.handle(ctx, msg)
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	// 把消费端的 Span 挂到生产端的追踪链路上
	msgCtx := mq.ExtractTraceContext(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "notification-service.HandleBookingEvent")
	defer span.End()

	var event port.BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		span.RecordError(err)
		logger.Ctx(msgCtx).Error().Err(err).Msg("malformed booking event, dropping")
		return
	}
	span.SetAttributes(
		attribute.String("booking.event_type", event.Type),
		attribute.String("booking.code", event.BookingCode),
	)

	payload, err := json.Marshal(render(&event))
	if err != nil {
		span.RecordError(err)
		return
	}

	userID := strconv.FormatUint(event.UserID, 10)
	delivered := c.hub.SendToUser(userID, payload)
	logger.Ctx(msgCtx).Info().
		Str("user_id", userID).
		Str("event_type", event.Type).
		Bool("delivered", delivered).
		Msg("booking notification processed")
}

// render 把生命周期事件翻译成用户可读的通知。
func render(event *port.BookingEvent) *Notification {
	var message string
	switch event.Type {
	case port.EventTypeBookingCreated:
		message = fmt.Sprintf("Your booking %s for %s is awaiting confirmation.", event.BookingCode, event.EventName)
	case port.EventTypeBookingConfirmed:
		message = fmt.Sprintf("Your booking %s for %s is confirmed. See you there!", event.BookingCode, event.EventName)
	case port.EventTypeBookingCancelled:
		message = fmt.Sprintf("Your booking %s for %s has been cancelled.", event.BookingCode, event.EventName)
	default:
		message = fmt.Sprintf("Update on your booking %s for %s.", event.BookingCode, event.EventName)
	}
	return &Notification{
		Type:        event.Type,
		BookingCode: event.BookingCode,
		EventName:   event.EventName,
		Message:     message,
		OccurredAt:  event.OccurredAt,
	}
}
