// internal/service/booking/domain/port/producer.go
package port

import (
	"context"
	"time"
)

// BookingEvent 是发布到消息总线上的预订生命周期事件。
type BookingEvent struct {
	Type            string    `json:"type"` // booking.created | booking.cancelled | booking.confirmed
	BookingID       uint64    `json:"bookingId"`
	BookingCode     string    `json:"bookingCode"`
	EventID         uint64    `json:"eventId"`
	UserID          uint64    `json:"userId"`
	UserEmail       string    `json:"userEmail"`
	EventName       string    `json:"eventName"`
	NumberOfTickets int       `json:"numberOfTickets"`
	OccurredAt      time.Time `json:"occurredAt"`
}

const (
	EventTypeBookingCreated   = "booking.created"
	EventTypeBookingConfirmed = "booking.confirmed"
	EventTypeBookingCancelled = "booking.cancelled"
)

// BookingEventProducer 是预订事件的出站端口。发布是尽力而为的：
// 失败由实现记录，不影响主流程。
type BookingEventProducer interface {
	Publish(ctx context.Context, event *BookingEvent) error
}
