// internal/service/booking/application/dto.go
package application

import (
	"strings"
	"time"

	"evently/internal/service/booking/domain"
)

// ValidationError 携带字段级的校验失败信息，接口层将其映射为 400。
type ValidationError struct {
	Fields map[string]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// CreateBookingRequest 是创建预订用例的输入数据
type CreateBookingRequest struct {
	EventID         uint64    `json:"eventId"`
	UserID          uint64    `json:"userId"`
	NumberOfTickets int       `json:"numberOfTickets"`
	TotalPrice      float64   `json:"totalPrice"`
	UserEmail       string    `json:"userEmail"`
	EventName       string    `json:"eventName"`
	EventDate       time.Time `json:"eventDate"`
	Notes           string    `json:"notes,omitempty"`
}

// Validate 做 web 层的输入校验，返回 字段 -> 错误信息 的映射。
func (r *CreateBookingRequest) Validate() *ValidationError {
	fields := make(map[string]string)
	if r.EventID == 0 {
		fields["eventId"] = "event id is required"
	}
	if r.UserID == 0 {
		fields["userId"] = "user id is required"
	}
	if r.NumberOfTickets < 1 {
		fields["numberOfTickets"] = "must book at least 1 ticket"
	}
	if r.TotalPrice <= 0 {
		fields["totalPrice"] = "total price must be positive"
	}
	if r.UserEmail == "" || !strings.Contains(r.UserEmail, "@") {
		fields["userEmail"] = "a valid email is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// BookingResponse 是预订用例的输出数据
type BookingResponse struct {
	ID              uint64        `json:"id"`
	BookingCode     string        `json:"bookingCode"`
	EventID         uint64        `json:"eventId"`
	UserID          uint64        `json:"userId"`
	NumberOfTickets int           `json:"numberOfTickets"`
	TotalPrice      float64       `json:"totalPrice"`
	Status          domain.Status `json:"status"`
	UserEmail       string        `json:"userEmail"`
	EventName       string        `json:"eventName"`
	EventDate       time.Time     `json:"eventDate"`
	Notes           string        `json:"notes,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	ConfirmedAt     *time.Time    `json:"confirmedAt,omitempty"`
	CancelledAt     *time.Time    `json:"cancelledAt,omitempty"`
}

func toResponse(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:              b.ID,
		BookingCode:     b.BookingCode,
		EventID:         b.EventID,
		UserID:          b.UserID,
		NumberOfTickets: b.NumberOfTickets,
		TotalPrice:      b.TotalPrice,
		Status:          b.Status,
		UserEmail:       b.UserEmail,
		EventName:       b.EventName,
		EventDate:       b.EventDate,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		ConfirmedAt:     b.ConfirmedAt,
		CancelledAt:     b.CancelledAt,
	}
}

func toResponseList(bookings []*domain.Booking) []*BookingResponse {
	responses := make([]*BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, toResponse(b))
	}
	return responses
}
