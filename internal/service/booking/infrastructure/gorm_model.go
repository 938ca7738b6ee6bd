// internal/service/booking/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"evently/internal/service/booking/domain"
)

// BookingModel 是 Booking 聚合的持久化模型
type BookingModel struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	BookingCode     string `gorm:"size:20;uniqueIndex"`
	EventID         uint64 `gorm:"index;not null"`
	UserID          uint64 `gorm:"index;not null"`
	NumberOfTickets int    `gorm:"not null"`
	TotalPrice      float64
	Status          string `gorm:"size:16;index"`
	UserEmail       string `gorm:"size:255"`
	EventName       string `gorm:"size:255"`
	EventDate       time.Time
	Notes           string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ConfirmedAt     *time.Time
	CancelledAt     *time.Time
}

func (BookingModel) TableName() string {
	return "bookings"
}

func toBookingModel(b *domain.Booking) *BookingModel {
	return &BookingModel{
		ID:              b.ID,
		BookingCode:     b.BookingCode,
		EventID:         b.EventID,
		UserID:          b.UserID,
		NumberOfTickets: b.NumberOfTickets,
		TotalPrice:      b.TotalPrice,
		Status:          string(b.Status),
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

func toDomainBooking(m *BookingModel) *domain.Booking {
	return &domain.Booking{
		ID:              m.ID,
		BookingCode:     m.BookingCode,
		EventID:         m.EventID,
		UserID:          m.UserID,
		NumberOfTickets: m.NumberOfTickets,
		TotalPrice:      m.TotalPrice,
		Status:          domain.Status(m.Status),
		UserEmail:       m.UserEmail,
		EventName:       m.EventName,
		EventDate:       m.EventDate,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		ConfirmedAt:     m.ConfirmedAt,
		CancelledAt:     m.CancelledAt,
	}
}

func toDomainBookings(models []BookingModel) []*domain.Booking {
	bookings := make([]*domain.Booking, 0, len(models))
	for i := range models {
		bookings = append(bookings, toDomainBooking(&models[i]))
	}
	return bookings
}
