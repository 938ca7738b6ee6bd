// internal/service/booking/domain/booking.go
package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrBookingNotFound = errors.New("booking not found")

	// ErrBookingNotCancellable: 预订已处于终态，不能再取消。
	ErrBookingNotCancellable = errors.New("booking cannot be cancelled")

	// ErrBookingNotConfirmable: 只有 PENDING 的预订可以确认。
	ErrBookingNotConfirmable = errors.New("booking cannot be confirmed")

	// ErrSeatsUnavailable: 远端账本拒绝了预占。余票不足和账本不可达
	// 在这一层刻意不可区分，两者同样阻止预订创建。
	ErrSeatsUnavailable = errors.New("unable to reserve seats on event service")
)

// Booking 是预订聚合的根实体。
// EventID/UserID 是跨服务的值引用，没有外键；事件名称、日期和用户邮箱
// 做了反规范化冗余，展示时不需要再发起远程调用。
type Booking struct {
	ID              uint64
	BookingCode     string
	EventID         uint64
	UserID          uint64
	NumberOfTickets int
	TotalPrice      float64
	Status          Status
	UserEmail       string
	EventName       string
	EventDate       time.Time
	Notes           string

	// 各时间戳只设置一次，且单调递增
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
	CancelledAt *time.Time
}

// NewBooking 工厂函数。只应在远端座位预占成功之后调用 ——
// 调用方负责保证 "没有成功预占就没有预订记录" 这条不变式。
func NewBooking(eventID, userID uint64, tickets int, totalPrice float64, userEmail, eventName string, eventDate time.Time, notes string) (*Booking, error) {
	if eventID == 0 || userID == 0 {
		return nil, errors.New("cannot create booking with empty required fields")
	}
	if tickets < 1 {
		return nil, errors.New("number of tickets must be at least 1")
	}
	if totalPrice <= 0 {
		return nil, errors.New("total price must be positive")
	}
	now := time.Now()
	return &Booking{
		BookingCode:     GenerateBookingCode(now),
		EventID:         eventID,
		UserID:          userID,
		NumberOfTickets: tickets,
		TotalPrice:      totalPrice,
		Status:          StatusPending, // 初始状态
		UserEmail:       userEmail,
		EventName:       eventName,
		EventDate:       eventDate,
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// GenerateBookingCode 生成用户侧的预订编码，格式 BK-YYYYMMDD-XXXX。
// 按原平台的约定不做冲突检测，4 位随机数的碰撞概率在可接受范围内。
func GenerateBookingCode(now time.Time) string {
	return fmt.Sprintf("BK-%s-%04d", now.Format("20060102"), rand.Intn(10000))
}

// Confirm PENDING -> CONFIRMED
func (b *Booking) Confirm() error {
	if b.Status != StatusPending {
		return ErrBookingNotConfirmable
	}
	now := time.Now()
	b.Status = StatusConfirmed
	b.ConfirmedAt = &now
	b.UpdatedAt = now
	return nil
}

// Cancel PENDING/CONFIRMED -> CANCELLED。终态之后不可再变更。
func (b *Booking) Cancel() error {
	if !b.CanBeCancelled() {
		return ErrBookingNotCancellable
	}
	now := time.Now()
	b.Status = StatusCancelled
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}

// CanBeCancelled 只有 PENDING 和 CONFIRMED 的预订可以取消。
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}
