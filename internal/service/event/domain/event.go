// internal/service/event/domain/event.go
package domain

import (
	"errors"
	"time"
)

var (
	// ErrEventNotFound 表示事件 id 在库中不存在。这是库存账本唯一的领域错误。
	ErrEventNotFound = errors.New("event not found")

	ErrInvalidCapacity   = errors.New("capacity must be at least 1")
	ErrInvalidTransition = errors.New("invalid event status transition")
)

// Category 事件分类
type Category string

const (
	CategorySport      Category = "SPORT"
	CategoryCulture    Category = "CULTURE"
	CategoryConference Category = "CONFERENCE"
	CategoryConcert    Category = "CONCERT"
	CategoryFestival   Category = "FESTIVAL"
	CategoryOther      Category = "OTHER"
)

// Event 是事件聚合的根实体。
// AvailableSeats 是整个平台唯一的共享可变计数器，所有变更只能通过
// ReserveSeats / ReleaseSeats 进行；持久层负责对同一事件的并发变更做串行化。
type Event struct {
	ID             uint64
	Name           string
	Description    string
	Category       Category
	Location       string
	StartDate      time.Time
	EndDate        time.Time
	Capacity       int // 创建后不可变
	AvailableSeats int
	BasePrice      float64
	Status         Status
	OrganizerID    uint64
	ImageURL       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewEvent 工厂函数。AvailableSeats 未指定时初始化为 Capacity。
func NewEvent(name, location string, category Category, capacity int, basePrice float64, organizerID uint64, start, end time.Time) (*Event, error) {
	if name == "" || location == "" {
		return nil, errors.New("cannot create event with empty required fields")
	}
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	now := time.Now()
	return &Event{
		Name:           name,
		Location:       location,
		Category:       category,
		Capacity:       capacity,
		AvailableSeats: capacity,
		BasePrice:      basePrice,
		OrganizerID:    organizerID,
		StartDate:      start,
		EndDate:        end,
		Status:         StatusDraft, // 初始状态
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// HasAvailableSeats 是否还有余票
func (e *Event) HasAvailableSeats() bool {
	return e.AvailableSeats > 0
}

// ReserveSeats 带守卫的扣减：余票不足时不做任何变更并返回 false。
func (e *Event) ReserveSeats(numberOfSeats int) bool {
	if numberOfSeats <= 0 {
		return false
	}
	if e.AvailableSeats >= numberOfSeats {
		e.AvailableSeats -= numberOfSeats
		e.UpdatedAt = time.Now()
		return true
	}
	return false
}

// ReleaseSeats 无守卫的归还。不校验这些座位是否真的被预占过，
// 因此误用时 AvailableSeats 可能超过 Capacity，由对账流程兜底。
func (e *Event) ReleaseSeats(numberOfSeats int) {
	if numberOfSeats <= 0 {
		return
	}
	e.AvailableSeats += numberOfSeats
	e.UpdatedAt = time.Now()
}

// Publish 上架事件。只有 DRAFT 可以发布，对座位数没有任何副作用。
func (e *Event) Publish() error {
	if e.Status != StatusDraft {
		return ErrInvalidTransition
	}
	e.Status = StatusPublished
	e.UpdatedAt = time.Now()
	return nil
}

// Cancel 取消事件。终态之后不可再变更。
func (e *Event) Cancel() error {
	if e.Status == StatusCancelled || e.Status == StatusCompleted {
		return ErrInvalidTransition
	}
	e.Status = StatusCancelled
	e.UpdatedAt = time.Now()
	return nil
}
