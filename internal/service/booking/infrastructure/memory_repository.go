// internal/service/booking/infrastructure/memory_repository.go
package infrastructure

import (
	"context"
	"sort"
	"sync"

	"evently/internal/service/booking/domain"
)

// MemoryBookingRepository 是 BookingRepository 的内存实现，
// 用于本地运行和测试。所有方法都返回副本，避免调用方改写内部状态。
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	nextID   uint64
	bookings map[uint64]*domain.Booking
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		nextID:   1,
		bookings: make(map[uint64]*domain.Booking),
	}
}

func (r *MemoryBookingRepository) Save(_ context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if booking.ID == 0 {
		booking.ID = r.nextID
		r.nextID++
	}
	clone := *booking
	r.bookings[booking.ID] = &clone
	return nil
}

func (r *MemoryBookingRepository) FindByID(_ context.Context, id uint64) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	clone := *booking
	return &clone, nil
}

func (r *MemoryBookingRepository) FindAll(_ context.Context) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bookings := make([]*domain.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		clone := *b
		bookings = append(bookings, &clone)
	}
	// 与数据库实现保持一致: 最新的排在最前
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].ID > bookings[j].ID
		}
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	return bookings, nil
}

var _ domain.BookingRepository = (*MemoryBookingRepository)(nil)
