// internal/service/event/infrastructure/memory_repository.go
package infrastructure

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"evently/internal/service/event/domain"
)

// MemoryEventRepository 是 EventRepository 和 SeatLedger 的内存实现，
// 用于本地开发和测试。一把互斥锁串行化全部变更，天然满足账本的
// per-event 串行化要求。
type MemoryEventRepository struct {
	mu     sync.Mutex
	nextID uint64
	events map[uint64]*domain.Event
}

func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		nextID: 1,
		events: make(map[uint64]*domain.Event),
	}
}

func (r *MemoryEventRepository) Create(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = r.nextID
	r.nextID++
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *MemoryEventRepository) FindByID(_ context.Context, id uint64) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	clone := *event
	return &clone, nil
}

func (r *MemoryEventRepository) FindAll(_ context.Context) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(func(*domain.Event) bool { return true }), nil
}

func (r *MemoryEventRepository) FindAvailable(_ context.Context, now time.Time) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(func(e *domain.Event) bool {
		return e.Status == domain.StatusPublished && e.StartDate.After(now) && e.AvailableSeats > 0
	}), nil
}

func (r *MemoryEventRepository) Search(_ context.Context, keyword string) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kw := strings.ToLower(keyword)
	return r.collect(func(e *domain.Event) bool {
		return strings.Contains(strings.ToLower(e.Name), kw) ||
			strings.Contains(strings.ToLower(e.Description), kw) ||
			strings.Contains(strings.ToLower(e.Location), kw)
	}), nil
}

func (r *MemoryEventRepository) FindByCategory(_ context.Context, category domain.Category) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(func(e *domain.Event) bool { return e.Category == category }), nil
}

func (r *MemoryEventRepository) Update(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.events[event.ID]
	if !ok {
		return domain.ErrEventNotFound
	}
	// 座位计数只归账本管，普通更新不覆盖
	seats := current.AvailableSeats
	clone := *event
	clone.AvailableSeats = seats
	r.events[event.ID] = &clone
	return nil
}

func (r *MemoryEventRepository) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *MemoryEventRepository) Reserve(_ context.Context, eventID uint64, numberOfSeats int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[eventID]
	if !ok {
		return false, domain.ErrEventNotFound
	}
	return event.ReserveSeats(numberOfSeats), nil
}

func (r *MemoryEventRepository) Release(_ context.Context, eventID uint64, numberOfSeats int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	event.ReleaseSeats(numberOfSeats)
	return nil
}

func (r *MemoryEventRepository) collect(match func(*domain.Event) bool) []*domain.Event {
	var events []*domain.Event
	for _, e := range r.events {
		if match(e) {
			clone := *e
			events = append(events, &clone)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events
}
