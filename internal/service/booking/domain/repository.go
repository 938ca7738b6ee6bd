// internal/service/booking/domain/repository.go
package domain

import "context"

// BookingRepository 定义了预订聚合的持久化接口。
// 它位于领域层，但由基础设施层实现。
type BookingRepository interface {
	// Save 保存一个预订聚合（用于创建或更新）。
	Save(ctx context.Context, booking *Booking) error

	// FindByID 根据 ID 查找一个预订聚合。
	FindByID(ctx context.Context, id uint64) (*Booking, error)

	FindAll(ctx context.Context) ([]*Booking, error)
}
