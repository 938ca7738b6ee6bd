// internal/service/event/domain/repository.go
package domain

import (
	"context"
	"time"
)

// EventRepository 定义了事件聚合的持久化接口。
// 它位于领域层，但由基础设施层实现。
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	FindByID(ctx context.Context, id uint64) (*Event, error)
	FindAll(ctx context.Context) ([]*Event, error)

	// FindAvailable 返回已发布、尚未开始且仍有余票的事件。
	FindAvailable(ctx context.Context, now time.Time) ([]*Event, error)
	Search(ctx context.Context, keyword string) ([]*Event, error)
	FindByCategory(ctx context.Context, category Category) ([]*Event, error)

	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id uint64) error
}

// SeatLedger 是座位计数的唯一权威。
// 实现必须保证对同一 eventID 的并发 Reserve 按存储层串行化执行：
// 当剩余座位不足以同时满足两个请求时，至多一个能成功。
// 调用方不会跨网络持有任何锁。
type SeatLedger interface {
	// Reserve 原子地检查并扣减余票。余票不足返回 false 且不产生任何变更。
	Reserve(ctx context.Context, eventID uint64, numberOfSeats int) (bool, error)

	// Release 无条件归还座位。事件不存在时返回 ErrEventNotFound。
	Release(ctx context.Context, eventID uint64, numberOfSeats int) error
}
