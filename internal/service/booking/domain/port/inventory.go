// internal/service/booking/domain/port/inventory.go
package port

import (
	"context"
	"time"
)

// EventSummary 是库存客户端看到的远端事件视图。
type EventSummary struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	AvailableSeats int       `json:"availableSeats"`
	StartDate      time.Time `json:"startDate"`
}

// EventInventoryService 是访问座位账本的出站端口。
//
// 两个实现共享同一条契约: 永远不向调用方抛传输层错误。
// 账本不可达时返回安全的否定默认值 (GetEvent -> nil, ReserveSeats -> false,
// ReleaseSeats -> 空操作)，并由实现自行记录事故。调用方必须把 false/nil
// 当作权威的否定结果，而不是需要重试的错误。
type EventInventoryService interface {
	// GetEvent 查询事件概要。不存在或不可达时返回 nil。
	GetEvent(ctx context.Context, eventID uint64) *EventSummary

	// ReserveSeats 请求账本预占座位。false 同时覆盖 "余票不足" 和
	// "账本不可达" 两种情况，调用方刻意无法区分。
	ReserveSeats(ctx context.Context, eventID uint64, numberOfSeats int) bool

	// ReleaseSeats 尽力而为的补偿操作。失败只记录，不上抛。
	ReleaseSeats(ctx context.Context, eventID uint64, numberOfSeats int)
}
