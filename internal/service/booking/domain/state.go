// internal/service/booking/domain/state.go
package domain

// Status 定义了预订的生命周期状态
type Status string

const (
	StatusPending   Status = "PENDING"   // 座位已预占，等待确认
	StatusConfirmed Status = "CONFIRMED" // 已确认并支付
	StatusCancelled Status = "CANCELLED" // 已取消 (终态)
	StatusRefunded  Status = "REFUNDED"  // 已退款 (终态)
)
