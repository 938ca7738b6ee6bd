// internal/service/event/domain/status.go
package domain

// Status 定义了事件的生命周期状态
type Status string

const (
	StatusDraft     Status = "DRAFT"     // 未发布，对外不可见
	StatusPublished Status = "PUBLISHED" // 已发布，可以售票
	StatusCancelled Status = "CANCELLED" // 已取消
	StatusCompleted Status = "COMPLETED" // 已结束
)
