// internal/service/booking/infrastructure/adapter/inventory_breaker.go
package adapter

import (
	"context"
	"sync"
	"time"

	"evently/internal/pkg/logger"
	"evently/internal/service/booking/domain/port"
)

// CircuitState 是断路器的三个状态。
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// BreakerConfig 控制断路器的触发和恢复节奏。
type BreakerConfig struct {
	// FailureThreshold 是连续失败多少次后熔断
	FailureThreshold int
	// OpenInterval 是熔断后多久放行探测请求
	OpenInterval time.Duration
	// HalfOpenMaxProbes 是半开期内最多放行的探测数
	HalfOpenMaxProbes int
}

// InventoryBreaker 把原始传输层包装成 port.EventInventoryService。
//
// 这是 never-throw 契约的落地点: 传输层错误在这里被计数并吞掉，
// 返回安全的否定默认值。熔断打开后直接走默认值，不再触碰下游，
// OpenInterval 之后进入半开态放行有限探测，探测成功即闭合。
type InventoryBreaker struct {
	transport InventoryTransport
	config    BreakerConfig

	mu             sync.Mutex
	state          CircuitState
	failures       int
	openedAt       time.Time
	halfOpenProbes int

	// now 可注入，测试用
	now func() time.Time
}

func NewInventoryBreaker(transport InventoryTransport, config BreakerConfig) *InventoryBreaker {
	if config.FailureThreshold < 1 {
		config.FailureThreshold = 5
	}
	if config.OpenInterval <= 0 {
		config.OpenInterval = 30 * time.Second
	}
	if config.HalfOpenMaxProbes < 1 {
		config.HalfOpenMaxProbes = 1
	}
	return &InventoryBreaker{
		transport: transport,
		config:    config,
		state:     StateClosed,
		now:       time.Now,
	}
}

// State 返回当前状态，只读。
func (b *InventoryBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// allow 判定本次调用是否放行给传输层。
func (b *InventoryBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.config.OpenInterval {
			return false
		}
		b.transition(StateHalfOpen)
		b.halfOpenProbes = 1
		return true
	default: // StateHalfOpen
		if b.halfOpenProbes >= b.config.HalfOpenMaxProbes {
			return false
		}
		b.halfOpenProbes++
		return true
	}
}

func (b *InventoryBreaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	if b.state != StateClosed {
		b.transition(StateClosed)
	}
}

func (b *InventoryBreaker) onFailure(ctx context.Context, operation string) {
	inventoryCallFailures.WithLabelValues(operation).Inc()

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		// 探测失败，重新计时
		b.openedAt = b.now()
		b.transition(StateOpen)
	case StateClosed:
		b.failures++
		if b.failures >= b.config.FailureThreshold {
			b.openedAt = b.now()
			b.transition(StateOpen)
			logger.Ctx(ctx).Warn().
				Int("failures", b.failures).
				Dur("open_interval", b.config.OpenInterval).
				Msg("inventory circuit breaker opened")
		}
	}
}

// transition 必须在持有 b.mu 时调用。
func (b *InventoryBreaker) transition(to CircuitState) {
	breakerTransitions.WithLabelValues(b.state.String(), to.String()).Inc()
	b.state = to
}

func (b *InventoryBreaker) GetEvent(ctx context.Context, eventID uint64) *port.EventSummary {
	if !b.allow() {
		logger.Ctx(ctx).Warn().Uint64("event_id", eventID).Msg("inventory breaker open, returning nil event")
		return nil
	}
	summary, err := b.transport.GetEvent(ctx, eventID)
	if err != nil {
		b.onFailure(ctx, "get_event")
		logger.Ctx(ctx).Error().Err(err).Uint64("event_id", eventID).Msg("inventory get event failed")
		return nil
	}
	b.onSuccess()
	return summary
}

func (b *InventoryBreaker) ReserveSeats(ctx context.Context, eventID uint64, numberOfSeats int) bool {
	if !b.allow() {
		// 拿不到账本的确认就不能卖票
		logger.Ctx(ctx).Warn().Uint64("event_id", eventID).Msg("inventory breaker open, declining reservation")
		return false
	}
	reserved, err := b.transport.ReserveSeats(ctx, eventID, numberOfSeats)
	if err != nil {
		b.onFailure(ctx, "reserve_seats")
		logger.Ctx(ctx).Error().Err(err).Uint64("event_id", eventID).Int("seats", numberOfSeats).Msg("inventory reserve failed")
		return false
	}
	b.onSuccess()
	return reserved
}

func (b *InventoryBreaker) ReleaseSeats(ctx context.Context, eventID uint64, numberOfSeats int) {
	if !b.allow() {
		logger.Ctx(ctx).Warn().Uint64("event_id", eventID).Int("seats", numberOfSeats).Msg("inventory breaker open, seat release dropped")
		return
	}
	if err := b.transport.ReleaseSeats(ctx, eventID, numberOfSeats); err != nil {
		b.onFailure(ctx, "release_seats")
		// 释放是尽力而为的补偿，失败只留痕
		logger.Ctx(ctx).Error().Err(err).Uint64("event_id", eventID).Int("seats", numberOfSeats).Msg("inventory release failed, seats may leak")
		return
	}
	b.onSuccess()
}

var _ port.EventInventoryService = (*InventoryBreaker)(nil)
