// internal/service/event/infrastructure/ledger_redis_adapter.go
package infrastructure

import (
	"context"
	"fmt"

	"evently/internal/pkg/redis"
	"evently/internal/service/event/domain"

	"github.com/pkg/errors"
)

const reserveScriptName = "reserve_seats"

// RedisSeatLedger 是 SeatLedger 的 Redis 实现，用于热点事件的开票场景。
// check-and-decrement 由一段 Lua 脚本在 Redis 单线程内原子执行。
// 计数器在第一次访问时从仓储懒加载 (SETNX，并发加载也只有一个生效)。
type RedisSeatLedger struct {
	redisClient *redis.Client
	repo        domain.EventRepository
}

// NewRedisSeatLedger 创建一个新的 Redis 账本适配器。
// 它在创建时会加载所有需要的 Lua 脚本。
func NewRedisSeatLedger(redisClient *redis.Client, repo domain.EventRepository) (*RedisSeatLedger, error) {
	if err := redisClient.LoadScriptFromContent(reserveScriptName, reserveSeatsScript); err != nil {
		return nil, fmt.Errorf("failed to load reserve script: %w", err)
	}
	return &RedisSeatLedger{redisClient: redisClient, repo: repo}, nil
}

func seatKey(eventID uint64) string {
	return fmt.Sprintf("event:seats:{%d}", eventID)
}

// Reserve 原子地检查并扣减余票。
func (l *RedisSeatLedger) Reserve(ctx context.Context, eventID uint64, numberOfSeats int) (bool, error) {
	if numberOfSeats <= 0 {
		return false, nil
	}
	for attempt := 0; attempt < 2; attempt++ {
		result, err := l.redisClient.RunScript(ctx, reserveScriptName, []string{seatKey(eventID)}, numberOfSeats)
		if err != nil {
			return false, errors.Wrap(err, "run reserve script")
		}
		code, ok := result.(int64)
		if !ok {
			return false, fmt.Errorf("unexpected result type from Lua script: %T", result)
		}
		switch code {
		case 1:
			return true, nil
		case 0:
			return false, nil
		case -1:
			// 计数器尚未加载，从仓储回源后重试一次
			if err := l.warm(ctx, eventID); err != nil {
				return false, err
			}
		default:
			return false, fmt.Errorf("unknown result code from reserve script: %d", code)
		}
	}
	return false, fmt.Errorf("reserve counter for event %d could not be warmed", eventID)
}

// Release 无条件归还座位。
func (l *RedisSeatLedger) Release(ctx context.Context, eventID uint64, numberOfSeats int) error {
	if numberOfSeats <= 0 {
		return nil
	}
	// 计数器没加载时先回源，保证 INCRBY 作用在真实余票上
	exists, err := l.redisClient.GetClient().Exists(ctx, seatKey(eventID)).Result()
	if err != nil {
		return errors.Wrap(err, "check seat counter")
	}
	if exists == 0 {
		if err := l.warm(ctx, eventID); err != nil {
			return err
		}
	}
	if err := l.redisClient.GetClient().IncrBy(ctx, seatKey(eventID), int64(numberOfSeats)).Err(); err != nil {
		return errors.Wrap(err, "release seats")
	}
	return nil
}

// warm 从仓储加载当前余票。事件不存在时透传 ErrEventNotFound。
func (l *RedisSeatLedger) warm(ctx context.Context, eventID uint64) error {
	event, err := l.repo.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	// SETNX: 并发回源时只有第一个写入生效
	if err := l.redisClient.GetClient().SetNX(ctx, seatKey(eventID), event.AvailableSeats, 0).Err(); err != nil {
		return errors.Wrap(err, "warm seat counter")
	}
	return nil
}

var reserveSeatsScript = `
-- KEYS[1]: 事件余票计数器, 例如: event:seats:{42}
-- ARGV[1]: 本次要预占的座位数

local seats = redis.call('get', KEYS[1])
if not seats then
    return -1 -- 计数器未加载
end

seats = tonumber(seats)
local wanted = tonumber(ARGV[1])

if seats >= wanted then
    redis.call('decrby', KEYS[1], wanted)
    return 1 -- 预占成功
else
    return 0 -- 余票不足
end
`
