package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"evently/internal/service/event/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger_ReserveRelease(t *testing.T) {
	repo := NewMemoryEventRepository()
	event := seedEvent(t, repo, 5)
	ctx := context.Background()

	reserved, err := repo.Reserve(ctx, event.ID, 2)
	require.NoError(t, err)
	assert.True(t, reserved)

	got, err := repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.AvailableSeats)

	require.NoError(t, repo.Release(ctx, event.ID, 2))
	got, err = repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.AvailableSeats)
}

func TestMemoryLedger_ReserveInsufficientSeats(t *testing.T) {
	repo := NewMemoryEventRepository()
	event := seedEvent(t, repo, 1)
	ctx := context.Background()

	reserved, err := repo.Reserve(ctx, event.ID, 2)
	require.NoError(t, err)
	assert.False(t, reserved)

	got, err := repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableSeats, "failed reserve must not mutate the counter")
}

func TestMemoryLedger_UnknownEvent(t *testing.T) {
	repo := NewMemoryEventRepository()
	ctx := context.Background()

	_, err := repo.Reserve(ctx, 404, 1)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
	assert.ErrorIs(t, repo.Release(ctx, 404, 1), domain.ErrEventNotFound)
}

// 并发预占属性: 100 个并发请求争抢 30 个座位，每个要 1 张，
// 成功数必须恰好耗尽供给，计数器永不为负。
func TestMemoryLedger_ConcurrentReserveNeverOversells(t *testing.T) {
	repo := NewMemoryEventRepository()
	event := seedEvent(t, repo, 30)
	ctx := context.Background()

	const callers = 100
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Reserve(ctx, event.ID, 1)
			require.NoError(t, err)
			if ok {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 30, succeeded)
	got, err := repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableSeats)
}

// 两个并发请求合计超过余票时，至多一个成功。
func TestMemoryLedger_ConcurrentPairAtMostOneSucceeds(t *testing.T) {
	for i := 0; i < 50; i++ {
		repo := NewMemoryEventRepository()
		event := seedEvent(t, repo, 3)
		ctx := context.Background()

		results := make(chan bool, 2)
		var wg sync.WaitGroup
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := repo.Reserve(ctx, event.ID, 2)
				require.NoError(t, err)
				results <- ok
			}()
		}
		wg.Wait()
		close(results)

		wins := 0
		for ok := range results {
			if ok {
				wins++
			}
		}
		assert.LessOrEqual(t, wins, 1)

		got, err := repo.FindByID(ctx, event.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.AvailableSeats, 0)
	}
}

func TestMemoryRepository_UpdateDoesNotTouchSeats(t *testing.T) {
	repo := NewMemoryEventRepository()
	event := seedEvent(t, repo, 10)
	ctx := context.Background()

	_, err := repo.Reserve(ctx, event.ID, 4)
	require.NoError(t, err)

	event.Name = "Renamed"
	event.AvailableSeats = 999 // 普通更新不得覆盖账本计数
	event.UpdatedAt = time.Now()
	require.NoError(t, repo.Update(ctx, event))

	got, err := repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 6, got.AvailableSeats)
}
