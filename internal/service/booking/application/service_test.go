package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"evently/internal/service/booking/domain"
	"evently/internal/service/booking/domain/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// fakeBookingRepo 是 BookingRepository 的内存实现。
type fakeBookingRepo struct {
	mu       sync.Mutex
	nextID   uint64
	bookings map[uint64]*domain.Booking
	saveErr  error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{nextID: 1, bookings: make(map[uint64]*domain.Booking)}
}

func (r *fakeBookingRepo) Save(_ context.Context, b *domain.Booking) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == 0 {
		b.ID = r.nextID
		r.nextID++
	}
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uint64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *fakeBookingRepo) FindAll(_ context.Context) ([]*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Booking
	for _, b := range r.bookings {
		clone := *b
		all = append(all, &clone)
	}
	return all, nil
}

// fakeInventory 记录每一次 reserve/release 调用。
// reserveResult=false 同时模拟 "余票不足" 和降级的 fallback 变体 ——
// 对调用方而言二者必须不可区分。
type fakeInventory struct {
	reserveResult bool
	summary       *port.EventSummary
	reserveCalls  []int
	releaseCalls  []int
}

func (f *fakeInventory) GetEvent(context.Context, uint64) *port.EventSummary { return f.summary }

func (f *fakeInventory) ReserveSeats(_ context.Context, _ uint64, n int) bool {
	f.reserveCalls = append(f.reserveCalls, n)
	return f.reserveResult
}

func (f *fakeInventory) ReleaseSeats(_ context.Context, _ uint64, n int) {
	f.releaseCalls = append(f.releaseCalls, n)
}

type fakeProducer struct {
	events []*port.BookingEvent
}

func (f *fakeProducer) Publish(_ context.Context, e *port.BookingEvent) error {
	f.events = append(f.events, e)
	return nil
}

func validRequest() *CreateBookingRequest {
	return &CreateBookingRequest{
		EventID:         1,
		UserID:          7,
		NumberOfTickets: 2,
		TotalPrice:      50.00,
		UserEmail:       "alice@example.com",
		EventName:       "Go Conference",
		EventDate:       time.Now().Add(72 * time.Hour),
	}
}

func setupService(reserveResult bool) (*BookingApplicationService, *fakeBookingRepo, *fakeInventory, *fakeProducer) {
	repo := newFakeBookingRepo()
	inventory := &fakeInventory{reserveResult: reserveResult}
	producer := &fakeProducer{}
	svc := NewBookingApplicationService(repo, inventory, producer, otel.Tracer("test"))
	return svc, repo, inventory, producer
}

func TestCreateBooking_Success(t *testing.T) {
	svc, repo, inventory, producer := setupService(true)

	resp, err := svc.CreateBooking(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, resp.Status)
	assert.Regexp(t, `^BK-\d{8}-\d{4}$`, resp.BookingCode)
	assert.Equal(t, []int{2}, inventory.reserveCalls)
	assert.Empty(t, inventory.releaseCalls)

	stored, err := repo.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)

	require.Len(t, producer.events, 1)
	assert.Equal(t, port.EventTypeBookingCreated, producer.events[0].Type)
}

func TestCreateBooking_ReservationDeclinedPersistsNothing(t *testing.T) {
	svc, repo, inventory, producer := setupService(false)

	_, err := svc.CreateBooking(context.Background(), validRequest())
	assert.ErrorIs(t, err, domain.ErrSeatsUnavailable)

	// 不变式: 没有成功预占就没有预订记录
	all, _ := repo.FindAll(context.Background())
	assert.Empty(t, all)
	assert.Equal(t, []int{2}, inventory.reserveCalls)
	assert.Empty(t, producer.events)
}

func TestCreateBooking_ValidationFailureSkipsReservation(t *testing.T) {
	svc, _, inventory, _ := setupService(true)

	req := validRequest()
	req.NumberOfTickets = 0
	req.UserEmail = "not-an-email"

	_, err := svc.CreateBooking(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "numberOfTickets")
	assert.Contains(t, verr.Fields, "userEmail")
	// 校验失败连远程调用都不应该发生
	assert.Empty(t, inventory.reserveCalls)
}

func TestCreateBooking_BackfillsEventSnapshotFromLedger(t *testing.T) {
	svc, _, inventory, _ := setupService(true)
	eventDate := time.Now().Add(48 * time.Hour)
	inventory.summary = &port.EventSummary{ID: 1, Name: "Go Conference", StartDate: eventDate}

	req := validRequest()
	req.EventName = ""
	req.EventDate = time.Time{}

	resp, err := svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Go Conference", resp.EventName)
	assert.True(t, resp.EventDate.Equal(eventDate))
}

func TestCreateBooking_SnapshotStaysEmptyWhenLedgerDown(t *testing.T) {
	svc, _, _, _ := setupService(true)

	req := validRequest()
	req.EventName = ""

	// GetEvent 返回 nil 时快照留空，创建不受影响
	resp, err := svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, resp.EventName)
}

func TestCreateBooking_PersistFailureTriggersCompensation(t *testing.T) {
	svc, repo, inventory, _ := setupService(true)
	repo.saveErr = errors.New("datastore down")

	_, err := svc.CreateBooking(context.Background(), validRequest())
	require.Error(t, err)

	// 落库失败必须把刚预占的座位还回去
	assert.Equal(t, []int{2}, inventory.reserveCalls)
	assert.Equal(t, []int{2}, inventory.releaseCalls)
}

func TestCancelBooking_ReleasesSeatsAndCancelsLocally(t *testing.T) {
	svc, _, inventory, producer := setupService(true)

	resp, err := svc.CreateBooking(context.Background(), validRequest())
	require.NoError(t, err)

	cancelled, err := svc.CancelBooking(context.Background(), resp.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, []int{2}, inventory.releaseCalls)

	require.Len(t, producer.events, 2)
	assert.Equal(t, port.EventTypeBookingCancelled, producer.events[1].Type)
}

// 非对称补偿: 即使账本降级 (release 是空操作)，本地取消也必须成功。
func TestCancelBooking_SucceedsWhenLedgerUnreachable(t *testing.T) {
	svc, repo, inventory, _ := setupService(true)

	resp, err := svc.CreateBooking(context.Background(), validRequest())
	require.NoError(t, err)

	// 模拟账本从此不可达: fallback 变体把 release 吞为空操作
	inventory.reserveResult = false

	cancelled, err := svc.CancelBooking(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	stored, err := repo.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}

func TestCancelBooking_AlreadyCancelledIsConflict(t *testing.T) {
	svc, _, inventory, _ := setupService(true)

	resp, err := svc.CreateBooking(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.CancelBooking(context.Background(), resp.ID)
	require.NoError(t, err)
	releasesAfterFirstCancel := len(inventory.releaseCalls)

	_, err = svc.CancelBooking(context.Background(), resp.ID)
	assert.ErrorIs(t, err, domain.ErrBookingNotCancellable)

	// 重复取消不得再触碰座位计数
	assert.Len(t, inventory.releaseCalls, releasesAfterFirstCancel)
}

func TestCancelBooking_UnknownIDIsNotFound(t *testing.T) {
	svc, _, _, _ := setupService(true)

	_, err := svc.CancelBooking(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestConfirmBooking_Flow(t *testing.T) {
	svc, _, _, producer := setupService(true)

	resp, err := svc.CreateBooking(context.Background(), validRequest())
	require.NoError(t, err)

	confirmed, err := svc.ConfirmBooking(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)

	// 已确认的预订仍然可以取消
	cancelled, err := svc.CancelBooking(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	_, err = svc.ConfirmBooking(context.Background(), resp.ID)
	assert.ErrorIs(t, err, domain.ErrBookingNotConfirmable)

	require.Len(t, producer.events, 3)
}
