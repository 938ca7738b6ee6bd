// internal/service/booking/application/service.go
package application

import (
	"context"

	"evently/internal/pkg/logger"
	"evently/internal/service/booking/domain"
	"evently/internal/service/booking/domain/port"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BookingApplicationService 编排预订的生命周期。
//
// 跨服务一致性走显式的两步协议而不是分布式事务:
//  1. Create: 先远程预占座位，成功后才在本地持久化 PENDING 预订。
//     预占失败 (余票不足或账本不可达) 直接拒绝创建。
//  2. Cancel: 无论远程归还是否成功，本地取消总是生效，座位校正是
//     尽力而为的补偿，失败留给离线对账。
//
// 这种不对称是有意的: 宁可少卖，不可超卖。
type BookingApplicationService struct {
	repo      domain.BookingRepository
	inventory port.EventInventoryService
	producer  port.BookingEventProducer
	tracer    trace.Tracer
}

func NewBookingApplicationService(repo domain.BookingRepository, inventory port.EventInventoryService, producer port.BookingEventProducer, tracer trace.Tracer) *BookingApplicationService {
	return &BookingApplicationService{repo: repo, inventory: inventory, producer: producer, tracer: tracer}
}

// CreateBooking 创建预订。座位预占成功之前绝不落库。
func (s *BookingApplicationService) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*BookingResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateBooking")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("event.id", int64(req.EventID)),
		attribute.Int("tickets", req.NumberOfTickets),
	)

	if verr := req.Validate(); verr != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, verr
	}

	// 请求没带事件快照时从账本补齐反规范化字段。尽力而为:
	// 账本不可达 (GetEvent -> nil) 不阻塞创建，快照留空。
	if req.EventName == "" || req.EventDate.IsZero() {
		if summary := s.inventory.GetEvent(ctx, req.EventID); summary != nil {
			if req.EventName == "" {
				req.EventName = summary.Name
			}
			if req.EventDate.IsZero() {
				req.EventDate = summary.StartDate
			}
		}
	}

	// 1. 远程预占座位。false 统一代表 "余票不足" 或 "账本不可达"，
	// 两种情况都必须阻止预订创建。
	if !s.inventory.ReserveSeats(ctx, req.EventID, req.NumberOfTickets) {
		span.AddEvent("Seat reservation declined by ledger")
		logger.Ctx(ctx).Warn().Uint64("event_id", req.EventID).Int("tickets", req.NumberOfTickets).Msg("seat reservation declined, booking rejected")
		return nil, domain.ErrSeatsUnavailable
	}

	// 2. 预占成功，本地事务内持久化 PENDING 预订
	booking, err := domain.NewBooking(req.EventID, req.UserID, req.NumberOfTickets, req.TotalPrice, req.UserEmail, req.EventName, req.EventDate, req.Notes)
	if err != nil {
		// 入参在 Validate 之后仍非法属于编程错误；把刚预占的座位还回去
		s.inventory.ReleaseSeats(ctx, req.EventID, req.NumberOfTickets)
		span.RecordError(err)
		return nil, err
	}

	if err := s.repo.Save(ctx, booking); err != nil {
		// 持久化失败触发补偿，避免座位被永久占用
		s.inventory.ReleaseSeats(ctx, req.EventID, req.NumberOfTickets)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist booking")
		return nil, err
	}

	s.publish(ctx, port.EventTypeBookingCreated, booking)
	logger.Ctx(ctx).Info().Uint64("booking_id", booking.ID).Str("code", booking.BookingCode).Msg("booking created")
	span.AddEvent("Booking persisted in PENDING state.")
	return toResponse(booking), nil
}

// CancelBooking 取消预订。远程归还座位是尽力而为的:
// 无论 ReleaseSeats 结果如何，本地取消都会生效。
func (s *BookingApplicationService) CancelBooking(ctx context.Context, id uint64) (*BookingResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.CancelBooking")
	defer span.End()

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.CanBeCancelled() {
		span.AddEvent("Booking already in terminal state")
		return nil, domain.ErrBookingNotCancellable
	}

	// 先补偿座位，再落地取消。归还失败不会阻断取消 —— 适配器内部
	// 已经把失败吞掉并记录，留给离线对账修正座位数。
	s.inventory.ReleaseSeats(ctx, booking.EventID, booking.NumberOfTickets)

	if err := booking.Cancel(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, booking); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist cancellation")
		return nil, err
	}

	s.publish(ctx, port.EventTypeBookingCancelled, booking)
	logger.Ctx(ctx).Info().Uint64("booking_id", booking.ID).Msg("booking cancelled")
	return toResponse(booking), nil
}

// ConfirmBooking PENDING -> CONFIRMED。没有座位副作用。
func (s *BookingApplicationService) ConfirmBooking(ctx context.Context, id uint64) (*BookingResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.ConfirmBooking")
	defer span.End()

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := booking.Confirm(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, booking); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.publish(ctx, port.EventTypeBookingConfirmed, booking)
	return toResponse(booking), nil
}

// GetBooking 纯查询，无状态变更。
func (s *BookingApplicationService) GetBooking(ctx context.Context, id uint64) (*BookingResponse, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(booking), nil
}

func (s *BookingApplicationService) ListBookings(ctx context.Context) ([]*BookingResponse, error) {
	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toResponseList(bookings), nil
}

// publish 发布生命周期事件，失败只记录不影响主流程。
func (s *BookingApplicationService) publish(ctx context.Context, eventType string, b *domain.Booking) {
	if s.producer == nil {
		return
	}
	event := &port.BookingEvent{
		Type:            eventType,
		BookingID:       b.ID,
		BookingCode:     b.BookingCode,
		EventID:         b.EventID,
		UserID:          b.UserID,
		UserEmail:       b.UserEmail,
		EventName:       b.EventName,
		NumberOfTickets: b.NumberOfTickets,
		OccurredAt:      b.UpdatedAt,
	}
	if err := s.producer.Publish(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("type", eventType).Uint64("booking_id", b.ID).Msg("failed to publish booking event")
	}
}
