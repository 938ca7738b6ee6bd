// internal/service/event/application/service.go
package application

import (
	"context"
	"time"

	"evently/internal/pkg/logger"
	"evently/internal/service/event/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EventApplicationService 编排事件的增删改查与座位账本操作。
// 座位的 Reserve/Release 全部委托给 SeatLedger —— 应用层不自己做并发控制。
type EventApplicationService struct {
	repo   domain.EventRepository
	ledger domain.SeatLedger
	tracer trace.Tracer
}

func NewEventApplicationService(repo domain.EventRepository, ledger domain.SeatLedger, tracer trace.Tracer) *EventApplicationService {
	return &EventApplicationService{repo: repo, ledger: ledger, tracer: tracer}
}

// CreateEvent 创建一个新事件，初始状态为 DRAFT。
func (s *EventApplicationService) CreateEvent(ctx context.Context, dto *EventDTO) (*EventDTO, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateEvent")
	defer span.End()

	event, err := domain.NewEvent(dto.Name, dto.Location, dto.Category, dto.Capacity, dto.BasePrice, dto.OrganizerID, dto.StartDate, dto.EndDate)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	event.Description = dto.Description
	event.ImageURL = dto.ImageURL
	if dto.AvailableSeats > 0 && dto.AvailableSeats <= dto.Capacity {
		event.AvailableSeats = dto.AvailableSeats
	}

	if err := s.repo.Create(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist event")
		return nil, err
	}
	logger.Ctx(ctx).Info().Uint64("event_id", event.ID).Str("name", event.Name).Msg("event created")
	return ToDTO(event), nil
}

func (s *EventApplicationService) GetAllEvents(ctx context.Context) ([]*EventDTO, error) {
	events, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toDTOList(events), nil
}

func (s *EventApplicationService) GetEventByID(ctx context.Context, id uint64) (*EventDTO, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToDTO(event), nil
}

// GetAvailableEvents 已发布、未开始且仍有余票的事件列表。
func (s *EventApplicationService) GetAvailableEvents(ctx context.Context) ([]*EventDTO, error) {
	events, err := s.repo.FindAvailable(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return toDTOList(events), nil
}

func (s *EventApplicationService) SearchEvents(ctx context.Context, keyword string) ([]*EventDTO, error) {
	events, err := s.repo.Search(ctx, keyword)
	if err != nil {
		return nil, err
	}
	return toDTOList(events), nil
}

func (s *EventApplicationService) GetEventsByCategory(ctx context.Context, category domain.Category) ([]*EventDTO, error) {
	events, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return toDTOList(events), nil
}

// UpdateEvent 部分更新：只覆盖请求里携带的字段。容量创建后不可变。
func (s *EventApplicationService) UpdateEvent(ctx context.Context, id uint64, dto *EventDTO) (*EventDTO, error) {
	ctx, span := s.tracer.Start(ctx, "app.UpdateEvent")
	defer span.End()

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.Name != "" {
		event.Name = dto.Name
	}
	if dto.Description != "" {
		event.Description = dto.Description
	}
	if dto.Location != "" {
		event.Location = dto.Location
	}
	if !dto.StartDate.IsZero() {
		event.StartDate = dto.StartDate
	}
	if !dto.EndDate.IsZero() {
		event.EndDate = dto.EndDate
	}
	if dto.BasePrice > 0 {
		event.BasePrice = dto.BasePrice
	}
	if dto.ImageURL != "" {
		event.ImageURL = dto.ImageURL
	}
	event.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, event); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return ToDTO(event), nil
}

// PublishEvent DRAFT -> PUBLISHED
func (s *EventApplicationService) PublishEvent(ctx context.Context, id uint64) (*EventDTO, error) {
	return s.transition(ctx, id, (*domain.Event).Publish)
}

// CancelEvent 任意非终态 -> CANCELLED
func (s *EventApplicationService) CancelEvent(ctx context.Context, id uint64) (*EventDTO, error) {
	return s.transition(ctx, id, (*domain.Event).Cancel)
}

func (s *EventApplicationService) transition(ctx context.Context, id uint64, fn func(*domain.Event) error) (*EventDTO, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(event); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}
	return ToDTO(event), nil
}

func (s *EventApplicationService) DeleteEvent(ctx context.Context, id uint64) error {
	return s.repo.Delete(ctx, id)
}

// ReserveSeats 账本预占入口。不存在的事件按预占失败处理，与原平台语义一致。
func (s *EventApplicationService) ReserveSeats(ctx context.Context, id uint64, numberOfSeats int) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "app.ReserveSeats")
	defer span.End()
	span.SetAttributes(attribute.Int64("event.id", int64(id)), attribute.Int("seats", numberOfSeats))

	reserved, err := s.ledger.Reserve(ctx, id, numberOfSeats)
	if err != nil {
		if err == domain.ErrEventNotFound {
			return false, nil
		}
		span.RecordError(err)
		return false, err
	}
	logger.Ctx(ctx).Info().Uint64("event_id", id).Int("seats", numberOfSeats).Bool("reserved", reserved).Msg("seat reservation processed")
	return reserved, nil
}

// ReleaseSeats 账本归还入口。事件不存在时返回 ErrEventNotFound。
func (s *EventApplicationService) ReleaseSeats(ctx context.Context, id uint64, numberOfSeats int) error {
	ctx, span := s.tracer.Start(ctx, "app.ReleaseSeats")
	defer span.End()
	span.SetAttributes(attribute.Int64("event.id", int64(id)), attribute.Int("seats", numberOfSeats))

	if err := s.ledger.Release(ctx, id, numberOfSeats); err != nil {
		span.RecordError(err)
		return err
	}
	logger.Ctx(ctx).Info().Uint64("event_id", id).Int("seats", numberOfSeats).Msg("seats released")
	return nil
}
