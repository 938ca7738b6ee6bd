// internal/service/event/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"evently/internal/service/event/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormEventRepository 是 EventRepository 和 SeatLedger 的 GORM 实现。
// 座位扣减通过单条带条件的 UPDATE 完成，由数据库的行级原子性保证
// 同一事件上的并发 Reserve 不会发生 lost update。
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository 创建一个新的 GORM 仓储实例
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Create(ctx context.Context, event *domain.Event) error {
	model := toEventModel(event)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(err, "create event")
	}
	event.ID = model.ID
	return nil
}

func (r *GormEventRepository) FindByID(ctx context.Context, id uint64) (*domain.Event, error) {
	var model EventModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, errors.Wrap(err, "find event")
	}
	return toDomainEvent(&model), nil
}

func (r *GormEventRepository) FindAll(ctx context.Context) ([]*domain.Event, error) {
	var models []EventModel
	if err := r.db.WithContext(ctx).Order("start_date").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list events")
	}
	return toDomainEvents(models), nil
}

func (r *GormEventRepository) FindAvailable(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	var models []EventModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND start_date > ? AND available_seats > 0", string(domain.StatusPublished), now).
		Order("start_date").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "list available events")
	}
	return toDomainEvents(models), nil
}

func (r *GormEventRepository) Search(ctx context.Context, keyword string) ([]*domain.Event, error) {
	var models []EventModel
	pattern := "%" + keyword + "%"
	err := r.db.WithContext(ctx).
		Where("name LIKE ? OR description LIKE ? OR location LIKE ?", pattern, pattern, pattern).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "search events")
	}
	return toDomainEvents(models), nil
}

func (r *GormEventRepository) FindByCategory(ctx context.Context, category domain.Category) ([]*domain.Event, error) {
	var models []EventModel
	if err := r.db.WithContext(ctx).Where("category = ?", string(category)).Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list events by category")
	}
	return toDomainEvents(models), nil
}

func (r *GormEventRepository) Update(ctx context.Context, event *domain.Event) error {
	// 注意: 这里更新全部字段，但不包括 available_seats —— 座位计数
	// 只允许通过 Reserve/Release 变更，避免普通更新覆盖并发扣减的结果。
	res := r.db.WithContext(ctx).Model(&EventModel{}).Where("id = ?", event.ID).Updates(map[string]interface{}{
		"name":        event.Name,
		"description": event.Description,
		"category":    string(event.Category),
		"location":    event.Location,
		"start_date":  event.StartDate,
		"end_date":    event.EndDate,
		"base_price":  event.BasePrice,
		"status":      string(event.Status),
		"image_url":   event.ImageURL,
		"updated_at":  event.UpdatedAt,
	})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update event")
	}
	if res.RowsAffected == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *GormEventRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&EventModel{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete event")
	}
	if res.RowsAffected == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// Reserve 原子的 compare-and-decrement:
//
//	UPDATE events SET available_seats = available_seats - N
//	WHERE id = ? AND available_seats >= N
//
// RowsAffected == 1 即预占成功；守卫条件保证计数永不为负。
func (r *GormEventRepository) Reserve(ctx context.Context, eventID uint64, numberOfSeats int) (bool, error) {
	if numberOfSeats <= 0 {
		return false, nil
	}
	res := r.db.WithContext(ctx).Model(&EventModel{}).
		Where("id = ? AND available_seats >= ?", eventID, numberOfSeats).
		UpdateColumn("available_seats", gorm.Expr("available_seats - ?", numberOfSeats))
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "reserve seats")
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	// 失败分两种情况: 事件不存在 (NotFound) 或余票不足 (false)
	var count int64
	if err := r.db.WithContext(ctx).Model(&EventModel{}).Where("id = ?", eventID).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "reserve seats existence check")
	}
	if count == 0 {
		return false, domain.ErrEventNotFound
	}
	return false, nil
}

// Release 无条件归还。不校验是否有对应的预占记录，见领域模型的说明。
func (r *GormEventRepository) Release(ctx context.Context, eventID uint64, numberOfSeats int) error {
	if numberOfSeats <= 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&EventModel{}).
		Where("id = ?", eventID).
		UpdateColumn("available_seats", gorm.Expr("available_seats + ?", numberOfSeats))
	if res.Error != nil {
		return errors.Wrap(res.Error, "release seats")
	}
	if res.RowsAffected == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
