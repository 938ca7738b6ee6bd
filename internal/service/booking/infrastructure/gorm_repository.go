// internal/service/booking/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"evently/internal/service/booking/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormBookingRepository 是 BookingRepository 的 GORM 实现
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Save(ctx context.Context, booking *domain.Booking) error {
	model := toBookingModel(booking)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return errors.Wrap(err, "save booking")
	}
	booking.ID = model.ID
	return nil
}

func (r *GormBookingRepository) FindByID(ctx context.Context, id uint64) (*domain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, errors.Wrap(err, "find booking")
	}
	return toDomainBooking(&model), nil
}

func (r *GormBookingRepository) FindAll(ctx context.Context) ([]*domain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list bookings")
	}
	return toDomainBookings(models), nil
}

var _ domain.BookingRepository = (*GormBookingRepository)(nil)
