// internal/service/event/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"evently/internal/service/event/domain"
)

// EventModel 对应数据库中的 events 表
type EventModel struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement"`
	Name           string `gorm:"size:200;not null"`
	Description    string `gorm:"type:text"`
	Category       string `gorm:"size:50;not null"`
	Location       string `gorm:"size:300;not null"`
	StartDate      time.Time
	EndDate        time.Time
	Capacity       int     `gorm:"not null"`
	AvailableSeats int     `gorm:"not null"`
	BasePrice      float64 `gorm:"type:decimal(10,2)"`
	Status         string  `gorm:"size:20;not null;default:DRAFT"`
	OrganizerID    uint64  `gorm:"not null"`
	ImageURL       string  `gorm:"size:500"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName 指定 GORM 应该使用的表名
func (EventModel) TableName() string {
	return "events"
}

func toEventModel(e *domain.Event) *EventModel {
	return &EventModel{
		ID:             e.ID,
		Name:           e.Name,
		Description:    e.Description,
		Category:       string(e.Category),
		Location:       e.Location,
		StartDate:      e.StartDate,
		EndDate:        e.EndDate,
		Capacity:       e.Capacity,
		AvailableSeats: e.AvailableSeats,
		BasePrice:      e.BasePrice,
		Status:         string(e.Status),
		OrganizerID:    e.OrganizerID,
		ImageURL:       e.ImageURL,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func toDomainEvent(m *EventModel) *domain.Event {
	return &domain.Event{
		ID:             m.ID,
		Name:           m.Name,
		Description:    m.Description,
		Category:       domain.Category(m.Category),
		Location:       m.Location,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		Capacity:       m.Capacity,
		AvailableSeats: m.AvailableSeats,
		BasePrice:      m.BasePrice,
		Status:         domain.Status(m.Status),
		OrganizerID:    m.OrganizerID,
		ImageURL:       m.ImageURL,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toDomainEvents(models []EventModel) []*domain.Event {
	events := make([]*domain.Event, 0, len(models))
	for i := range models {
		events = append(events, toDomainEvent(&models[i]))
	}
	return events
}
