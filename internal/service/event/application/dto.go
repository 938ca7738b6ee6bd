// internal/service/event/application/dto.go
package application

import (
	"time"

	"evently/internal/service/event/domain"
)

// EventDTO 是事件服务对外暴露的数据结构
type EventDTO struct {
	ID             uint64          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Category       domain.Category `json:"category,omitempty"`
	Location       string          `json:"location"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        time.Time       `json:"endDate"`
	Capacity       int             `json:"capacity"`
	AvailableSeats int             `json:"availableSeats"`
	BasePrice      float64         `json:"basePrice"`
	Status         domain.Status   `json:"status,omitempty"`
	OrganizerID    uint64          `json:"organizerId,omitempty"`
	ImageURL       string          `json:"imageUrl,omitempty"`
}

// ToDTO 领域实体 -> DTO
func ToDTO(e *domain.Event) *EventDTO {
	if e == nil {
		return nil
	}
	return &EventDTO{
		ID:             e.ID,
		Name:           e.Name,
		Description:    e.Description,
		Category:       e.Category,
		Location:       e.Location,
		StartDate:      e.StartDate,
		EndDate:        e.EndDate,
		Capacity:       e.Capacity,
		AvailableSeats: e.AvailableSeats,
		BasePrice:      e.BasePrice,
		Status:         e.Status,
		OrganizerID:    e.OrganizerID,
		ImageURL:       e.ImageURL,
	}
}

func toDTOList(events []*domain.Event) []*EventDTO {
	dtos := make([]*EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, ToDTO(e))
	}
	return dtos
}
