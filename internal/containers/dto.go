package containers

import (
	"time"

	"github.com/cargodesk/cargodesk-backend/pkg/db/models"
)

// ContainerDTO exposes container data in API responses.
type ContainerDTO struct {
	Name       string    `json:"name"`
	ItemsCount int64     `json:"items_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FromModel maps a persisted container into a DTO.
func FromModel(m *models.Container) *ContainerDTO {
	if m == nil {
		return nil
	}
	return &ContainerDTO{
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromModels maps a container slice into DTOs, never returning nil.
func FromModels(ms []models.Container) []ContainerDTO {
	dtos := make([]ContainerDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}
