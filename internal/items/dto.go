package items

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cargodesk/cargodesk-backend/pkg/db/models"
	"github.com/cargodesk/cargodesk-backend/pkg/db/types"
	"github.com/cargodesk/cargodesk-backend/pkg/enums"
)

// AttachmentDTO is the stored-reference view of an attachment. Embedded
// payloads are never echoed back to clients.
type AttachmentDTO struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// ItemDTO exposes one shipment line in API responses.
type ItemDTO struct {
	ID              int64                    `json:"id"`
	ContainerName   string                   `json:"container_name"`
	ReferenceCode   string                   `json:"reference_code"`
	Supplier        string                   `json:"supplier"`
	CBM             decimal.Decimal          `json:"cbm"`
	Cartons         int                      `json:"cartons"`
	GrossWeight     decimal.Decimal          `json:"gross_weight"`
	ProductCost     decimal.Decimal          `json:"product_cost"`
	FreightCost     decimal.Decimal          `json:"freight_cost"`
	Status          enums.ItemStatus         `json:"status"`
	Awaiting        []string                 `json:"awaiting"`
	ProductionDays  int                      `json:"production_days"`
	ProductionReady string                   `json:"production_ready"`
	Client          string                   `json:"client"`
	Attachments     map[string]AttachmentDTO `json:"attachments"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// CreateItemDTO holds typed creation-time values for a new item row. Imports
// and drafts fill it; plain row adds leave it zero and take the defaults.
type CreateItemDTO struct {
	ReferenceCode   string
	Supplier        string
	CBM             decimal.Decimal
	Cartons         int
	GrossWeight     decimal.Decimal
	ProductCost     decimal.Decimal
	FreightCost     decimal.Decimal
	Status          enums.ItemStatus
	Awaiting        []string
	ProductionDays  int
	ProductionReady string
	Client          string
}

// ToModel prepares the GORM model, supplying row defaults.
func (c CreateItemDTO) ToModel(containerName string) *models.ContainerItem {
	status := c.Status
	if !status.IsValid() {
		status = enums.ItemStatusPending
	}
	awaiting := types.StringList(c.Awaiting).Clone()
	if len(awaiting) == 0 {
		awaiting = types.StringList{"-"}
	}
	return &models.ContainerItem{
		ContainerName:   containerName,
		ReferenceCode:   c.ReferenceCode,
		Supplier:        c.Supplier,
		CBM:             c.CBM,
		Cartons:         c.Cartons,
		GrossWeight:     c.GrossWeight,
		ProductCost:     c.ProductCost,
		FreightCost:     c.FreightCost,
		Status:          status,
		Awaiting:        awaiting,
		ProductionDays:  c.ProductionDays,
		ProductionReady: c.ProductionReady,
		Client:          c.Client,
	}
}

// FromModel maps a persisted item into a DTO.
func FromModel(m *models.ContainerItem) *ItemDTO {
	if m == nil {
		return nil
	}
	attachments := map[string]AttachmentDTO{}
	for kind, att := range m.Attachments() {
		attachments[string(kind)] = AttachmentDTO{URL: att.URL, Name: att.Name}
	}
	return &ItemDTO{
		ID:              m.ID,
		ContainerName:   m.ContainerName,
		ReferenceCode:   m.ReferenceCode,
		Supplier:        m.Supplier,
		CBM:             m.CBM,
		Cartons:         m.Cartons,
		GrossWeight:     m.GrossWeight,
		ProductCost:     m.ProductCost,
		FreightCost:     m.FreightCost,
		Status:          m.Status,
		Awaiting:        m.Awaiting.Clone(),
		ProductionDays:  m.ProductionDays,
		ProductionReady: m.ProductionReady,
		Client:          m.Client,
		Attachments:     attachments,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromModels maps an item slice into DTOs, never returning nil.
func FromModels(ms []models.ContainerItem) []ItemDTO {
	dtos := make([]ItemDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}
