package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cargodesk/cargodesk-backend/pkg/db/types"
	"github.com/cargodesk/cargodesk-backend/pkg/enums"
)

// ContainerItem is one shipment line. The id is store-assigned and immutable;
// all costs are implicitly in one currency.
type ContainerItem struct {
	ID              int64            `gorm:"column:id;primaryKey;autoIncrement"`
	ContainerName   string           `gorm:"column:container_name;not null;index"`
	ReferenceCode   string           `gorm:"column:reference_code"`
	Supplier        string           `gorm:"column:supplier"`
	CBM             decimal.Decimal  `gorm:"column:cbm;type:numeric(12,4)"`
	Cartons         int              `gorm:"column:cartons"`
	GrossWeight     decimal.Decimal  `gorm:"column:gross_weight;type:numeric(12,4)"`
	ProductCost     decimal.Decimal  `gorm:"column:product_cost;type:numeric(14,2)"`
	FreightCost     decimal.Decimal  `gorm:"column:freight_cost;type:numeric(14,2)"`
	Status          enums.ItemStatus `gorm:"column:status;not null;default:pending"`
	Awaiting        types.StringList `gorm:"column:awaiting;type:text"`
	ProductionDays  int              `gorm:"column:production_days"`
	ProductionReady string           `gorm:"column:production_ready"`
	Client          string           `gorm:"column:client"`

	PackingList       *types.Attachment `gorm:"column:packing_list;type:text"`
	CommercialInvoice *types.Attachment `gorm:"column:commercial_invoice;type:text"`
	Payment           *types.Attachment `gorm:"column:payment;type:text"`
	HBL               *types.Attachment `gorm:"column:hbl;type:text"`
	Certificates      *types.Attachment `gorm:"column:certificates;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ContainerItem) TableName() string {
	return "container_items"
}

// AttachmentByKind returns a pointer to the column backing the given kind.
func (i *ContainerItem) AttachmentByKind(kind enums.AttachmentKind) **types.Attachment {
	switch kind {
	case enums.AttachmentKindPackingList:
		return &i.PackingList
	case enums.AttachmentKindCommercialInvoice:
		return &i.CommercialInvoice
	case enums.AttachmentKindPayment:
		return &i.Payment
	case enums.AttachmentKindHBL:
		return &i.HBL
	case enums.AttachmentKindCertificates:
		return &i.Certificates
	}
	return nil
}

// Attachments returns the non-empty attachments keyed by kind, in column order.
func (i *ContainerItem) Attachments() map[enums.AttachmentKind]*types.Attachment {
	out := map[enums.AttachmentKind]*types.Attachment{}
	for _, kind := range enums.AllAttachmentKinds() {
		if slot := i.AttachmentByKind(kind); slot != nil && !(*slot).Empty() {
			out[kind] = *slot
		}
	}
	return out
}
