package models

import "time"

// Container groups shipment line items under a user-chosen name. The name is
// the natural key and the foreign key on container_items.
type Container struct {
	Name      string    `gorm:"column:name;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Container) TableName() string {
	return "containers"
}
