package items

import (
	"context"

	"github.com/cargodesk/cargodesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles container item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to item operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByContainer returns the container's items in creation order.
func (r *Repository) ListByContainer(ctx context.Context, containerName string) ([]models.ContainerItem, error) {
	var items []models.ContainerItem
	if err := r.db.WithContext(ctx).
		Where("container_name = ?", containerName).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID loads an item by its store-assigned id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.ContainerItem, error) {
	var item models.ContainerItem
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Create persists a new item row; the store assigns the id.
func (r *Repository) Create(ctx context.Context, item *models.ContainerItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateColumns applies the column map to the row and returns the fresh row.
func (r *Repository) UpdateColumns(ctx context.Context, id int64, columns map[string]any) (*models.ContainerItem, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ContainerItem{}).
		Where("id = ?", id).
		Updates(columns)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// Delete removes an item row.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ContainerItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByContainer removes every item in the container. Used by replace-mode
// imports; deleting zero rows is not an error.
func (r *Repository) DeleteByContainer(ctx context.Context, containerName string) error {
	return r.db.WithContext(ctx).
		Where("container_name = ?", containerName).
		Delete(&models.ContainerItem{}).Error
}
