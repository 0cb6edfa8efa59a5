package containers

import (
	"context"

	"github.com/cargodesk/cargodesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles container persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to container operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) containerRepository {
	return &Repository{db: tx}
}

// List returns all containers ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]models.Container, error) {
	var containers []models.Container
	if err := r.db.WithContext(ctx).
		Order("created_at ASC, name ASC").
		Find(&containers).Error; err != nil {
		return nil, err
	}
	return containers, nil
}

// FindByName loads a container by its name.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Container, error) {
	var container models.Container
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&container).Error; err != nil {
		return nil, err
	}
	return &container, nil
}

// Create persists a new container row.
func (r *Repository) Create(ctx context.Context, name string) (*models.Container, error) {
	container := &models.Container{Name: name}
	if err := r.db.WithContext(ctx).Create(container).Error; err != nil {
		return nil, err
	}
	return container, nil
}

// Delete removes the container row only; the service deletes items first.
func (r *Repository) Delete(ctx context.Context, name string) error {
	res := r.db.WithContext(ctx).Where("name = ?", name).Delete(&models.Container{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteItems removes every item in the container. Zero rows is fine; the
// postgres schema also cascades, but sqlite does not enforce the FK.
func (r *Repository) DeleteItems(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).
		Where("container_name = ?", name).
		Delete(&models.ContainerItem{}).Error
}

// CountItems returns the number of items attached to the container.
func (r *Repository) CountItems(ctx context.Context, name string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContainerItem{}).
		Where("container_name = ?", name).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
