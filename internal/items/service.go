package items

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cargodesk/cargodesk-backend/pkg/db/models"
	"github.com/cargodesk/cargodesk-backend/pkg/db/types"
	"github.com/cargodesk/cargodesk-backend/pkg/enums"
	pkgerrors "github.com/cargodesk/cargodesk-backend/pkg/errors"
	"gorm.io/gorm"
)

type itemRepository interface {
	ListByContainer(ctx context.Context, containerName string) ([]models.ContainerItem, error)
	FindByID(ctx context.Context, id int64) (*models.ContainerItem, error)
	Create(ctx context.Context, item *models.ContainerItem) error
	UpdateColumns(ctx context.Context, id int64, columns map[string]any) (*models.ContainerItem, error)
	Delete(ctx context.Context, id int64) error
	DeleteByContainer(ctx context.Context, containerName string) error
}

type containerFinder interface {
	FindByName(ctx context.Context, name string) (*models.Container, error)
}

// UpdateItemInput captures a partial update. Nil fields are untouched;
// numeric fields arrive as free text and coerce with zero-fill.
type UpdateItemInput struct {
	ReferenceCode   *string
	Supplier        *string
	CBM             *string
	Cartons         *string
	GrossWeight     *string
	ProductCost     *string
	FreightCost     *string
	Status          *string
	Awaiting        *[]string
	ProductionDays  *string
	ProductionReady *string
	Client          *string
}

// Service exposes item operations.
type Service interface {
	ListByContainer(ctx context.Context, containerName string) ([]ItemDTO, error)
	Add(ctx context.Context, containerName string) (*ItemDTO, error)
	Create(ctx context.Context, containerName string, input CreateItemDTO) (*ItemDTO, error)
	Patch(ctx context.Context, id int64, input UpdateItemInput) (*ItemDTO, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*ItemDTO, error)
	DeleteByContainer(ctx context.Context, containerName string) error
}

type service struct {
	repo       itemRepository
	containers containerFinder
}

// NewService builds an item service with the provided repositories.
func NewService(repo itemRepository, containers containerFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if containers == nil {
		return nil, fmt.Errorf("container repository required")
	}
	return &service{repo: repo, containers: containers}, nil
}

func (s *service) requireContainer(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "container name is required")
	}
	if _, err := s.containers.FindByName(ctx, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "container not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load container")
	}
	return name, nil
}

func (s *service) ListByContainer(ctx context.Context, containerName string) ([]ItemDTO, error) {
	name, err := s.requireContainer(ctx, containerName)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByContainer(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	return FromModels(items), nil
}

// Add appends a defaulted row: pending status, awaiting sentinel, zero
// numerics. The store assigns and returns the id.
func (s *service) Add(ctx context.Context, containerName string) (*ItemDTO, error) {
	return s.Create(ctx, containerName, CreateItemDTO{})
}

func (s *service) Create(ctx context.Context, containerName string, input CreateItemDTO) (*ItemDTO, error) {
	name, err := s.requireContainer(ctx, containerName)
	if err != nil {
		return nil, err
	}
	item := input.ToModel(name)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}
	return FromModel(item), nil
}

func (s *service) Get(ctx context.Context, id int64) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return FromModel(item), nil
}

// Patch applies only the supplied fields. The server-confirmed row is
// returned so the caller can replace its copy wholesale.
func (s *service) Patch(ctx context.Context, id int64, input UpdateItemInput) (*ItemDTO, error) {
	columns, err := patchColumns(input)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return s.Get(ctx, id)
	}

	item, err := s.repo.UpdateColumns(ctx, id, columns)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}
	return FromModel(item), nil
}

func patchColumns(input UpdateItemInput) (map[string]any, error) {
	columns := map[string]any{}
	if input.ReferenceCode != nil {
		columns["reference_code"] = strings.TrimSpace(*input.ReferenceCode)
	}
	if input.Supplier != nil {
		columns["supplier"] = strings.TrimSpace(*input.Supplier)
	}
	if input.CBM != nil {
		columns["cbm"] = CoerceDecimal(*input.CBM)
	}
	if input.Cartons != nil {
		columns["cartons"] = CoerceInt(*input.Cartons)
	}
	if input.GrossWeight != nil {
		columns["gross_weight"] = CoerceDecimal(*input.GrossWeight)
	}
	if input.ProductCost != nil {
		columns["product_cost"] = CoerceDecimal(*input.ProductCost)
	}
	if input.FreightCost != nil {
		columns["freight_cost"] = CoerceDecimal(*input.FreightCost)
	}
	if input.Status != nil {
		status, err := enums.ParseItemStatus(strings.TrimSpace(*input.Status))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		columns["status"] = status
	}
	if input.Awaiting != nil {
		awaiting := types.StringList(*input.Awaiting).Clone()
		if len(awaiting) == 0 {
			awaiting = types.StringList{"-"}
		}
		columns["awaiting"] = awaiting
	}
	if input.ProductionDays != nil {
		columns["production_days"] = CoerceInt(*input.ProductionDays)
	}
	if input.ProductionReady != nil {
		columns["production_ready"] = strings.TrimSpace(*input.ProductionReady)
	}
	if input.Client != nil {
		columns["client"] = strings.TrimSpace(*input.Client)
	}
	return columns, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	return nil
}

func (s *service) DeleteByContainer(ctx context.Context, containerName string) error {
	name, err := s.requireContainer(ctx, containerName)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByContainer(ctx, name); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear container items")
	}
	return nil
}
