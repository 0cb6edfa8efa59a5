package containers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cargodesk/cargodesk-backend/pkg/db"
	"github.com/cargodesk/cargodesk-backend/pkg/db/models"
	pkgerrors "github.com/cargodesk/cargodesk-backend/pkg/errors"
	"gorm.io/gorm"
)

const nameConstraint = "containers_pkey"

type containerRepository interface {
	List(ctx context.Context) ([]models.Container, error)
	FindByName(ctx context.Context, name string) (*models.Container, error)
	Create(ctx context.Context, name string) (*models.Container, error)
	Delete(ctx context.Context, name string) error
	DeleteItems(ctx context.Context, name string) error
	CountItems(ctx context.Context, name string) (int64, error)
	WithTx(tx *gorm.DB) containerRepository
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes container operations.
type Service interface {
	List(ctx context.Context) ([]ContainerDTO, error)
	Create(ctx context.Context, name string) (*ContainerDTO, error)
	Delete(ctx context.Context, name string) error
	Get(ctx context.Context, name string) (*ContainerDTO, error)
}

type service struct {
	repo containerRepository
	tx   txRunner
}

// NewService builds a container service with the provided repository and
// transaction runner.
func NewService(repo containerRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("container repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context) ([]ContainerDTO, error) {
	containers, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list containers")
	}
	dtos := FromModels(containers)
	for i := range dtos {
		count, countErr := s.repo.CountItems(ctx, dtos[i].Name)
		if countErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, countErr, "count container items")
		}
		dtos[i].ItemsCount = count
	}
	return dtos, nil
}

func (s *service) Get(ctx context.Context, name string) (*ContainerDTO, error) {
	container, err := s.repo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "container not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load container")
	}
	dto := FromModel(container)
	count, err := s.repo.CountItems(ctx, dto.Name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count container items")
	}
	dto.ItemsCount = count
	return dto, nil
}

// Create trims and validates the name, pre-checks for a duplicate, and still
// maps the uniqueness constraint to a conflict in case of a racing create.
func (s *service) Create(ctx context.Context, name string) (*ContainerDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "container name is required")
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "container already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check container name")
	}

	container, err := s.repo.Create(ctx, name)
	if err != nil {
		if db.IsUniqueViolation(err, nameConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "container already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create container")
	}
	return FromModel(container), nil
}

func (s *service) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "container name is required")
	}

	// Items and the container go in one transaction; the sqlite backend
	// does not enforce the FK cascade the postgres schema declares.
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.DeleteItems(ctx, name); err != nil {
			return err
		}
		return txRepo.Delete(ctx, name)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "container not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete container")
	}
	return nil
}
