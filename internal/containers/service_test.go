package containers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cargodesk/cargodesk-backend/pkg/db/models"
	pkgerrors "github.com/cargodesk/cargodesk-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubContainerRepo struct {
	containers []models.Container
	items      map[string]int64
	createErr  error
	deleteErr  error
	listErr    error

	created      []string
	deleted      []string
	itemsDeleted []string
}

func (s *stubContainerRepo) List(_ context.Context) ([]models.Container, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.containers, nil
}

func (s *stubContainerRepo) FindByName(_ context.Context, name string) (*models.Container, error) {
	for i := range s.containers {
		if s.containers[i].Name == name {
			return &s.containers[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubContainerRepo) Create(_ context.Context, name string) (*models.Container, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, name)
	container := models.Container{Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.containers = append(s.containers, container)
	return &container, nil
}

func (s *stubContainerRepo) Delete(_ context.Context, name string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i := range s.containers {
		if s.containers[i].Name == name {
			s.containers = append(s.containers[:i], s.containers[i+1:]...)
			s.deleted = append(s.deleted, name)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubContainerRepo) DeleteItems(_ context.Context, name string) error {
	s.itemsDeleted = append(s.itemsDeleted, name)
	delete(s.items, name)
	return nil
}

func (s *stubContainerRepo) CountItems(_ context.Context, name string) (int64, error) {
	return s.items[name], nil
}

func (s *stubContainerRepo) WithTx(_ *gorm.DB) containerRepository {
	return s
}

type stubTxRunner struct {
	calls int
}

func (s *stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

func newTestService(t *testing.T, repo *stubContainerRepo) Service {
	t.Helper()
	svc, err := NewService(repo, &stubTxRunner{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil, &stubTxRunner{}); err == nil {
		t.Fatal("expected error creating service without repo")
	}
	if _, err := NewService(&stubContainerRepo{}, nil); err == nil {
		t.Fatal("expected error creating service without tx runner")
	}
}

func TestCreateThenListContainsName(t *testing.T) {
	repo := &stubContainerRepo{}
	svc := newTestService(t, repo)

	dto, err := svc.Create(context.Background(), "  MSKU-204  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Name != "MSKU-204" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "MSKU-204" {
		t.Fatalf("expected created container in list, got %+v", list)
	}
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	repo := &stubContainerRepo{containers: []models.Container{{Name: "MSKU-204"}}}
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), "MSKU-204")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("duplicate create should not reach the store")
	}
}

func TestCreateEmptyNameRejected(t *testing.T) {
	svc := newTestService(t, &stubContainerRepo{})

	_, err := svc.Create(context.Background(), "   ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteMissingContainerNotFound(t *testing.T) {
	svc := newTestService(t, &stubContainerRepo{})

	err := svc.Delete(context.Background(), "ghost")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteRemovesContainerAndItemsInTx(t *testing.T) {
	repo := &stubContainerRepo{
		containers: []models.Container{{Name: "MSKU-204"}},
		items:      map[string]int64{"MSKU-204": 3},
	}
	tx := &stubTxRunner{}
	svc, err := NewService(repo, tx)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.Delete(context.Background(), "MSKU-204"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatal("expected delete to reach the store")
	}
	if len(repo.itemsDeleted) != 1 || repo.itemsDeleted[0] != "MSKU-204" {
		t.Fatalf("expected container items deleted too, got %v", repo.itemsDeleted)
	}
	if tx.calls != 1 {
		t.Fatalf("expected a single transaction, got %d", tx.calls)
	}
}

func TestListReportsItemCounts(t *testing.T) {
	repo := &stubContainerRepo{
		containers: []models.Container{{Name: "MSKU-204"}, {Name: "TCLU-881"}},
		items:      map[string]int64{"MSKU-204": 2},
	}
	svc := newTestService(t, repo)

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].ItemsCount != 2 || list[1].ItemsCount != 0 {
		t.Fatalf("expected item counts 2 and 0, got %+v", list)
	}

	dto, err := svc.Get(context.Background(), "MSKU-204")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if dto.ItemsCount != 2 {
		t.Fatalf("expected items_count 2, got %d", dto.ItemsCount)
	}
}

func TestListDependencyError(t *testing.T) {
	repo := &stubContainerRepo{listErr: errors.New("boom")}
	svc := newTestService(t, repo)

	_, err := svc.List(context.Background())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
