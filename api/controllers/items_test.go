package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cargodesk/cargodesk-backend/internal/items"
)

type testItemsService struct {
	listFn  func(ctx context.Context, containerName string) ([]items.ItemDTO, error)
	addFn   func(ctx context.Context, containerName string) (*items.ItemDTO, error)
	patchFn func(ctx context.Context, id int64, input items.UpdateItemInput) (*items.ItemDTO, error)
}

func (s *testItemsService) ListByContainer(ctx context.Context, containerName string) ([]items.ItemDTO, error) {
	if s.listFn != nil {
		return s.listFn(ctx, containerName)
	}
	return []items.ItemDTO{}, nil
}

func (s *testItemsService) Add(ctx context.Context, containerName string) (*items.ItemDTO, error) {
	if s.addFn != nil {
		return s.addFn(ctx, containerName)
	}
	return &items.ItemDTO{ID: 1, ContainerName: containerName}, nil
}

// Create implements [items.Service].
func (s *testItemsService) Create(ctx context.Context, containerName string, input items.CreateItemDTO) (*items.ItemDTO, error) {
	panic("unimplemented")
}

func (s *testItemsService) Patch(ctx context.Context, id int64, input items.UpdateItemInput) (*items.ItemDTO, error) {
	if s.patchFn != nil {
		return s.patchFn(ctx, id, input)
	}
	return &items.ItemDTO{ID: id}, nil
}

func (s *testItemsService) Delete(ctx context.Context, id int64) error {
	return nil
}

func (s *testItemsService) Get(ctx context.Context, id int64) (*items.ItemDTO, error) {
	return &items.ItemDTO{ID: id}, nil
}

// DeleteByContainer implements [items.Service].
func (s *testItemsService) DeleteByContainer(ctx context.Context, containerName string) error {
	panic("unimplemented")
}

func TestItemAddReturnsAssignedID(t *testing.T) {
	svc := &testItemsService{
		addFn: func(ctx context.Context, containerName string) (*items.ItemDTO, error) {
			if containerName != "MSKU-204" {
				t.Fatalf("unexpected container %q", containerName)
			}
			return &items.ItemDTO{ID: 42, ContainerName: containerName}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/containers/MSKU-204/items", nil)
	req = addRouteParam(req, "containerName", "MSKU-204")
	resp := httptest.NewRecorder()
	ItemAdd(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	var envelope struct {
		Data items.ItemDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.ID != 42 {
		t.Fatalf("expected assigned id 42 got %d", envelope.Data.ID)
	}
}

func TestItemPatchForwardsOnlyProvidedFields(t *testing.T) {
	var gotInput items.UpdateItemInput
	svc := &testItemsService{
		patchFn: func(ctx context.Context, id int64, input items.UpdateItemInput) (*items.ItemDTO, error) {
			if id != 7 {
				t.Fatalf("unexpected id %d", id)
			}
			gotInput = input
			return &items.ItemDTO{ID: id}, nil
		},
	}

	body := `{"supplier":"Acme Trading","cbm":"12.5"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/items/7", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = addRouteParam(req, "itemID", "7")
	resp := httptest.NewRecorder()
	ItemPatch(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotInput.Supplier == nil || *gotInput.Supplier != "Acme Trading" {
		t.Fatalf("expected supplier forwarded, got %+v", gotInput.Supplier)
	}
	if gotInput.CBM == nil || *gotInput.CBM != "12.5" {
		t.Fatalf("expected cbm forwarded, got %+v", gotInput.CBM)
	}
	if gotInput.Status != nil || gotInput.Awaiting != nil || gotInput.Client != nil {
		t.Fatalf("expected absent fields to stay nil, got %+v", gotInput)
	}
}

func TestItemPatchRejectsUnknownField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/items/7", strings.NewReader(`{"colour":"red"}`))
	req.Header.Set("Content-Type", "application/json")
	req = addRouteParam(req, "itemID", "7")
	resp := httptest.NewRecorder()
	ItemPatch(&testItemsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field got %d", resp.Code)
	}
}

func TestItemPatchInvalidID(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/items/"+raw, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req = addRouteParam(req, "itemID", raw)
		resp := httptest.NewRecorder()
		ItemPatch(&testItemsService{}, testLogger())(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Fatalf("id %q: expected 400 got %d", raw, resp.Code)
		}
	}
}

func TestItemListForwardsContainer(t *testing.T) {
	var gotContainer string
	svc := &testItemsService{
		listFn: func(ctx context.Context, containerName string) ([]items.ItemDTO, error) {
			gotContainer = containerName
			return []items.ItemDTO{{ID: 1, ContainerName: containerName}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/containers/MSKU-204/items", nil)
	req = addRouteParam(req, "containerName", "MSKU-204")
	resp := httptest.NewRecorder()
	ItemList(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotContainer != "MSKU-204" {
		t.Fatalf("expected container forwarded, got %q", gotContainer)
	}
}
