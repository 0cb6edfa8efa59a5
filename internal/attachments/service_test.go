package attachments

import (
	"context"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/cargodesk/cargodesk-backend/pkg/config"
	"github.com/cargodesk/cargodesk-backend/pkg/db/models"
	"github.com/cargodesk/cargodesk-backend/pkg/db/types"
	"github.com/cargodesk/cargodesk-backend/pkg/enums"
	pkgerrors "github.com/cargodesk/cargodesk-backend/pkg/errors"
	"github.com/cargodesk/cargodesk-backend/pkg/logger"
	"gorm.io/gorm"
)

type stubItemStore struct {
	items map[int64]*models.ContainerItem
}

func (s *stubItemStore) FindByID(_ context.Context, id int64) (*models.ContainerItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *item
	return &cpy, nil
}

func (s *stubItemStore) UpdateColumns(_ context.Context, id int64, columns map[string]any) (*models.ContainerItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for col, val := range columns {
		kind, err := enums.ParseAttachmentKind(col)
		if err != nil {
			continue
		}
		slot := item.AttachmentByKind(kind)
		att, _ := val.(*types.Attachment)
		*slot = att
	}
	cpy := *item
	return &cpy, nil
}

type stubBlobStore struct {
	uploads map[string][]byte
	deleted []string
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{uploads: map[string][]byte{}}
}

func (s *stubBlobStore) Upload(_ context.Context, key, _ string, payload []byte) (string, error) {
	s.uploads[key] = payload
	return "https://storage.googleapis.com/storage/v1/b/test/o/" + key + "?alt=media", nil
}

func (s *stubBlobStore) DownloadURL(_ context.Context, rawURL string) ([]byte, error) {
	for key, payload := range s.uploads {
		if strings.Contains(rawURL, key) {
			return payload, nil
		}
	}
	return nil, io.EOF
}

func (s *stubBlobStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	delete(s.uploads, key)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testItem(id int64) *models.ContainerItem {
	return &models.ContainerItem{ID: id, ContainerName: "MSKU-204"}
}

func newTestService(t *testing.T, store *stubItemStore, blobs BlobStore) Service {
	t.Helper()
	svc, err := NewService(store, blobs, config.AttachmentsConfig{MaxUploadMB: 25}, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestUploadStoresBlobAndPatchesColumn(t *testing.T) {
	store := &stubItemStore{items: map[int64]*models.ContainerItem{7: testItem(7)}}
	blobs := newStubBlobStore()
	svc := newTestService(t, store, blobs)

	payload := base64.StdEncoding.EncodeToString([]byte("%PDF-1.7"))
	dto, err := svc.Upload(context.Background(), 7, enums.AttachmentKindHBL, UploadInput{
		Name:     "bill of lading.pdf",
		MimeType: "application/pdf",
		Data:     payload,
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	att, ok := dto.Attachments["hbl"]
	if !ok {
		t.Fatalf("expected hbl attachment in row, got %v", dto.Attachments)
	}
	if att.URL == "" || att.Name != "bill of lading.pdf" {
		t.Fatalf("unexpected stored reference: %+v", att)
	}
	if len(blobs.uploads) != 1 {
		t.Fatalf("expected one stored blob, got %d", len(blobs.uploads))
	}
	for key := range blobs.uploads {
		if !strings.HasPrefix(key, "containers/MSKU-204/7/hbl/") {
			t.Fatalf("unexpected object key %q", key)
		}
	}
}

func TestUploadBadBase64ClearsColumnSilently(t *testing.T) {
	item := testItem(7)
	item.HBL = &types.Attachment{URL: "https://example.com/old", Name: "old.pdf"}
	store := &stubItemStore{items: map[int64]*models.ContainerItem{7: item}}
	svc := newTestService(t, store, newStubBlobStore())

	dto, err := svc.Upload(context.Background(), 7, enums.AttachmentKindHBL, UploadInput{
		Name: "x.pdf",
		Data: "!!! not base64 !!!",
	})
	if err != nil {
		t.Fatalf("expected silent drop, got %v", err)
	}
	if _, ok := dto.Attachments["hbl"]; ok {
		t.Fatal("expected column cleared after decode failure")
	}
}

func TestUploadWithoutBlobStoreKeepsEmbeddedForm(t *testing.T) {
	store := &stubItemStore{items: map[int64]*models.ContainerItem{7: testItem(7)}}
	svc := newTestService(t, store, nil)

	payload := base64.StdEncoding.EncodeToString([]byte("cells"))
	_, err := svc.Upload(context.Background(), 7, enums.AttachmentKindPackingList, UploadInput{
		Name:     "list.xlsx",
		MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:     payload,
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	stored := store.items[7].PackingList
	if stored == nil || !stored.IsEmbedded() {
		t.Fatalf("expected embedded attachment persisted, got %+v", stored)
	}
}

func TestUploadUnknownItemNotFound(t *testing.T) {
	svc := newTestService(t, &stubItemStore{items: map[int64]*models.ContainerItem{}}, nil)

	_, err := svc.Upload(context.Background(), 404, enums.AttachmentKindPayment, UploadInput{
		Data: base64.StdEncoding.EncodeToString([]byte("x")),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteClearsColumnAndBlob(t *testing.T) {
	item := testItem(7)
	item.Payment = &types.Attachment{
		URL:  "https://storage.googleapis.com/storage/v1/b/test/o/containers%2FMSKU-204%2F7%2Fpayment%2Fwire.pdf?alt=media",
		Name: "wire.pdf",
	}
	store := &stubItemStore{items: map[int64]*models.ContainerItem{7: item}}
	blobs := newStubBlobStore()
	svc := newTestService(t, store, blobs)

	dto, err := svc.Delete(context.Background(), 7, enums.AttachmentKindPayment)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := dto.Attachments["payment"]; ok {
		t.Fatal("expected payment column cleared")
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "containers/MSKU-204/7/payment/wire.pdf" {
		t.Fatalf("expected blob delete, got %v", blobs.deleted)
	}
}

func TestDeleteMissingAttachmentNotFound(t *testing.T) {
	store := &stubItemStore{items: map[int64]*models.ContainerItem{7: testItem(7)}}
	svc := newTestService(t, store, newStubBlobStore())

	_, err := svc.Delete(context.Background(), 7, enums.AttachmentKindCertificates)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPreviewClassifiesStoredAttachment(t *testing.T) {
	item := testItem(7)
	item.CommercialInvoice = &types.Attachment{
		URL:      "https://example.com/inv",
		Name:     "invoice.pdf",
		MimeType: "application/pdf",
	}
	store := &stubItemStore{items: map[int64]*models.ContainerItem{7: item}}
	svc := newTestService(t, store, nil)

	preview, err := svc.Preview(context.Background(), 7, enums.AttachmentKindCommercialInvoice)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.Class != enums.DocClassPDF {
		t.Fatalf("expected pdf class, got %s", preview.Class)
	}
	if preview.URL != "https://example.com/inv" {
		t.Fatalf("unexpected url %q", preview.URL)
	}
}

func TestKeyFromURL(t *testing.T) {
	key, ok := keyFromURL("https://storage.googleapis.com/storage/v1/b/test/o/containers%2Fa%2F1%2Fhbl%2Fdoc.pdf?alt=media")
	if !ok || key != "containers/a/1/hbl/doc.pdf" {
		t.Fatalf("unexpected key %q ok=%v", key, ok)
	}
	if _, ok := keyFromURL("https://example.com/no-object"); ok {
		t.Fatal("expected miss for non media link")
	}
}
