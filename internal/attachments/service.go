package attachments

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/cargodesk/cargodesk-backend/internal/items"
	"github.com/cargodesk/cargodesk-backend/pkg/config"
	"github.com/cargodesk/cargodesk-backend/pkg/db/models"
	"github.com/cargodesk/cargodesk-backend/pkg/db/types"
	"github.com/cargodesk/cargodesk-backend/pkg/enums"
	pkgerrors "github.com/cargodesk/cargodesk-backend/pkg/errors"
	"github.com/cargodesk/cargodesk-backend/pkg/logger"
	"gorm.io/gorm"
)

// BlobStore is the object storage surface the attachment service needs.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, payload []byte) (string, error)
	DownloadURL(ctx context.Context, rawURL string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type itemStore interface {
	FindByID(ctx context.Context, id int64) (*models.ContainerItem, error)
	UpdateColumns(ctx context.Context, id int64, columns map[string]any) (*models.ContainerItem, error)
}

// UploadInput is the embedded-payload form clients send.
type UploadInput struct {
	Name      string `json:"name"`
	MimeType  string `json:"type"`
	SizeBytes int64  `json:"size"`
	Data      string `json:"data"`
}

// PreviewDTO describes how a stored attachment should be rendered.
type PreviewDTO struct {
	Kind  enums.AttachmentKind `json:"kind"`
	Class enums.DocClass       `json:"class"`
	URL   string               `json:"url"`
	Name  string               `json:"name"`
}

// Service exposes attachment operations on item document slots.
type Service interface {
	Upload(ctx context.Context, itemID int64, kind enums.AttachmentKind, input UploadInput) (*items.ItemDTO, error)
	Delete(ctx context.Context, itemID int64, kind enums.AttachmentKind) (*items.ItemDTO, error)
	Preview(ctx context.Context, itemID int64, kind enums.AttachmentKind) (*PreviewDTO, error)
}

type service struct {
	repo  itemStore
	blobs BlobStore
	cfg   config.AttachmentsConfig
	logg  *logger.Logger
}

// NewService builds the attachment service. A nil blob store is allowed: the
// embedded payload is then persisted in the column as-is, which keeps demo
// deployments working without a bucket.
func NewService(repo itemStore, blobs BlobStore, cfg config.AttachmentsConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, blobs: blobs, cfg: cfg, logg: logg}, nil
}

func (s *service) loadItem(ctx context.Context, itemID int64) (*models.ContainerItem, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

// Upload decodes the embedded payload, stores the bytes, and patches the
// kind's column to the stored reference. A payload that fails to decode is
// treated as "no attachment": the column is cleared and a warning logged.
func (s *service) Upload(ctx context.Context, itemID int64, kind enums.AttachmentKind, input UploadInput) (*items.ItemDTO, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid attachment kind")
	}
	if strings.TrimSpace(input.Data) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "attachment data is required")
	}
	if max := s.cfg.MaxUploadBytes(); max > 0 && int64(len(input.Data)) > max*4/3+4 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("attachment exceeds %d MB limit", s.cfg.MaxUploadMB))
	}

	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithItemID(ctx, itemID)

	payload, err := base64.StdEncoding.DecodeString(input.Data)
	if err != nil {
		s.logg.Warn(ctx, "attachment payload failed base64 decode, dropping")
		return s.patchColumn(ctx, itemID, kind, nil)
	}
	if max := s.cfg.MaxUploadBytes(); max > 0 && int64(len(payload)) > max {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("attachment exceeds %d MB limit", s.cfg.MaxUploadMB))
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "attachment"
	}

	stored := &types.Attachment{Name: name, MimeType: input.MimeType, SizeBytes: int64(len(payload))}
	if s.blobs != nil {
		key := objectKey(item.ContainerName, itemID, kind, name)
		storedURL, err := s.blobs.Upload(ctx, key, input.MimeType, payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store attachment")
		}
		stored = &types.Attachment{URL: storedURL, Name: name}
	} else {
		stored.Data = base64.StdEncoding.EncodeToString(payload)
	}

	return s.patchColumn(ctx, itemID, kind, stored)
}

// Delete clears the kind's column and removes the stored blob best-effort.
func (s *service) Delete(ctx context.Context, itemID int64, kind enums.AttachmentKind) (*items.ItemDTO, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid attachment kind")
	}

	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithItemID(ctx, itemID)

	slot := item.AttachmentByKind(kind)
	if slot == nil || (*slot).Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "attachment not found")
	}

	dto, err := s.patchColumn(ctx, itemID, kind, nil)
	if err != nil {
		return nil, err
	}

	if s.blobs != nil && (*slot).IsRemote() {
		if key, ok := keyFromURL((*slot).URL); ok {
			if err := s.blobs.Delete(ctx, key); err != nil {
				s.logg.Warn(ctx, "attachment blob delete failed: "+err.Error())
			}
		}
	}
	return dto, nil
}

// Preview classifies the stored attachment for rendering.
func (s *service) Preview(ctx context.Context, itemID int64, kind enums.AttachmentKind) (*PreviewDTO, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid attachment kind")
	}

	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	slot := item.AttachmentByKind(kind)
	if slot == nil || (*slot).Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "attachment not found")
	}
	att := *slot

	return &PreviewDTO{
		Kind:  kind,
		Class: Classify(att.MimeType, att.Name),
		URL:   att.URL,
		Name:  att.Name,
	}, nil
}

func (s *service) patchColumn(ctx context.Context, itemID int64, kind enums.AttachmentKind, value *types.Attachment) (*items.ItemDTO, error) {
	columns := map[string]any{string(kind): value}
	item, err := s.repo.UpdateColumns(ctx, itemID, columns)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update attachment column")
	}
	return items.FromModel(item), nil
}

func objectKey(containerName string, itemID int64, kind enums.AttachmentKind, name string) string {
	return fmt.Sprintf("containers/%s/%d/%s/%s", containerName, itemID, kind, sanitizeName(name))
}

func sanitizeName(name string) string {
	name = path.Base(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "attachment"
	}
	return b.String()
}

// keyFromURL recovers the object key from a JSON-API media link.
func keyFromURL(rawURL string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	const marker = "/o/"
	idx := strings.Index(parsed.EscapedPath(), marker)
	if idx < 0 {
		return "", false
	}
	key, err := url.PathUnescape(parsed.EscapedPath()[idx+len(marker):])
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}
