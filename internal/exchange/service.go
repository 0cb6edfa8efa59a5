package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cargodesk/cargodesk-backend/internal/items"
	"github.com/cargodesk/cargodesk-backend/pkg/config"
	"github.com/cargodesk/cargodesk-backend/pkg/db/models"
	pkgerrors "github.com/cargodesk/cargodesk-backend/pkg/errors"
	"github.com/cargodesk/cargodesk-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	bundleContentType   = "application/zip"
)

type itemReader interface {
	ListByContainer(ctx context.Context, containerName string) ([]models.ContainerItem, error)
}

type itemWriter interface {
	Create(ctx context.Context, containerName string, input items.CreateItemDTO) (*items.ItemDTO, error)
	DeleteByContainer(ctx context.Context, containerName string) error
}

type containerFinder interface {
	FindByName(ctx context.Context, name string) (*models.Container, error)
}

// BlobFetcher pulls attachment bytes for bundle entries that only carry a
// storage URL.
type BlobFetcher interface {
	DownloadURL(ctx context.Context, rawURL string) ([]byte, error)
}

// ExportResult is the rendered artifact: a plain workbook, or a zip bundle
// when at least one row carries an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Bundled     bool
}

// ImportResult reports a completed import.
type ImportResult struct {
	Mode    ImportMode `json:"mode"`
	Created int        `json:"created"`
}

// Service exposes spreadsheet export and import.
type Service interface {
	Export(ctx context.Context, containerName string) (*ExportResult, error)
	Import(ctx context.Context, containerName string, mode ImportMode, workbook []byte) (*ImportResult, error)
}

type service struct {
	reader       itemReader
	writer       itemWriter
	containers   containerFinder
	blobs        BlobFetcher
	logg         *logger.Logger
	fetchTimeout time.Duration
}

// NewService builds the exchange service. A nil blob fetcher only disables
// remote attachment bytes in bundles; embedded payloads still bundle.
func NewService(reader itemReader, writer itemWriter, containers containerFinder, blobs BlobFetcher, cfg config.AttachmentsConfig, logg *logger.Logger) (Service, error) {
	if reader == nil {
		return nil, fmt.Errorf("item reader required")
	}
	if writer == nil {
		return nil, fmt.Errorf("item writer required")
	}
	if containers == nil {
		return nil, fmt.Errorf("container repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		reader:       reader,
		writer:       writer,
		containers:   containers,
		blobs:        blobs,
		logg:         logg,
		fetchTimeout: cfg.FetchTimeout,
	}, nil
}

func (s *service) requireContainer(ctx context.Context, name string) error {
	if _, err := s.containers.FindByName(ctx, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "container not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load container")
	}
	return nil
}

func (s *service) Export(ctx context.Context, containerName string) (*ExportResult, error) {
	if err := s.requireContainer(ctx, containerName); err != nil {
		return nil, err
	}
	ctx = s.logg.WithContainer(ctx, containerName)

	rows, err := s.reader.ListByContainer(ctx, containerName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}

	workbook, err := buildWorkbook(containerName, rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render workbook")
	}

	workbookName := containerName + " CBM & PI.xlsx"

	hasAttachments := false
	for i := range rows {
		if len(rows[i].Attachments()) > 0 {
			hasAttachments = true
			break
		}
	}
	if !hasAttachments {
		return &ExportResult{
			Filename:    workbookName,
			ContentType: workbookContentType,
			Data:        workbook,
		}, nil
	}

	bundle, err := s.buildBundle(ctx, workbookName, workbook, rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render bundle")
	}
	return &ExportResult{
		Filename:    containerName + " CBM & PI.zip",
		ContentType: bundleContentType,
		Data:        bundle,
		Bundled:     true,
	}, nil
}

// Import creates one row per workbook line, sequentially. The operation is
// non-transactional: a mid-way failure reports how many rows landed.
func (s *service) Import(ctx context.Context, containerName string, mode ImportMode, workbook []byte) (*ImportResult, error) {
	if err := s.requireContainer(ctx, containerName); err != nil {
		return nil, err
	}
	ctx = s.logg.WithContainer(ctx, containerName)

	drafts, err := parseWorkbook(workbook)
	if err != nil {
		return nil, err
	}

	if mode == ImportModeReplace {
		if err := s.writer.DeleteByContainer(ctx, containerName); err != nil {
			return nil, err
		}
	}

	created := 0
	for _, draft := range drafts {
		if _, err := s.writer.Create(ctx, containerName, draft); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "import row").
				WithDetails(map[string]any{"rows_created": created})
		}
		created++
	}

	s.logg.Info(ctx, fmt.Sprintf("imported %d rows (%s mode)", created, mode))
	return &ImportResult{Mode: mode, Created: created}, nil
}
