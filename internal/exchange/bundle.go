package exchange

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"github.com/cargodesk/cargodesk-backend/internal/attachments"
	"github.com/cargodesk/cargodesk-backend/pkg/db/models"
	"github.com/cargodesk/cargodesk-backend/pkg/db/types"
	"github.com/cargodesk/cargodesk-backend/pkg/enums"
)

// buildBundle zips the workbook plus one folder per attachment-bearing row.
// Attachment bytes are fetched sequentially; a row whose blob cannot be
// produced is logged and skipped so the export always completes.
func (s *service) buildBundle(ctx context.Context, workbookName string, workbook []byte, rows []models.ContainerItem) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entry, err := zw.Create(workbookName)
	if err != nil {
		return nil, err
	}
	if _, err := entry.Write(workbook); err != nil {
		return nil, err
	}

	for i := range rows {
		row := &rows[i]
		docs := row.Attachments()
		if len(docs) == 0 {
			continue
		}
		folder := folderName(row)
		seen := map[string]bool{}

		for _, kind := range enums.AllAttachmentKinds() {
			att, ok := docs[kind]
			if !ok {
				continue
			}
			payload, err := s.attachmentBytes(ctx, att)
			if err != nil {
				s.logg.Warn(s.logg.WithItemID(ctx, row.ID),
					fmt.Sprintf("skipping %s attachment in bundle: %v", kind, err))
				continue
			}
			name := entryName(att, kind, seen)
			w, err := zw.Create(folder + "/" + name)
			if err != nil {
				return nil, err
			}
			if _, err := w.Write(payload); err != nil {
				return nil, err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *service) attachmentBytes(ctx context.Context, att *types.Attachment) ([]byte, error) {
	if att.IsEmbedded() {
		payload, err := base64.StdEncoding.DecodeString(att.Data)
		if err != nil {
			return nil, fmt.Errorf("decode embedded payload: %w", err)
		}
		return payload, nil
	}
	if !att.IsRemote() {
		return nil, fmt.Errorf("attachment has no payload")
	}
	if s.blobs == nil {
		return nil, fmt.Errorf("no blob store configured")
	}

	fetchCtx := ctx
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}
	return s.blobs.DownloadURL(fetchCtx, att.URL)
}

func entryName(att *types.Attachment, kind enums.AttachmentKind, seen map[string]bool) string {
	name := strings.TrimSpace(att.Name)
	if name == "" {
		name = string(kind)
	}
	if path.Ext(name) == "" {
		name += attachments.ExtensionForMime(att.MimeType)
	}
	if seen[name] {
		name = string(kind) + "_" + name
	}
	seen[name] = true
	return name
}

// folderName sanitizes the reference code down to filesystem-safe runes,
// falling back to the row id.
func folderName(row *models.ContainerItem) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(row.ReferenceCode) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("item-%d", row.ID)
	}
	return b.String()
}
