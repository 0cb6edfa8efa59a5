package exchange

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"sort"
	"testing"

	"github.com/cargodesk/cargodesk-backend/pkg/db/models"
	"github.com/cargodesk/cargodesk-backend/pkg/db/types"
)

func bundleEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	entries := map[string][]byte{}
	for _, file := range zr.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", file.Name, err)
		}
		payload, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", file.Name, err)
		}
		entries[file.Name] = payload
	}
	return entries
}

func TestExportWithAttachmentsProducesBundle(t *testing.T) {
	rows := sampleRows()
	rows[0].HBL = &types.Attachment{
		URL:  "https://storage.googleapis.com/storage/v1/b/test/o/hbl.pdf?alt=media",
		Name: "bill.pdf",
	}
	rows[0].PackingList = &types.Attachment{
		Name:     "packing list",
		MimeType: "application/pdf",
		Data:     base64.StdEncoding.EncodeToString([]byte("embedded-bytes")),
	}

	fetcher := &stubFetcher{payloads: map[string][]byte{
		"https://storage.googleapis.com/storage/v1/b/test/o/hbl.pdf?alt=media": []byte("remote-bytes"),
	}}
	reader := &stubReader{rows: map[string][]models.ContainerItem{"MSKU-204": rows}}
	svc, _ := newTestService(t, reader, fetcher)

	result, err := svc.Export(context.Background(), "MSKU-204")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !result.Bundled {
		t.Fatal("expected a zip bundle")
	}
	if result.Filename != "MSKU-204 CBM & PI.zip" {
		t.Fatalf("unexpected filename %q", result.Filename)
	}
	if result.ContentType != bundleContentType {
		t.Fatalf("unexpected content type %q", result.ContentType)
	}

	entries := bundleEntries(t, result.Data)

	var names []string
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	want := []string{
		"MSKU-204 CBM & PI.xlsx",
		"REF-001/bill.pdf",
		"REF-001/packing list.pdf",
	}
	if len(names) != len(want) {
		t.Fatalf("unexpected entries %v", names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("entry %d: want %q got %q", i, name, names[i])
		}
	}
	if string(entries["REF-001/bill.pdf"]) != "remote-bytes" {
		t.Fatal("remote attachment bytes missing")
	}
	if string(entries["REF-001/packing list.pdf"]) != "embedded-bytes" {
		t.Fatal("embedded attachment bytes missing")
	}
}

func TestBundleSkipsFailedFetches(t *testing.T) {
	rows := sampleRows()
	rows[0].HBL = &types.Attachment{URL: "https://example.com/gone.pdf", Name: "gone.pdf"}
	rows[1].Payment = &types.Attachment{
		Name: "wire.pdf",
		Data: base64.StdEncoding.EncodeToString([]byte("ok")),
	}

	reader := &stubReader{rows: map[string][]models.ContainerItem{"MSKU-204": rows}}
	svc, _ := newTestService(t, reader, &stubFetcher{payloads: map[string][]byte{}})

	result, err := svc.Export(context.Background(), "MSKU-204")
	if err != nil {
		t.Fatalf("export should survive fetch failures: %v", err)
	}
	entries := bundleEntries(t, result.Data)

	if _, ok := entries["REF-001/gone.pdf"]; ok {
		t.Fatal("failed fetch should be skipped")
	}
	if _, ok := entries["REF-002/wire.pdf"]; !ok {
		t.Fatalf("surviving attachment missing, entries: %v", entries)
	}
}

func TestFolderNameSanitizesReferenceCode(t *testing.T) {
	row := &models.ContainerItem{ID: 9, ReferenceCode: "REF 001/β"}
	if got := folderName(row); got != "REF_001__" {
		t.Fatalf("unexpected folder %q", got)
	}
	row.ReferenceCode = "   "
	if got := folderName(row); got != "item-9" {
		t.Fatalf("expected id fallback, got %q", got)
	}
	// Dashes and underscores are filesystem-safe and stay put.
	row.ReferenceCode = "REF-001_b"
	if got := folderName(row); got != "REF-001_b" {
		t.Fatalf("separators should survive, got %q", got)
	}
}
