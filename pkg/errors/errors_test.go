package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("disk full")
	err := Wrap(CodeDependency, cause, "write attachment")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped error should match its cause")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", err.Code())
	}
	if err.Error() != "DEPENDENCY_ERROR: write attachment" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeConflict, "container exists")
	outer := fmt.Errorf("creating container: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error in chain")
	}
	if typed.Code() != CodeConflict {
		t.Fatalf("expected conflict, got %s", typed.Code())
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", meta.HTTPStatus)
	}
}

func TestReadOnlyMetadata(t *testing.T) {
	meta := MetadataFor(CodeReadOnly)
	if meta.HTTPStatus != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", meta.HTTPStatus)
	}
	if meta.Retryable {
		t.Fatal("read-only violations are not retryable")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeInternal, stdErrors.New("root"), "top")
	dump := Dump(err)
	if dump.Code != CodeInternal {
		t.Fatalf("expected internal code, got %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected chain of at least 2, got %d", len(dump.Chain))
	}
}
