package extraction

import (
	"context"
	"errors"
	"io"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cargodesk/cargodesk-backend/pkg/config"
	"github.com/cargodesk/cargodesk-backend/pkg/enums"
	pkgerrors "github.com/cargodesk/cargodesk-backend/pkg/errors"
	"github.com/cargodesk/cargodesk-backend/pkg/logger"
)

type stubChat struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (s *stubChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestExtractParsesDraftRow(t *testing.T) {
	chat := &stubChat{content: `{
		"reference_code": "REF-001",
		"supplier": "Acme",
		"cbm": "12.5",
		"cartons": "40",
		"gross_weight": "820",
		"product_cost": "15,000",
		"freight_cost": "1200.50",
		"awaiting": "final invoice, samples",
		"production_days": "14",
		"production_ready": "2026-09-15",
		"status": "awaiting_supplier",
		"client": "Globex"
	}`}
	svc, err := NewServiceWithClient(chat, "test-model", testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	draft, err := svc.Extract(context.Background(), "Hi, the goods are almost ready...")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if draft.ReferenceCode != "REF-001" || draft.Supplier != "Acme" {
		t.Fatalf("unexpected draft: %+v", draft)
	}
	if draft.CBM.String() != "12.5" {
		t.Fatalf("cbm: %s", draft.CBM)
	}
	if draft.ProductCost.String() != "15000" {
		t.Fatalf("product cost: %s", draft.ProductCost)
	}
	if len(draft.Awaiting) != 2 || draft.Awaiting[0] != "final invoice" {
		t.Fatalf("awaiting: %v", draft.Awaiting)
	}
	if draft.Status != enums.ItemStatusAwaitingSupplier {
		t.Fatalf("status: %s", draft.Status)
	}
	if chat.lastReq.ResponseFormat == nil ||
		chat.lastReq.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Fatal("expected JSON-object response format on the request")
	}
	if chat.lastReq.Model != "test-model" {
		t.Fatalf("model: %s", chat.lastReq.Model)
	}
}

func TestExtractCoercesBadNumbersToZero(t *testing.T) {
	chat := &stubChat{content: `{"cbm": "around ten", "cartons": "a few", "status": "maybe"}`}
	svc, _ := NewServiceWithClient(chat, "m", testLogger())

	draft, err := svc.Extract(context.Background(), "vague email")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !draft.CBM.IsZero() || draft.Cartons != 0 {
		t.Fatalf("expected zero-fill, got %+v", draft)
	}
	if draft.Status != enums.ItemStatusPending {
		t.Fatalf("expected pending default, got %s", draft.Status)
	}
	if len(draft.Awaiting) != 1 || draft.Awaiting[0] != "-" {
		t.Fatalf("expected awaiting sentinel, got %v", draft.Awaiting)
	}
}

func TestExtractUnconfiguredIsDependencyError(t *testing.T) {
	svc, err := NewService(config.OpenAIConfig{}, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if svc.Enabled() {
		t.Fatal("expected disabled service without api key")
	}

	_, gotErr := svc.Extract(context.Background(), "email")
	typed := pkgerrors.As(gotErr)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", gotErr)
	}
	if pkgerrors.MetadataFor(typed.Code()).HTTPStatus != 503 {
		t.Fatal("dependency errors should map to 503")
	}
}

func TestExtractEmptyEmailRejected(t *testing.T) {
	svc, _ := NewServiceWithClient(&stubChat{content: "{}"}, "m", testLogger())

	_, err := svc.Extract(context.Background(), "   ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExtractUpstreamFailure(t *testing.T) {
	svc, _ := NewServiceWithClient(&stubChat{err: errors.New("rate limited")}, "m", testLogger())

	_, err := svc.Extract(context.Background(), "email")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestExtractMalformedJSON(t *testing.T) {
	svc, _ := NewServiceWithClient(&stubChat{content: "sorry, I can't"}, "m", testLogger())

	_, err := svc.Extract(context.Background(), "email")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
