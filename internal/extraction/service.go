package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cargodesk/cargodesk-backend/internal/items"
	"github.com/cargodesk/cargodesk-backend/pkg/config"
	"github.com/cargodesk/cargodesk-backend/pkg/enums"
	pkgerrors "github.com/cargodesk/cargodesk-backend/pkg/errors"
	"github.com/cargodesk/cargodesk-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

const systemPrompt = `You read supplier and freight-forwarder emails and extract one shipment line.
Reply with a single JSON object using exactly these keys, all values as strings:
reference_code, supplier, cbm, cartons, gross_weight, product_cost, freight_cost,
awaiting, production_days, production_ready, status, client.
awaiting is a comma-separated list of things still pending, or "-" when nothing is.
status is one of: ready_to_ship, awaiting_supplier, need_payment, pending.
Use an empty string for anything the email does not state. Never invent values.`

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// DraftRowDTO is the extracted shipment line. Numbers go through the same
// zero-fill coercion as imports, so the draft can be posted as-is.
type DraftRowDTO struct {
	ReferenceCode   string           `json:"reference_code"`
	Supplier        string           `json:"supplier"`
	CBM             decimal.Decimal  `json:"cbm"`
	Cartons         int              `json:"cartons"`
	GrossWeight     decimal.Decimal  `json:"gross_weight"`
	ProductCost     decimal.Decimal  `json:"product_cost"`
	FreightCost     decimal.Decimal  `json:"freight_cost"`
	Awaiting        []string         `json:"awaiting"`
	ProductionDays  int              `json:"production_days"`
	ProductionReady string           `json:"production_ready"`
	Status          enums.ItemStatus `json:"status"`
	Client          string           `json:"client"`
}

// Service turns raw email text into a draft item row.
type Service interface {
	Extract(ctx context.Context, emailText string) (*DraftRowDTO, error)
	Enabled() bool
}

type service struct {
	chat  chatClient
	model string
	logg  *logger.Logger
}

// NewService builds the extraction service. Without an API key the service
// constructs but Extract reports the dependency as unavailable.
func NewService(cfg config.OpenAIConfig, logg *logger.Logger) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{model: cfg.Model, logg: logg}
	if cfg.Enabled() {
		svc.chat = openai.NewClient(cfg.APIKey)
	}
	return svc, nil
}

// NewServiceWithClient injects a chat client directly; tests use it.
func NewServiceWithClient(chat chatClient, model string, logg *logger.Logger) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{chat: chat, model: model, logg: logg}, nil
}

func (s *service) Enabled() bool {
	return s.chat != nil
}

func (s *service) Extract(ctx context.Context, emailText string) (*DraftRowDTO, error) {
	if s.chat == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "email extraction is not configured")
	}
	emailText = strings.TrimSpace(emailText)
	if emailText == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email_text is required")
	}

	resp, err := s.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: emailText},
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "extraction request failed")
	}
	if len(resp.Choices) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "extraction returned no choices")
	}

	draft, err := parseDraft(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "extraction returned malformed row")
	}
	s.logg.Info(ctx, "extracted draft row from email")
	return draft, nil
}

// rawDraft matches the all-strings JSON contract of the prompt.
type rawDraft struct {
	ReferenceCode   string `json:"reference_code"`
	Supplier        string `json:"supplier"`
	CBM             string `json:"cbm"`
	Cartons         string `json:"cartons"`
	GrossWeight     string `json:"gross_weight"`
	ProductCost     string `json:"product_cost"`
	FreightCost     string `json:"freight_cost"`
	Awaiting        string `json:"awaiting"`
	ProductionDays  string `json:"production_days"`
	ProductionReady string `json:"production_ready"`
	Status          string `json:"status"`
	Client          string `json:"client"`
}

func parseDraft(content string) (*DraftRowDTO, error) {
	var raw rawDraft
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, err
	}

	awaiting := []string{}
	for _, part := range strings.Split(raw.Awaiting, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			awaiting = append(awaiting, trimmed)
		}
	}
	if len(awaiting) == 0 {
		awaiting = []string{"-"}
	}

	return &DraftRowDTO{
		ReferenceCode:   strings.TrimSpace(raw.ReferenceCode),
		Supplier:        strings.TrimSpace(raw.Supplier),
		CBM:             items.CoerceDecimal(raw.CBM),
		Cartons:         items.CoerceInt(raw.Cartons),
		GrossWeight:     items.CoerceDecimal(raw.GrossWeight),
		ProductCost:     items.CoerceDecimal(raw.ProductCost),
		FreightCost:     items.CoerceDecimal(raw.FreightCost),
		Awaiting:        awaiting,
		ProductionDays:  items.CoerceInt(raw.ProductionDays),
		ProductionReady: strings.TrimSpace(raw.ProductionReady),
		Status:          enums.ItemStatusOrDefault(strings.TrimSpace(raw.Status)),
		Client:          strings.TrimSpace(raw.Client),
	}, nil
}
