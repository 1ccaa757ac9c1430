package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/pkg/kafka"
)

// Ingester applies one feature update.
type Ingester interface {
	Execute(ctx context.Context, req usecase.IngestFeaturesRequest) error
}

// FeaturesMessage is the JSON payload of a customer.features.updated message.
type FeaturesMessage struct {
	CustomerKey        string              `json:"customer_key"`
	ContrastRating     string              `json:"contrast_rating"`
	Office             string              `json:"office"`
	CreditType         string              `json:"credit_type"`
	Guarantee          string              `json:"guarantee"`
	Sex                string              `json:"sex"`
	TotalAmount        decimal.NullDecimal `json:"total_amount"`
	TotalBalance       decimal.NullDecimal `json:"total_balance"`
	TechnicalEquity    decimal.NullDecimal `json:"technical_equity"`
	Operations         *int                `json:"n_operations"`
	ActiveOperations   *int                `json:"n_active"`
	AvgTerm            *float64            `json:"avg_term"`
	AvgRate            *float64            `json:"avg_rate"`
	MaxTenureDays      *int                `json:"max_tenure_days"`
	DaysToLastMaturity *int                `json:"days_to_last_maturity"`

	// MaxDaysOverdue may arrive as a number or as free text.
	MaxDaysOverdue json.RawMessage `json:"max_days_overdue"`
}

// FeaturesHandler turns feature messages into IngestFeatures calls.
type FeaturesHandler struct {
	ingest Ingester
	logger *slog.Logger
}

// NewFeaturesHandler creates a new FeaturesHandler.
func NewFeaturesHandler(ingest Ingester, logger *slog.Logger) *FeaturesHandler {
	return &FeaturesHandler{ingest: ingest, logger: logger}
}

// Handle is a kafka.Handler. Malformed payloads are logged and dropped;
// ingestion failures are returned so the message is not committed.
func (h *FeaturesHandler) Handle(ctx context.Context, msg kafka.Message) error {
	req, err := DecodeFeatures(msg.Value)
	if err != nil {
		h.logger.Warn("dropping malformed features message",
			slog.String("key", string(msg.Key)),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if req.CustomerKey == "" {
		req.CustomerKey = string(msg.Key)
	}

	if err := h.ingest.Execute(ctx, req); err != nil {
		return fmt.Errorf("failed to ingest features for %s: %w", req.CustomerKey, err)
	}
	return nil
}

// DecodeFeatures parses a FeaturesMessage payload.
func DecodeFeatures(data []byte) (usecase.IngestFeaturesRequest, error) {
	var m FeaturesMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return usecase.IngestFeaturesRequest{}, fmt.Errorf("decode features message: %w", err)
	}
	return usecase.IngestFeaturesRequest{
		CustomerKey:    m.CustomerKey,
		ContrastRating: m.ContrastRating,
		Features: model.Features{
			TotalAmount:        m.TotalAmount,
			TotalBalance:       m.TotalBalance,
			TechnicalEquity:    m.TechnicalEquity,
			Operations:         m.Operations,
			ActiveOperations:   m.ActiveOperations,
			AvgTermMonths:      m.AvgTerm,
			AvgRate:            m.AvgRate,
			MaxTenureDays:      m.MaxTenureDays,
			DaysToLastMaturity: m.DaysToLastMaturity,
			DaysOverdue:        daysOverdue(m.MaxDaysOverdue),
			Office:             m.Office,
			CreditType:         m.CreditType,
			GuaranteeType:      m.Guarantee,
			Sex:                m.Sex,
		},
	}, nil
}

func daysOverdue(raw json.RawMessage) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	text := string(raw)
	if raw[0] == '"' {
		if s, err := strconv.Unquote(text); err == nil {
			text = s
		}
	}
	d := service.ParseDaysOverdue(text)
	return &d
}
