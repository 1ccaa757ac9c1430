package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/port"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// GetHistory pages through a customer's ledgers, newest first.
type GetHistory struct {
	history port.HistoryRepository
}

// NewGetHistory creates a new GetHistory use case.
func NewGetHistory(history port.HistoryRepository) *GetHistory {
	return &GetHistory{history: history}
}

// Transitions lists category transitions.
func (uc *GetHistory) Transitions(ctx context.Context, req dto.HistoryRequest) ([]dto.TransitionResponse, error) {
	key, limit, offset, err := pageParams(req)
	if err != nil {
		return nil, err
	}
	records, err := uc.history.ListTransitions(ctx, key, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}
	out := make([]dto.TransitionResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.FromTransition(r))
	}
	return out, nil
}

// Edits lists field edits.
func (uc *GetHistory) Edits(ctx context.Context, req dto.HistoryRequest) ([]dto.FieldEditResponse, error) {
	key, limit, offset, err := pageParams(req)
	if err != nil {
		return nil, err
	}
	records, err := uc.history.ListEdits(ctx, key, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list field edits: %w", err)
	}
	out := make([]dto.FieldEditResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.FromFieldEdit(r))
	}
	return out, nil
}

func pageParams(req dto.HistoryRequest) (string, int, int, error) {
	key := strings.TrimSpace(req.CustomerKey)
	if key == "" {
		return "", 0, 0, invalidInput("customer key is required")
	}
	if req.Offset < 0 {
		return "", 0, 0, invalidInput("offset must not be negative")
	}
	limit := req.Limit
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	return key, limit, req.Offset, nil
}
