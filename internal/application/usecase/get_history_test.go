package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

func TestGetHistory_Paging(t *testing.T) {
	tests := []struct {
		name       string
		req        dto.HistoryRequest
		wantLimit  int
		wantOffset int
		wantErr    bool
	}{
		{name: "defaults", req: dto.HistoryRequest{CustomerKey: "C-1"}, wantLimit: 50},
		{name: "explicit", req: dto.HistoryRequest{CustomerKey: "C-1", Limit: 10, Offset: 20}, wantLimit: 10, wantOffset: 20},
		{name: "clamped", req: dto.HistoryRequest{CustomerKey: "C-1", Limit: 10000}, wantLimit: 500},
		{name: "negative offset", req: dto.HistoryRequest{CustomerKey: "C-1", Offset: -1}, wantErr: true},
		{name: "missing key", req: dto.HistoryRequest{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &historyStub{}
			uc := usecase.NewGetHistory(stub)

			_, err := uc.Transitions(context.Background(), tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, usecase.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "C-1", stub.gotKey)
			assert.Equal(t, tt.wantLimit, stub.gotLimit)
			assert.Equal(t, tt.wantOffset, stub.gotOffset)
		})
	}
}

func TestGetHistory_MapsRecords(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	stub := &historyStub{
		transitions: []model.CategoryTransition{
			model.ReconstructCategoryTransition(
				uuid.New(), "C-1", valueobject.CategoryB2, valueobject.CategoryC1, valueobject.LevelDeficient,
				70, "CONSUMO", floatPtr(0.2), 0.6, boolPtr(false), at, "analyst",
			),
		},
	}
	uc := usecase.NewGetHistory(stub)

	out, err := uc.Transitions(context.Background(), dto.HistoryRequest{CustomerKey: "C-1"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "B-2", out[0].CategoryBefore)
	assert.Equal(t, "C-1", out[0].CategoryAfter)
	assert.Equal(t, 0.6, out[0].FinalProbability)

	stub.err = errors.New("boom")
	_, err = uc.Edits(context.Background(), dto.HistoryRequest{CustomerKey: "C-1"})
	assert.Error(t, err)
}
