package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

func TestScoreCustomer_Execute(t *testing.T) {
	h := newHarness(t, 0.20, newProfile(t, "C-100", consumerFeatures(50)))

	resp, err := h.score.Execute(context.Background(), dto.ScoreCustomerRequest{CustomerKey: "C-100", Actor: "analyst"})
	require.NoError(t, err)

	assert.Equal(t, "B-2", resp.Category)
	assert.Equal(t, "B2", resp.CategoryStorage)
	assert.Equal(t, "Potential", resp.Level)
	assert.Equal(t, 0.20, resp.RawProbability)
	assert.Equal(t, 0.35, resp.FinalProbability)
	assert.False(t, resp.FinalPrediction)
	assert.Equal(t, "APPROVABLE", resp.Disposition)
	assert.False(t, resp.IsHighRisk)
	assert.True(t, resp.TransitionWritten)
	assert.True(t, resp.EditWritten)

	stored := h.db.profile("C-100")
	assert.Equal(t, valueobject.CategoryB2, stored.Category())
	require.NotNil(t, stored.LastProbability())
	assert.Equal(t, 0.35, *stored.LastProbability())
	assert.Equal(t, "analyst", stored.LastScoredBy())

	transitions := h.db.transitionsFor("C-100")
	require.Len(t, transitions, 1)
	assert.True(t, transitions[0].Before().IsZero())
	assert.Equal(t, valueobject.CategoryB2, transitions[0].After())
	require.NotNil(t, transitions[0].RawProbability())
	assert.Equal(t, 0.20, *transitions[0].RawProbability())
	assert.Equal(t, 0.35, transitions[0].FinalProbability())
	assert.Equal(t, 50, transitions[0].DaysOverdue())

	edits := h.db.editsFor("C-100")
	require.Len(t, edits, 1)
	assert.Equal(t, valueobject.ActionScore, edits[0].Action())
	assert.Contains(t, edits[0].Diff().Fields(), model.FieldCategory)

	assert.Equal(t, []string{"B-2/APPROVABLE"}, h.metrics.scores)
	assert.Equal(t, []string{">B-2"}, h.metrics.transitions)
}

func TestScoreCustomer_RescoreIsIdempotentForTransitions(t *testing.T) {
	h := newHarness(t, 0.20, newProfile(t, "C-100", consumerFeatures(50)))
	ctx := context.Background()
	req := dto.ScoreCustomerRequest{CustomerKey: "C-100", Actor: "analyst"}

	first, err := h.score.Execute(ctx, req)
	require.NoError(t, err)
	second, err := h.score.Execute(ctx, req)
	require.NoError(t, err)

	assert.True(t, first.TransitionWritten)
	assert.False(t, second.TransitionWritten)
	assert.Len(t, h.db.transitionsFor("C-100"), 1)

	assert.True(t, second.ScoredAt.After(first.ScoredAt))
	stored := h.db.profile("C-100")
	require.NotNil(t, stored.LastScoredAt())
	assert.Equal(t, second.ScoredAt, *stored.LastScoredAt())

	edits := h.db.editsFor("C-100")
	require.Len(t, edits, 2)
	assert.Equal(t, []string{model.FieldLastScoredAt}, edits[0].Diff().Fields())
}

func TestScoreCustomer_HighRiskEmitsEvents(t *testing.T) {
	h := newHarness(t, 0.10, newProfile(t, "C-200", consumerFeatures(70)))

	resp, err := h.score.Execute(context.Background(), dto.ScoreCustomerRequest{CustomerKey: "C-200", Actor: "analyst"})
	require.NoError(t, err)

	assert.Equal(t, "C-1", resp.Category)
	assert.Equal(t, 0.60, resp.FinalProbability)
	assert.True(t, resp.FinalPrediction)
	assert.Equal(t, "REVIEW", resp.Disposition)
	assert.True(t, resp.IsHighRisk)

	var types []string
	for _, e := range h.db.events {
		types = append(types, e.EventType())
	}
	assert.Contains(t, types, event.EventTypeCategoryChanged)
	assert.Contains(t, types, event.EventTypeHighRiskDetected)
	assert.Contains(t, types, event.EventTypeProfileEdited)
}

func TestScoreCustomer_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid input", func(t *testing.T) {
		h := newHarness(t, 0.2)
		_, err := h.score.Execute(ctx, dto.ScoreCustomerRequest{CustomerKey: "  ", Actor: "analyst"})
		assert.ErrorIs(t, err, usecase.ErrInvalidInput)

		_, err = h.score.Execute(ctx, dto.ScoreCustomerRequest{CustomerKey: "C-1"})
		assert.ErrorIs(t, err, usecase.ErrInvalidInput)
	})

	t.Run("unknown customer", func(t *testing.T) {
		h := newHarness(t, 0.2)
		_, err := h.score.Execute(ctx, dto.ScoreCustomerRequest{CustomerKey: "missing", Actor: "analyst"})
		assert.ErrorIs(t, err, port.ErrCustomerNotFound)
		assert.NotErrorIs(t, err, usecase.ErrPersistence)
	})

	t.Run("artifact unavailable is not a persistence failure", func(t *testing.T) {
		h := newHarness(t, 0.2, newProfile(t, "C-100", consumerFeatures(50)))
		h.provider.err = errArtifactUnavailable

		_, err := h.score.Execute(ctx, dto.ScoreCustomerRequest{CustomerKey: "C-100", Actor: "analyst"})
		require.Error(t, err)
		assert.ErrorIs(t, err, errArtifactUnavailable)
		assert.NotErrorIs(t, err, usecase.ErrPersistence)
		assert.Empty(t, h.db.transitionsFor("C-100"))
		assert.Empty(t, h.db.editsFor("C-100"))
	})

	t.Run("ledger failure rolls back the state write", func(t *testing.T) {
		h := newHarness(t, 0.2, newProfile(t, "C-100", consumerFeatures(50)))
		h.db.transitionErr = errors.New("disk full")

		_, err := h.score.Execute(ctx, dto.ScoreCustomerRequest{CustomerKey: "C-100", Actor: "analyst"})
		require.Error(t, err)
		assert.ErrorIs(t, err, usecase.ErrPersistence)

		stored := h.db.profile("C-100")
		assert.True(t, stored.Category().IsZero())
		assert.Nil(t, stored.LastScoredAt())
		assert.Empty(t, h.db.editsFor("C-100"))
		assert.Empty(t, h.db.events)
		assert.Empty(t, h.metrics.scores)
	})
}

func TestScoreCustomer_ConcurrentScoresWriteOneTransition(t *testing.T) {
	h := newHarness(t, 0.20, newProfile(t, "C-100", consumerFeatures(50)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.score.Execute(context.Background(), dto.ScoreCustomerRequest{CustomerKey: "C-100", Actor: "worker"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, h.db.transitionsFor("C-100"), 1)
	assert.Len(t, h.db.editsFor("C-100"), 8)
}
