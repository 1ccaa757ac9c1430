package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

func scoredHarness(t *testing.T, prob float64) *harness {
	t.Helper()
	h := newHarness(t, prob, newProfile(t, "C-100", consumerFeatures(50)))
	_, err := h.score.Execute(context.Background(), dto.ScoreCustomerRequest{CustomerKey: "C-100", Actor: "analyst"})
	require.NoError(t, err)
	return h
}

func TestEditCustomer_Execute(t *testing.T) {
	h := scoredHarness(t, 0.20)

	resp, err := h.edit.Execute(context.Background(), dto.EditCustomerRequest{
		CustomerKey: "C-100",
		Patch:       model.FeaturePatch{DaysOverdue: intPtr(100)},
		Actor:       "officer",
		Notes:       "bureau update",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Score)
	assert.Empty(t, resp.ScoringError)
	assert.Equal(t, "D", resp.Category)
	assert.Equal(t, "Doubtful", resp.Level)
	assert.True(t, resp.IsHighRisk)
	assert.Equal(t, 0.90, resp.Score.FinalProbability)
	assert.Equal(t, "REJECT", resp.Score.Disposition)
	assert.Contains(t, resp.ChangedFields, model.FieldDaysOverdue)
	assert.Contains(t, resp.ChangedFields, model.FieldCategory)

	transitions := h.db.transitionsFor("C-100")
	require.Len(t, transitions, 2)
	assert.Equal(t, valueobject.CategoryB2, transitions[0].Before())
	assert.Equal(t, valueobject.CategoryD, transitions[0].After())
	assert.Equal(t, "officer", transitions[0].CreatedBy())

	edits := h.db.editsFor("C-100")
	require.Len(t, edits, 2)
	assert.Equal(t, valueobject.ActionEdit, edits[0].Action())
	assert.Equal(t, "bureau update", edits[0].Notes())
	change := edits[0].Diff()[model.FieldDaysOverdue]
	assert.Equal(t, 50.0, change.From)
	assert.Equal(t, 100.0, change.To)
}

func TestEditCustomer_ScoringFailureStillCommits(t *testing.T) {
	h := scoredHarness(t, 0.20)
	h.provider.err = errArtifactUnavailable

	resp, err := h.edit.Execute(context.Background(), dto.EditCustomerRequest{
		CustomerKey: "C-100",
		Patch:       model.FeaturePatch{DaysOverdue: intPtr(70)},
		Actor:       "officer",
	})
	require.NoError(t, err)

	assert.Nil(t, resp.Score)
	assert.Contains(t, resp.ScoringError, "artifact unavailable")
	assert.Equal(t, "C-1", resp.Category)
	assert.True(t, resp.IsHighRisk)

	stored := h.db.profile("C-100")
	assert.Equal(t, 70, *stored.Features().DaysOverdue)
	assert.Equal(t, valueobject.CategoryC1, stored.Category())
	require.NotNil(t, stored.LastProbability())
	assert.Equal(t, 0.35, *stored.LastProbability(), "last score is kept when only the rules ran")

	transitions := h.db.transitionsFor("C-100")
	require.Len(t, transitions, 2)
	assert.Equal(t, valueobject.CategoryC1, transitions[0].After())
	require.NotNil(t, transitions[0].RawProbability())
	assert.Equal(t, 0.20, *transitions[0].RawProbability(), "raw model output survives a rule-only edit")
	assert.Equal(t, 0.60, transitions[0].FinalProbability())
}

func TestEditCustomer_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty patch", func(t *testing.T) {
		h := scoredHarness(t, 0.2)
		_, err := h.edit.Execute(ctx, dto.EditCustomerRequest{CustomerKey: "C-100", Actor: "officer"})
		assert.ErrorIs(t, err, usecase.ErrInvalidInput)
	})

	t.Run("missing actor", func(t *testing.T) {
		h := scoredHarness(t, 0.2)
		_, err := h.edit.Execute(ctx, dto.EditCustomerRequest{
			CustomerKey: "C-100",
			Patch:       model.FeaturePatch{DaysOverdue: intPtr(1)},
		})
		assert.ErrorIs(t, err, usecase.ErrInvalidInput)
	})

	t.Run("ledger failure leaves features untouched", func(t *testing.T) {
		h := scoredHarness(t, 0.2)
		h.db.editErr = errors.New("connection reset")

		_, err := h.edit.Execute(ctx, dto.EditCustomerRequest{
			CustomerKey: "C-100",
			Patch:       model.FeaturePatch{DaysOverdue: intPtr(100)},
			Actor:       "officer",
		})
		assert.ErrorIs(t, err, usecase.ErrPersistence)

		stored := h.db.profile("C-100")
		assert.Equal(t, 50, *stored.Features().DaysOverdue)
		assert.Equal(t, valueobject.CategoryB2, stored.Category())
		assert.Len(t, h.db.transitionsFor("C-100"), 1)
	})
}
