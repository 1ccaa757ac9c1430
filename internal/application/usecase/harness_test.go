package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/service"
)

type harness struct {
	db        *memDB
	provider  *stubProvider
	metrics   *recordingMetrics
	clock     *stepClock
	recorder  *usecase.AuditRecorder
	score     *usecase.ScoreCustomer
	edit      *usecase.EditCustomer
	reconcile *usecase.ReconcileCategories
	ingest    *usecase.IngestFeatures
}

func newHarness(t *testing.T, prob float64, profiles ...*model.CustomerProfile) *harness {
	t.Helper()

	h := &harness{
		db: newMemDB(profiles...),
		provider: &stubProvider{artifact: &stubArtifact{
			columns:   []string{model.ColOperations, model.ColCreditTypeMode},
			threshold: 0.5,
			prob:      prob,
		}},
		metrics: &recordingMetrics{},
		clock:   &stepClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)},
	}
	logger := discardLogger()
	scorer := service.NewScoringOrchestrator(h.provider, logger)

	h.recorder = usecase.NewAuditRecorder(h.db, h.clock, h.metrics, logger)
	h.score = usecase.NewScoreCustomer(h.db, scorer, h.recorder, h.clock, h.metrics, logger)
	h.edit = usecase.NewEditCustomer(h.db, scorer, h.recorder, h.clock, logger)
	h.reconcile = usecase.NewReconcileCategories(h.db, h.db, h.recorder, logger)
	h.ingest = usecase.NewIngestFeatures(h.db, h.score, h.edit, h.clock, logger)
	return h
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func consumerFeatures(days int) model.Features {
	return model.Features{
		Operations:  intPtr(3),
		CreditType:  "CONSUMO",
		Office:      "MATRIZ",
		DaysOverdue: intPtr(days),
	}
}

func newProfile(t *testing.T, key string, f model.Features) *model.CustomerProfile {
	t.Helper()
	p, err := model.NewCustomerProfile(key, f, "", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return p
}
