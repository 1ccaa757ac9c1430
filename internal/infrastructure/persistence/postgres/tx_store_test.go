package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

type execQuerier struct {
	err  error
	sql  []string
	args [][]any
}

func (q *execQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (q *execQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (q *execQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.sql = append(q.sql, sql)
	q.args = append(q.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), q.err
}

func testTransition(t *testing.T, ruleOnly bool) model.CategoryTransition {
	t.Helper()
	tr, err := model.NewCategoryTransition("C-1", valueobject.CategoryA1, model.RiskAssessment{
		Category:         valueobject.CategoryC1,
		Level:            valueobject.CategoryC1.Level(),
		CreditType:       "CONSUMO",
		DaysOverdue:      70,
		RawProbability:   0.2,
		FinalProbability: 0.6,
		RuleOnly:         ruleOnly,
	}, "tester", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return tr
}

func TestAppendTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("writes raw values when scored", func(t *testing.T) {
		q := &execQuerier{}
		require.NoError(t, (&txStore{q: q}).AppendTransition(ctx, testTransition(t, false)))
		require.Len(t, q.args, 1)
		args := q.args[0]
		require.Len(t, args, 12)
		assert.Equal(t, "C1", args[3])
		raw, ok := args[7].(*float64)
		require.True(t, ok)
		require.NotNil(t, raw)
		assert.Equal(t, 0.2, *raw)
		assert.Equal(t, 0.6, args[8])
	})

	t.Run("rule-only transition writes null raw values", func(t *testing.T) {
		q := &execQuerier{}
		require.NoError(t, (&txStore{q: q}).AppendTransition(ctx, testTransition(t, true)))
		assert.Nil(t, q.args[0][7])
		assert.Nil(t, q.args[0][9])
	})

	t.Run("unique violation maps to ErrDuplicateRecord", func(t *testing.T) {
		q := &execQuerier{err: &pgconn.PgError{Code: "23505"}}
		err := (&txStore{q: q}).AppendTransition(ctx, testTransition(t, false))
		require.Error(t, err)
		assert.ErrorIs(t, err, port.ErrDuplicateRecord)
	})

	t.Run("other failures keep the driver error", func(t *testing.T) {
		cause := &pgconn.PgError{Code: "23514"}
		q := &execQuerier{err: cause}
		err := (&txStore{q: q}).AppendTransition(ctx, testTransition(t, false))
		require.Error(t, err)
		assert.NotErrorIs(t, err, port.ErrDuplicateRecord)
		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
		assert.Equal(t, "23514", pgErr.Code)
	})
}
