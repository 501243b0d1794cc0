package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bodymodels "dvi/internal/body/models"
	"dvi/internal/storage"
	id "dvi/pkg/domain"
	"dvi/pkg/platform/sentinel"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, WithTxTimeout(time.Second)), mock
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: storage.ConstraintBodyLabel}, sentinel.ErrConflict},
		{"foreign key", &pgconn.PgError{Code: "23503", ConstraintName: "body_morgue_id_fkey"}, sentinel.ErrInvalidState},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, storage.ErrConcurrentModification},
		{"serialization", &pgconn.PgError{Code: "40001"}, storage.ErrConcurrentModification},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err), tt.target)
		})
	}

	t.Run("keeps the constraint name", func(t *testing.T) {
		err := mapError(&pgconn.PgError{Code: "23505", ConstraintName: storage.ConstraintClaimConfirmed})
		assert.True(t, storage.ConflictOn(err, storage.ConstraintClaimConfirmed))
	})

	t.Run("other errors pass through", func(t *testing.T) {
		boom := errors.New("boom")
		assert.Same(t, boom, mapError(boom))
	})
}

func TestRunInTx(t *testing.T) {
	t.Run("locks and updates inside one transaction", func(t *testing.T) {
		store, mock := newMock(t)
		bodyID := id.NewBodyID()
		cols := []string{"id", "label", "morgue_id", "recovery_request_id", "date_of_recovery", "recovery_details",
			"apparent_gender", "apparent_age_group", "place_of_recovery", "incomplete", "major_outward_damage",
			"burned_or_charred", "decomposed", "claim_count", "created_at", "updated_at"}

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FROM body WHERE id = $1 FOR UPDATE")).
			WithArgs(bodyID.String()).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(
				bodyID.String(), "DVI-1", nil, nil, now, "", 1, 1, "L-1",
				false, false, false, false, 0, now, now))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE body SET label = $2")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.RunInTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
			b, err := tx.LockBody(ctx, bodyID)
			if err != nil {
				return err
			}
			assert.True(t, b.Morgue.IsNil())
			assert.Equal(t, bodymodels.GenderUnknown, b.ApparentGender)
			b.Label = "DVI-2"
			return tx.UpdateBody(ctx, b)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and maps the failure", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM morgue")).
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "body_morgue_id_fkey"})
		mock.ExpectRollback()

		err := store.RunInTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
			return tx.DeleteMorgue(ctx, id.NewMorgueID())
		})
		assert.ErrorIs(t, err, sentinel.ErrInvalidState)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update of a missing row is not found", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM personal_effects")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := store.RunInTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
			return tx.DeleteEffects(ctx, id.NewBodyID())
		})
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSearchBodies(t *testing.T) {
	t.Run("escapes the pattern and pages", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM body WHERE label LIKE $1")).
			WithArgs(`%A\_%`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		got, total, err := store.SearchBodies(context.Background(), bodymodels.SearchQuery{Query: "A_", Page: 3, PageSize: 10})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Zero(t, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkAuditPublished(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox SET published_at = $2 WHERE seq = ANY($1::bigint[])")).
		WithArgs("{1,2}", now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, store.MarkAuditPublished(context.Background(), []int64{1, 2}, now))
	require.NoError(t, store.MarkAuditPublished(context.Background(), nil, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}
