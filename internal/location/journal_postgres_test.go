package location

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "dvi/pkg/domain"
	"dvi/pkg/platform/sentinel"
	"dvi/pkg/platform/tx"
)

func TestPostgresJournalJoinsTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	j := NewPostgresJournal(db)
	j.now = func() time.Time { return at }

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO presence_event`)).
		WithArgs("body:1", "L1", at, at).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(7)))
	mock.ExpectCommit()

	err = tx.Run(context.Background(), db, nil, func(ctx context.Context, _ *sql.Tx) error {
		p, err := j.Append(ctx, "body:1", "L1", at)
		require.NoError(t, err)
		assert.Equal(t, int64(7), p.Seq)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresJournalCurrent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	j := NewPostgresJournal(db)
	at := time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY at DESC, seq DESC LIMIT 1`)).
		WithArgs("body:1").
		WillReturnRows(sqlmock.NewRows([]string{"seq", "location", "at", "recorded_at"}).AddRow(int64(3), "M2", at, at))
	p, err := j.Current(context.Background(), "body:1")
	require.NoError(t, err)
	assert.Equal(t, id.LocationRef("M2"), p.Location)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY at DESC, seq DESC LIMIT 1`)).
		WithArgs("body:2").
		WillReturnRows(sqlmock.NewRows([]string{"seq", "location", "at", "recorded_at"}))
	_, err = j.Current(context.Background(), "body:2")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
