package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/lifetrack/domain"
)

type recordingDB struct {
	args []any
}

func (r *recordingDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	r.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *recordingDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func TestAppendFillsDefaults(t *testing.T) {
	db := &recordingDB{}
	repo := NewActivityRepository(db)

	event := &domain.ActivityEvent{Namespace: "oid-1", Kind: domain.ActivityBalanceBonus, Points: 50}
	require.NoError(t, repo.Append(context.Background(), event))

	assert.NotEmpty(t, event.ID)
	require.Len(t, db.args, 8)
	assert.Equal(t, "balance_bonus", db.args[2])
	assert.Nil(t, db.args[3], "no category")
	assert.Nil(t, db.args[6], "no metadata")
	assert.Nil(t, db.args[7], "database clock")
}

func TestAppendRejectsEmptyKind(t *testing.T) {
	err := NewActivityRepository(&recordingDB{}).Append(context.Background(), &domain.ActivityEvent{})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, 100, clampLimit(0))
	assert.Equal(t, 25, clampLimit(25))
	assert.Equal(t, 100, clampLimit(1000))
	now := time.Now()
	assert.Equal(t, now, nullTime(now))
	assert.JSONEq(t, `{"level":"3"}`, string(marshalMap(map[string]string{"level": "3"})))
}
