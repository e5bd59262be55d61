package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/lifetrack/domain"
	"github.com/fastygo/lifetrack/repository"
)

// DB is the subset of pgxpool.Pool used by the repository.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type activityRepository struct {
	db DB
}

// NewActivityRepository creates a Postgres-backed activity ledger.
func NewActivityRepository(db DB) repository.ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Append(ctx context.Context, event *domain.ActivityEvent) error {
	if event == nil || event.Kind == "" {
		return domain.ErrInvalidPayload
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO activity_events (id, namespace, kind, category_id, goal_id, points, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
	`

	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.Namespace,
		string(event.Kind),
		nullInt(event.CategoryID),
		nullInt(event.GoalID),
		event.Points,
		marshalMap(event.Metadata),
		nullTime(event.CreatedAt),
	)
	return err
}

func (r *activityRepository) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.ActivityEvent, error) {
	const query = `
	SELECT id, namespace, kind, COALESCE(category_id, 0), COALESCE(goal_id, 0), points, metadata, created_at
	FROM activity_events
	WHERE namespace = $1
	  AND ($2::text = '' OR kind = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, filter.Namespace, filter.Kind, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.ActivityEvent
	for rows.Next() {
		event, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func scanActivity(row interface {
	Scan(dest ...interface{}) error
}) (*domain.ActivityEvent, error) {
	var (
		event    domain.ActivityEvent
		kind     string
		metadata []byte
	)

	if err := row.Scan(
		&event.ID,
		&event.Namespace,
		&kind,
		&event.CategoryID,
		&event.GoalID,
		&event.Points,
		&metadata,
		&event.CreatedAt,
	); err != nil {
		return nil, err
	}

	event.Kind = domain.ActivityKind(kind)
	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &event.Metadata)
	}
	return &event, nil
}
