package repository

import (
	"context"

	"github.com/fastygo/lifetrack/domain"
)

type ActivityFilter struct {
	Namespace string
	Kind      string
	Limit     int
	Offset    int
}

type ActivityRepository interface {
	Append(ctx context.Context, event *domain.ActivityEvent) error
	List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityEvent, error)
}
