package activity

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/lifetrack/domain"
	"github.com/fastygo/lifetrack/repository"
)

// UseCase records engine events to the activity ledger and lists them back.
// A nil repository means the ledger is disabled.
type UseCase struct {
	events repository.ActivityRepository
	logger *zap.Logger
}

func New(events repository.ActivityRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		events: events,
		logger: logger,
	}
}

func (uc *UseCase) Enabled() bool {
	return uc != nil && uc.events != nil
}

// Record implements usecase.ActivityRecorder.
func (uc *UseCase) Record(ctx context.Context, event domain.ActivityEvent) error {
	if !uc.Enabled() {
		return nil
	}
	return uc.events.Append(ctx, &event)
}

func (uc *UseCase) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.ActivityEvent, error) {
	if !uc.Enabled() {
		return nil, domain.ErrLedgerDisabled
	}
	if filter.Kind != "" {
		if !domain.ActivityKind(filter.Kind).Valid() {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "unknown activity kind "+filter.Kind, nil)
		}
	}
	return uc.events.List(ctx, filter)
}
