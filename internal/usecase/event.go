package usecase

import (
	"context"

	"github.com/totegamma/rentchain"
)

type EventUsecase struct {
	deps Deps
}

func NewEventUsecase(deps Deps) *EventUsecase {
	return &EventUsecase{deps: deps}
}

// ListSince pages through committed events in commit order.
func (uc *EventUsecase) ListSince(ctx context.Context, afterID uint64, limit int) ([]rentchain.Event, error) {
	ctx, span := tracer.Start(ctx, "Event.Usecase.ListSince")
	defer span.End()

	events, err := uc.deps.Store.Stores().Events.ListSince(ctx, afterID, clampLimit(limit, 100, 1000))
	if err != nil {
		return nil, fail(span, err, "Event.Usecase.ListSince")
	}
	return events, nil
}
