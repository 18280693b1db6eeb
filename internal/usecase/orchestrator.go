package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/totegamma/rentchain"
	"github.com/totegamma/rentchain/internal/clock"
	"github.com/totegamma/rentchain/internal/domain"
)

var tracer = otel.Tracer("usecase")

// Deps is shared by every usecase.
type Deps struct {
	Store     Transactor
	Publisher EventPublisher
	Clock     clock.Clock
	Config    domain.Config
}

func (d Deps) publisher() EventPublisher {
	if d.Publisher == nil {
		return NopPublisher
	}
	return d.Publisher
}

func (d Deps) now() time.Time {
	if d.Clock == nil {
		return clock.System{}.Now()
	}
	return d.Clock.Now()
}

// commit runs fn as one all-or-nothing operation. The events fn returns are
// written to the outbox inside the same transaction and published once it commits.
func (d Deps) commit(ctx context.Context, fn func(ctx context.Context, tx Stores, now time.Time) ([]domain.Event, error)) error {
	now := d.now()

	var committed []rentchain.Event
	err := d.Store.Transact(ctx, func(ctx context.Context, tx Stores) error {
		committed = committed[:0]
		events, err := fn(ctx, tx, now)
		if err != nil {
			return err
		}
		for _, event := range events {
			stored, err := tx.Events.Append(ctx, event, now)
			if err != nil {
				return errors.Wrap(err, "append event")
			}
			committed = append(committed, stored)
		}
		return nil
	})
	if err != nil {
		return err
	}

	publisher := d.publisher()
	for _, event := range committed {
		if err := publisher.Publish(ctx, event); err != nil {
			slog.WarnContext(
				ctx, "failed to publish event",
				slog.String("error", err.Error()),
				slog.Uint64("event", event.ID),
				slog.String("type", event.Type),
				slog.String("module", "usecase"),
			)
		}
	}
	return nil
}

func fail(span trace.Span, err error, op string) error {
	span.RecordError(errors.Wrap(err, op))
	return err
}

func normalizeAddress(field, address string) (string, error) {
	normalized, err := rentchain.NormalizeAddress(address)
	if err != nil {
		return "", domain.InvalidArgumentError{Field: field, Reason: "not a 0x-prefixed 20 byte hex address"}
	}
	return normalized, nil
}

// isVerified treats an unknown address as unverified.
func isVerified(ctx context.Context, users UserRepository, address string) (bool, error) {
	user, err := users.Get(ctx, address)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.KYCVerified, nil
}

func clampLimit(limit, def, max int) int {
	switch {
	case limit <= 0:
		return def
	case limit > max:
		return max
	default:
		return limit
	}
}

func sameCaller(caller, address string) bool {
	return rentchain.SameAddress(caller, address)
}
