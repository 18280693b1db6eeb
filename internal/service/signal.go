package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/totegamma/rentchain"
)

// recently delivered event ids kept per connection
const realtimeSeenWindow = 1024

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

// Publish sends the event to every channel it was tagged with.
func (s *SignalService) Publish(ctx context.Context, event rentchain.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	for _, channel := range event.Channels {
		err = s.rdb.Publish(ctx, channel, jsonstr).Err()
		if err != nil {
			return err
		}
	}

	return nil
}

// Realtime forwards events on the channels last received from input to output
// until ctx is done or input is closed. An event tagged with several subscribed
// channels is delivered once.
func (s *SignalService) Realtime(ctx context.Context, input <-chan []string, output chan<- rentchain.Event) {
	pubsub := s.rdb.Subscribe(ctx)
	defer pubsub.Close()

	messages := pubsub.Channel()
	var current []string
	seen := make(map[uint64]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case channels, ok := <-input:
			if !ok {
				return
			}
			if len(current) > 0 {
				if err := pubsub.Unsubscribe(ctx, current...); err != nil {
					slog.ErrorContext(ctx, "unsubscribe failed", slog.String("error", err.Error()), slog.String("module", "signal"))
				}
			}
			current = channels
			if len(channels) > 0 {
				if err := pubsub.Subscribe(ctx, channels...); err != nil {
					slog.ErrorContext(ctx, "subscribe failed", slog.String("error", err.Error()), slog.String("module", "signal"))
				}
			}
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event rentchain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.WarnContext(ctx, "malformed event", slog.String("channel", msg.Channel), slog.String("module", "signal"))
				continue
			}
			if _, dup := seen[event.ID]; dup {
				continue
			}
			if len(seen) >= realtimeSeenWindow {
				seen = make(map[uint64]struct{})
			}
			seen[event.ID] = struct{}{}

			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
