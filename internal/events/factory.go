package events

import (
	"fmt"
	"log/slog"

	"socialhub/internal/config"

	"github.com/redis/go-redis/v9"
)

// New returns the publisher selected by EVENTS_BACKEND. The redis backend
// degrades to Noop when no client is available.
func New(cfg *config.Config, rdb *redis.Client) (Publisher, error) {
	switch cfg.EventsBackend {
	case "", "none":
		return Noop{}, nil
	case "redis":
		if rdb == nil {
			slog.Warn("events backend is redis but redis is unavailable; events disabled")
			return Noop{}, nil
		}
		return NewRedisPublisher(rdb), nil
	case "kafka":
		p, err := NewKafkaPublisher(cfg.KafkaBrokerList(), cfg.KafkaTopic, cfg.KafkaRequiredAcks)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.EventsBackend)
	}
}
