package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler func(ctx context.Context, event Event) error

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
}

// Subscriber consumes one stream through a consumer group. Messages whose
// handler fails stay in the consumer's pending list; every read cycle first
// replays that backlog (XREADGROUP from id 0) before blocking for new entries,
// so a failed message is retried once per cycle until its handler succeeds.
type Subscriber struct {
	client *redis.Client
	cfg    SubscriberConfig
	logger *zap.Logger
}

func NewSubscriber(client *redis.Client, cfg SubscriberConfig, logger *zap.Logger) *Subscriber {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 10
	}
	if cfg.BlockDuration == 0 {
		cfg.BlockDuration = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{
		client: client,
		cfg:    cfg,
		logger: logger.With(zap.String("stream", cfg.Stream), zap.String("group", cfg.Group)),
	}
}

// Start blocks until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.cfg.Stream, s.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	s.logger.Info("subscriber started", zap.String("consumer", s.cfg.Consumer))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("subscriber stopping")
			return ctx.Err()
		default:
		}
		if err := s.readMessages(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			s.logger.Warn("stream read failed", zap.Error(err))
			time.Sleep(time.Second)
		}
	}
}

func (s *Subscriber) readMessages(ctx context.Context) error {
	if err := s.replayPending(ctx); err != nil {
		return err
	}

	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.cfg.Group,
		Consumer: s.cfg.Consumer,
		Streams:  []string{s.cfg.Stream, ">"},
		Count:    s.cfg.BatchSize,
		Block:    s.cfg.BlockDuration,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		s.handle(ctx, stream.Messages)
	}
	return nil
}

// replayPending walks this consumer's pending entries once, oldest first.
func (s *Subscriber) replayPending(ctx context.Context) error {
	start := "0"
	for {
		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.cfg.Group,
			Consumer: s.cfg.Consumer,
			Streams:  []string{s.cfg.Stream, start},
			Count:    s.cfg.BatchSize,
			Block:    -1,
		}).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read pending messages: %w", err)
		}

		var messages []redis.XMessage
		for _, stream := range streams {
			messages = append(messages, stream.Messages...)
		}
		if len(messages) == 0 {
			return nil
		}
		s.logger.Info("replaying pending messages", zap.Int("count", len(messages)))
		s.handle(ctx, messages)
		start = messages[len(messages)-1].ID
	}
}

func (s *Subscriber) handle(ctx context.Context, messages []redis.XMessage) {
	for _, message := range messages {
		if err := s.process(ctx, message); err != nil {
			s.logger.Error("message handling failed", zap.String("messageId", message.ID), zap.Error(err))
			continue
		}
		if err := s.client.XAck(ctx, s.cfg.Stream, s.cfg.Group, message.ID).Err(); err != nil {
			s.logger.Warn("ack failed", zap.String("messageId", message.ID), zap.Error(err))
		}
	}
}

func (s *Subscriber) process(ctx context.Context, message redis.XMessage) error {
	raw, ok := message.Values["event"].(string)
	if !ok {
		return fmt.Errorf("invalid message format")
	}
	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return s.cfg.Handler(ctx, event)
}
