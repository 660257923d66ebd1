package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"voicenotes/internal/app/logging"
	"voicenotes/internal/app/summarizer"
)

// DefaultChannel is the Redis channel changes are published to.
const DefaultChannel = "voicenotes:summary"

// Message is the JSON payload of one published change.
type Message struct {
	RecordID   int       `json:"recordId"`
	NoteID     int       `json:"noteId"`
	Status     string    `json:"status"`
	Fields     []string  `json:"fields"`
	HasSummary bool      `json:"hasSummary"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}

// NewMessage converts an orchestrator change to its wire form.
func NewMessage(c summarizer.Change) Message {
	m := Message{
		RecordID:   c.Record.ID,
		NoteID:     c.Record.NoteID,
		Status:     string(c.Status),
		Fields:     c.Fields,
		HasSummary: c.Record.HasSummary,
		At:         c.At,
	}
	if m.Fields == nil {
		m.Fields = []string{}
	}
	if c.Err != nil {
		m.Error = c.Err.Error()
	}
	return m
}

// Publisher is the subset of *redis.Client used for publishing.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher forwards orchestrator changes to a Redis channel.
type RedisPublisher struct {
	client  Publisher
	channel string
	logger  *zap.Logger
}

// NewRedisClient creates a client for addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedisPublisher(client Publisher, channel string, logger *zap.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  logging.OrNop(logger),
	}
}

// Publish sends one change. Errors are returned to the caller.
func (p *RedisPublisher) Publish(ctx context.Context, c summarizer.Change) error {
	payload, err := json.Marshal(NewMessage(c))
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// Run publishes every change from changes until the channel closes or ctx
// is done. Publish failures are logged and skipped.
func (p *RedisPublisher) Run(ctx context.Context, changes <-chan summarizer.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			if err := p.Publish(ctx, c); err != nil {
				p.logger.Warn("failed to publish summary change",
					zap.String("channel", p.channel),
					zap.Int("record_id", c.Record.ID),
					zap.Error(err))
			}
		}
	}
}
