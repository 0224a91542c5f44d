// Package outbox relays order events written by the order service to an
// external sink.
package outbox

import (
	"context"
	"fmt"
	"time"

	"cosmetica/internal/domain"
	applog "cosmetica/internal/log"
	"cosmetica/internal/repos"
)

// MessageHandler delivers one outbox message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *domain.OutboxMessage) error
}

type Config struct {
	PollingInterval time.Duration
	BatchSize       int
	MaxRetries      int
	// Lease is how long a claimed message may stay in processing before
	// another run takes it over.
	Lease time.Duration
}

// markTimeout bounds the status write after a handler returns. It runs on a
// context detached from shutdown so a claimed message is never left behind.
const markTimeout = 5 * time.Second

func (c Config) withDefaults() Config {
	if c.PollingInterval <= 0 {
		c.PollingInterval = 2 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.Lease <= 0 {
		c.Lease = 5 * time.Minute
	}
	return c
}

type Processor struct {
	repo     *repos.OutboxRepo
	handlers map[string]MessageHandler
	cfg      Config
	now      func() time.Time
}

func NewProcessor(repo *repos.OutboxRepo, cfg Config) *Processor {
	return &Processor{repo: repo, handlers: map[string]MessageHandler{}, cfg: cfg.withDefaults(), now: time.Now}
}

func (p *Processor) staleBefore() string {
	return p.now().Add(-p.cfg.Lease).UTC().Format(domain.TimeLayout)
}

// RegisterHandler binds handler to an event type. Not safe to call once Run has started.
func (p *Processor) RegisterHandler(eventType string, h MessageHandler) {
	p.handlers[eventType] = h
}

// Run polls until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	applog.Info(nil, "outbox.start", map[string]any{
		"interval": p.cfg.PollingInterval.String(), "batch": p.cfg.BatchSize,
	})
	t := time.NewTicker(p.cfg.PollingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			applog.Info(nil, "outbox.stop", nil)
			return nil
		case <-t.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				applog.Error(nil, "outbox.batch", err, nil)
			}
		}
	}
}

// ProcessBatch handles one batch of claimable messages and returns how many
// were delivered.
func (p *Processor) ProcessBatch(ctx context.Context) (int, error) {
	msgs, err := p.repo.Claimable(ctx, p.cfg.BatchSize, p.staleBefore())
	if err != nil {
		return 0, fmt.Errorf("pending messages: %w", err)
	}
	done := 0
	for i := range msgs {
		msg := &msgs[i]
		delivered, err := p.process(ctx, msg)
		if err != nil {
			applog.Error(nil, "outbox.message", err, map[string]any{
				"id": msg.ID, "event": msg.EventType, "aggregate_id": msg.AggregateID,
			})
			continue
		}
		if delivered {
			done++
		}
	}
	return done, nil
}

// process reports delivered=false with a nil error when another worker
// holds the message.
func (p *Processor) process(ctx context.Context, msg *domain.OutboxMessage) (bool, error) {
	claimed, err := p.repo.MarkProcessing(ctx, msg.ID, p.staleBefore())
	if err != nil || !claimed {
		return false, err
	}
	attempts := msg.ProcessingAttempts + 1

	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
	defer cancel()

	h, ok := p.handlers[msg.EventType]
	if !ok {
		cause := "no handler for event type " + msg.EventType
		if err := p.repo.MarkFailed(mctx, msg.ID, cause); err != nil {
			return false, err
		}
		return false, fmt.Errorf("%s", cause)
	}

	if err := h.HandleMessage(ctx, msg); err != nil {
		if attempts >= p.cfg.MaxRetries {
			if markErr := p.repo.MarkFailed(mctx, msg.ID, err.Error()); markErr != nil {
				return false, markErr
			}
			return false, fmt.Errorf("giving up after %d attempts: %w", attempts, err)
		}
		if markErr := p.repo.MarkRetry(mctx, msg.ID, err.Error()); markErr != nil {
			return false, markErr
		}
		return false, fmt.Errorf("attempt %d: %w", attempts, err)
	}
	if err := p.repo.MarkCompleted(mctx, msg.ID); err != nil {
		return false, err
	}
	return true, nil
}
