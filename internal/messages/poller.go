// Package messages polls the message list of the conversation a session is
// watching.
package messages

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskflow-gateway/internal/backend"
	"taskflow-gateway/internal/entities"
)

const defaultInterval = 2 * time.Second

type Fetcher interface {
	Messages(ctx context.Context, conversationID string) ([]entities.Message, error)
}

// Sink receives a conversation's message list whenever it changed.
type Sink func(conversationID string, msgs []entities.Message)

// Poller runs at most one polling loop, for the selected conversation.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	sink     Sink
	logger   *zap.Logger

	mu     sync.Mutex
	active string
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(fetcher Fetcher, interval time.Duration, sink Sink, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		sink:     sink,
		logger:   logger.Named("message_poller"),
	}
}

// Select stops the current loop and starts polling conversationID. The
// first fetch happens immediately.
func (p *Poller) Select(conversationID string) error {
	if err := backend.ValidateID(conversationID, "conversation"); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == conversationID && p.cancel != nil {
		return nil
	}
	p.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.active, p.cancel, p.done = conversationID, cancel, done
	go p.loop(ctx, conversationID, done)
	return nil
}

// Active is the polled conversation, "" when stopped.
func (p *Poller) Active() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.active, p.cancel, p.done = "", nil, nil
}

func (p *Poller) loop(ctx context.Context, conversationID string, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var last string
	for {
		last = p.poll(ctx, conversationID, last)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll fetches once and hands the list to the sink when its fingerprint
// moved. Errors are logged; the loop keeps going.
func (p *Poller) poll(ctx context.Context, conversationID, last string) string {
	msgs, err := p.fetcher.Messages(ctx, conversationID)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("message poll failed", zap.String("conversation", conversationID), zap.Error(err))
		}
		return last
	}
	fp := fingerprint(msgs)
	if fp == last || ctx.Err() != nil {
		return last
	}
	p.sink(conversationID, msgs)
	return fp
}

func fingerprint(msgs []entities.Message) string {
	if len(msgs) == 0 {
		return "0"
	}
	tail := msgs[len(msgs)-1]
	return fmt.Sprintf("%d:%s:%d", len(msgs), tail.ID, tail.Timestamp.UnixNano())
}
