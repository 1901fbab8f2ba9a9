// Package breaker implements a per-service circuit breaker with simple
// consecutive-failure counting and write-through persistence of its state.
package breaker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/omnipress/publishq/internal/clock"
	"github.com/omnipress/publishq/internal/models"
)

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// OpenError is returned when the breaker rejects a call without invoking the
// wrapped function. It is distinct from any error the wrapped function can
// return.
type OpenError struct {
	Service string
	Until   time.Time
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for %s until %s", e.Service, e.Until.Format(time.RFC3339))
}

// Store persists breaker state keyed by service name. Rows are never
// deleted; Save upserts on the service name.
type Store interface {
	Load(ctx context.Context, service string) (*models.BreakerState, error)
	Save(ctx context.Context, state *models.BreakerState) error
}

// Stats is a read-only snapshot for observability.
type Stats struct {
	Service     string     `json:"service"`
	State       State      `json:"state"`
	Failures    int        `json:"failures"`
	OpenedAt    *time.Time `json:"opened_at,omitempty"`
	LastFailure string     `json:"last_failure,omitempty"`
}

// Breaker guards one external service. Counting is consecutive-failure
// based: any success while closed resets the counter.
type Breaker struct {
	service   string
	threshold int
	cooldown  time.Duration
	store     Store
	clock     clock.Clock

	mu          sync.Mutex
	state       State
	failures    int
	openedAt    *time.Time
	lastFailure string
}

// Call executes fn unless the breaker is open and its cooldown has not yet
// elapsed, in which case it returns *OpenError. After cooldown one call is
// let through as a probe; its outcome closes or re-opens the breaker.
func (b *Breaker) Call(ctx context.Context, fn func() error) error {
	b.mu.Lock()

	now := b.clock.Now()
	if b.state == StateOpen {
		until := b.openedAt.Add(b.cooldown)
		if now.Before(until) {
			service := b.service
			b.mu.Unlock()
			return &OpenError{Service: service, Until: until}
		}
		b.state = StateHalfOpen
		b.persistLocked(ctx)
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		if b.state != StateClosed || b.failures != 0 {
			b.state = StateClosed
			b.failures = 0
			b.persistLocked(ctx)
		}
		return nil
	}

	b.failures++
	b.lastFailure = err.Error()

	now = b.clock.Now()
	if b.state == StateHalfOpen || b.failures >= b.threshold {
		b.state = StateOpen
		b.openedAt = &now
	}
	b.persistLocked(ctx)

	return err
}

// Stats returns a snapshot of the breaker's current state.
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	var opened *time.Time
	if b.openedAt != nil {
		t := *b.openedAt
		opened = &t
	}

	return Stats{
		Service:     b.service,
		State:       b.state,
		Failures:    b.failures,
		OpenedAt:    opened,
		LastFailure: b.lastFailure,
	}
}

// Reset forces the breaker closed and clears its counters.
func (b *Breaker) Reset(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.failures = 0
	b.openedAt = nil
	b.lastFailure = ""
	b.persistLocked(ctx)
}

// persistLocked writes the current state through to the store. Persistence
// failures are logged, not propagated: losing a counter update is harmless
// compared to blocking the dispatch path.
func (b *Breaker) persistLocked(ctx context.Context) {
	if b.store == nil {
		return
	}

	state := &models.BreakerState{
		ServiceName:  b.service,
		State:        string(b.state),
		FailureCount: b.failures,
		OpenedAt:     b.openedAt,
		LastFailure:  b.lastFailure,
	}
	if err := b.store.Save(ctx, state); err != nil {
		log.Printf("[breaker][WARN] persist state for %s: %v", b.service, err)
	}
}
