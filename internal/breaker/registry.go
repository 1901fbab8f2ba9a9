package breaker

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/omnipress/publishq/internal/clock"
)

// Registry hands out one breaker per service name. Breakers are created
// lazily, seeded from persisted state when the store has a row for the
// service. The registry is injected wherever breakers are needed; there is
// no package-level singleton, so tests can reset state deterministically.
type Registry struct {
	threshold int
	cooldown  time.Duration
	store     Store
	clock     clock.Clock

	mu       sync.Mutex
	breakers map[string]*Breaker
}

func NewRegistry(threshold int, cooldown time.Duration, store Store, clk clock.Clock) *Registry {
	if clk == nil {
		clk = clock.System
	}
	return &Registry{
		threshold: threshold,
		cooldown:  cooldown,
		store:     store,
		clock:     clk,
		breakers:  make(map[string]*Breaker),
	}
}

// For returns the breaker guarding the named service, creating it on first
// use. A store read failure degrades to a fresh closed breaker.
func (r *Registry) For(ctx context.Context, service string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[service]; ok {
		return b
	}

	b := &Breaker{
		service:   service,
		threshold: r.threshold,
		cooldown:  r.cooldown,
		store:     r.store,
		clock:     r.clock,
		state:     StateClosed,
	}

	if r.store != nil {
		persisted, err := r.store.Load(ctx, service)
		if err != nil {
			log.Printf("[breaker][WARN] load state for %s: %v", service, err)
		} else if persisted != nil {
			b.state = State(persisted.State)
			b.failures = persisted.FailureCount
			b.openedAt = persisted.OpenedAt
			b.lastFailure = persisted.LastFailure
		}
	}

	r.breakers[service] = b
	return b
}

// AllStats returns a snapshot of every breaker seen so far, sorted by
// service name for stable output.
func (r *Registry) AllStats() []Stats {
	r.mu.Lock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.Unlock()

	stats := make([]Stats, 0, len(breakers))
	for _, b := range breakers {
		stats = append(stats, b.Stats())
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Service < stats[j].Service })
	return stats
}
