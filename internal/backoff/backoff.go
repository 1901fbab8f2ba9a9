// Package backoff computes retry delays for failed publish attempts.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Policy is an exponential backoff with an upper cap and optional full
// jitter. The zero value is unusable; construct with NewPolicy or set Base
// and Max explicitly. Policies are stateless and safe for concurrent use.
type Policy struct {
	Base   time.Duration
	Max    time.Duration
	Jitter bool
}

func NewPolicy(base, max time.Duration, jitter bool) Policy {
	return Policy{Base: base, Max: max, Jitter: jitter}
}

// Delay returns the wait before the retry following the given number of
// completed attempts: Base * 2^attempts, capped at Max. With Jitter enabled
// a random slice of up to half the delay is added, still capped at Max.
func (p Policy) Delay(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}

	d := time.Duration(float64(p.Base) * math.Pow(2, float64(attempts)))
	if d > p.Max || d <= 0 {
		d = p.Max
	}

	if p.Jitter && d > 1 {
		d += time.Duration(rand.Int63n(int64(d) / 2))
		if d > p.Max {
			d = p.Max
		}
	}

	return d
}

// NextRunAt returns the earliest moment the job may be claimed again.
func (p Policy) NextRunAt(now time.Time, attempts int) time.Time {
	return now.UTC().Add(p.Delay(attempts))
}
