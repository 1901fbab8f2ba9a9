// Package dispatch orchestrates the publish attempt for a claimed job. One
// generic dispatcher serves every channel; channel-specific behavior lives
// entirely inside the registered Publisher implementations.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/omnipress/publishq/internal/breaker"
	"github.com/omnipress/publishq/internal/classify"
	"github.com/omnipress/publishq/internal/models"
)

// Result is what a successful publish produces: the identifier of the
// artifact created on the external platform and the normalized payload that
// was actually sent.
type Result struct {
	RemoteID   string
	Normalized map[string]any
}

// Publisher is the capability a channel supplies: payload normalization plus
// the external call. Failures should be typed channel errors implementing
// classify.Retryable; raw transport errors fall back to the generic
// classifier.
type Publisher interface {
	Channel() string
	Publish(ctx context.Context, payload map[string]any) (*Result, error)
}

// PayloadHook can rewrite the outgoing payload before the publisher sees it.
// Hooks run in registration order; returning nil keeps the previous payload.
type PayloadHook func(channel string, payload map[string]any) map[string]any

// PublishedListener observes successful publishes.
type PublishedListener func(channel, remoteID string, job *models.Job)

// Marker is the slice of the job service the dispatcher drives: every
// dispatch outcome ends in exactly one of these calls.
type Marker interface {
	CompleteJob(ctx context.Context, jobID uint, remoteID string) error
	FailJob(ctx context.Context, job *models.Job, message string, retryable bool) error
	RescheduleCircuitOpen(ctx context.Context, job *models.Job, message string) error
}

type Dispatcher struct {
	marker     Marker
	breakers   *breaker.Registry
	publishers map[string]Publisher
	hooks      []PayloadHook
	listeners  []PublishedListener
}

func New(marker Marker, breakers *breaker.Registry) *Dispatcher {
	return &Dispatcher{
		marker:     marker,
		breakers:   breakers,
		publishers: make(map[string]Publisher),
	}
}

// Register wires a channel publisher. Registering the same channel twice
// replaces the earlier publisher.
func (d *Dispatcher) Register(p Publisher) {
	d.publishers[p.Channel()] = p
}

// Use appends a payload-transformation hook.
func (d *Dispatcher) Use(hook PayloadHook) {
	d.hooks = append(d.hooks, hook)
}

// OnPublished appends a success listener.
func (d *Dispatcher) OnPublished(l PublishedListener) {
	d.listeners = append(d.listeners, l)
}

// Handle runs one publish attempt for a claimed job. External-call failures
// never escape: every such path ends in a marker call. The returned error is
// reserved for storage-level failures, which the worker's supervision owns.
func (d *Dispatcher) Handle(ctx context.Context, job *models.Job) error {
	payload := map[string]any{}
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return d.marker.FailJob(ctx, job, fmt.Sprintf("invalid payload json: %v", err), false)
		}
	}

	for _, hook := range d.hooks {
		if next := hook(job.Channel, payload); next != nil {
			payload = next
		}
	}

	// Dry-run path: previews never reach the external service.
	if preview, _ := payload["preview"].(bool); preview {
		return d.marker.CompleteJob(ctx, job.ID, "")
	}

	pub, ok := d.publishers[job.Channel]
	if !ok {
		return d.marker.FailJob(ctx, job, fmt.Sprintf("no publisher registered for channel %s", job.Channel), false)
	}

	var res *Result
	err := d.breakers.For(ctx, job.Channel).Call(ctx, func() error {
		r, callErr := pub.Publish(ctx, payload)
		res = r
		return callErr
	})

	var open *breaker.OpenError
	if errors.As(err, &open) {
		// The call never reached the service; reschedule without counting
		// this as a real failure.
		return d.marker.RescheduleCircuitOpen(ctx, job, open.Error())
	}

	if err != nil {
		return d.marker.FailJob(ctx, job, err.Error(), classify.ShouldRetry(err))
	}

	remoteID := ""
	if res != nil {
		remoteID = res.RemoteID
	}
	if err := d.marker.CompleteJob(ctx, job.ID, remoteID); err != nil {
		return err
	}

	for _, l := range d.listeners {
		l(job.Channel, remoteID, job)
	}

	log.Printf("[dispatch] published job %d to %s (remote %s)", job.ID, job.Channel, remoteID)
	return nil
}
