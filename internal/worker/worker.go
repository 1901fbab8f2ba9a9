package worker

import (
	"context"
	"log"
	"time"

	"github.com/omnipress/publishq/internal/clock"
	"github.com/omnipress/publishq/internal/config"
	"github.com/omnipress/publishq/internal/job"
	"github.com/omnipress/publishq/internal/models"
)

// Dispatcher is the slice of the dispatch package the worker drives.
type Dispatcher interface {
	Handle(ctx context.Context, job *models.Job) error
}

// Worker polls for due jobs, claims them one at a time, and hands each claim
// to the dispatcher. Any number of workers may run against the same store;
// losing a claim race is normal and skipped silently.
type Worker struct {
	ID         int
	repo       job.JobRepoInterface
	dispatcher Dispatcher
	clock      clock.Clock
	cfg        *config.QueueConfig
	quit       chan struct{}
}

func NewWorker(id int, repo job.JobRepoInterface, d Dispatcher, clk clock.Clock, cfg *config.QueueConfig) *Worker {
	if clk == nil {
		clk = clock.System
	}
	return &Worker{
		ID:         id,
		repo:       repo,
		dispatcher: d,
		clock:      clk,
		cfg:        cfg,
		quit:       make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		currentDelay := w.cfg.PollInterval
		maxDelay := w.cfg.MaxPollInterval

		for {
			processed := w.poll(ctx)

			if processed > 0 {
				currentDelay = w.cfg.PollInterval
			} else {
				currentDelay = min(currentDelay*2, maxDelay)
			}

			select {
			case <-time.After(currentDelay):
			case <-w.quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// poll runs one fetch-claim-dispatch cycle and reports how many jobs it
// actually processed. Storage errors are logged and the cycle moves on; the
// next tick retries naturally.
func (w *Worker) poll(ctx context.Context) int {
	now := w.clock.Now()

	due, err := w.repo.DueJobs(ctx, now, w.cfg.BatchLimit)
	if err != nil {
		log.Printf("[worker %d][WARN] list due jobs: %v", w.ID, err)
		return 0
	}

	processed := 0
	for i := range due {
		claimed, err := w.repo.Claim(ctx, due[i].ID, w.clock.Now())
		if err != nil {
			log.Printf("[worker %d][WARN] claim job %d: %v", w.ID, due[i].ID, err)
			continue
		}
		if claimed == nil {
			// Lost the race to another worker.
			continue
		}

		if err := w.dispatcher.Handle(ctx, claimed); err != nil {
			log.Printf("[worker %d][WARN] dispatch job %d: %v", w.ID, claimed.ID, err)
			continue
		}
		processed++
	}

	return processed
}

func (w *Worker) Stop() { close(w.quit) }
