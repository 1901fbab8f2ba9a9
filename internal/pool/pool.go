package pool

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/omnipress/publishq/internal/clock"
	"github.com/omnipress/publishq/internal/config"
	"github.com/omnipress/publishq/internal/job"
	"github.com/omnipress/publishq/internal/worker"
)

// WorkerPool runs a bounded set of workers against one job store plus a
// janitor goroutine that recovers jobs stuck in running after a worker
// crash.
type WorkerPool struct {
	workers []*worker.Worker
	repo    job.JobRepoInterface
	clock   clock.Clock
	cfg     *config.QueueConfig
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewWorkerPool(repo job.JobRepoInterface, d worker.Dispatcher, clk clock.Clock, cfg *config.QueueConfig) *WorkerPool {
	if clk == nil {
		clk = clock.System
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{repo: repo, clock: clk, cfg: cfg, ctx: ctx, cancel: cancel}

	for i := 1; i <= cfg.MaxWorkers; i++ {
		p.workers = append(p.workers, worker.NewWorker(i, repo, d, clk, cfg))
	}
	return p
}

func (p *WorkerPool) Start() {
	for _, w := range p.workers {
		w.Start(p.ctx)
	}

	p.wg.Add(1)
	go p.janitor()
}

// janitor sweeps stuck running jobs back to pending. The sweep interval is
// half the staleness threshold so a stuck job waits at most 1.5x the
// threshold before recovery.
func (p *WorkerPool) janitor() {
	defer p.wg.Done()

	interval := p.cfg.StuckAfter / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := p.clock.Now().Add(-p.cfg.StuckAfter)
			recovered, err := p.repo.ReleaseStuck(p.ctx, cutoff)
			if err != nil {
				log.Printf("[janitor][WARN] release stuck jobs: %v", err)
				continue
			}
			if recovered > 0 {
				log.Printf("[janitor] recovered %d stuck job(s)", recovered)
			}
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *WorkerPool) Stop() {
	p.cancel()
	for _, w := range p.workers {
		w.Stop()
	}
	p.wg.Wait()
}
