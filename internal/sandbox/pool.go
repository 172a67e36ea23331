package sandbox

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/codetrail/internal/logger"
)

type job struct {
	ctx    context.Context
	req    Request
	result chan Result
}

// Pool runs requests on a fixed set of worker goroutines fed by a bounded
// queue, so at most workers programs run at once. Pool is itself an Executor.
type Pool struct {
	exec    Executor
	jobs    chan *job
	wg      sync.WaitGroup
	workers int

	// done is closed when Stop begins; stopped once every queued job has
	// been answered.
	done    chan struct{}
	stopped chan struct{}

	mu      sync.Mutex
	closed  bool
	started bool
	cancel  context.CancelFunc
	log     *logger.Logger
}

func NewPool(exec Executor, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	log := logger.Default().WithPrefix("sandbox-pool")
	log.Debug("creating sandbox pool with %d workers and queue size %d", workers, queueSize)
	return &Pool{
		exec:    exec,
		jobs:    make(chan *job, queueSize),
		workers: workers,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		log:     log,
	}
}

// Start launches the workers. Cancelling ctx kills every running program.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting sandbox pool with %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			workerLog := p.log.WithField("worker_id", id)
			workerLog.Debug("worker started")

			for {
				select {
				case <-p.done:
					workerLog.Debug("worker shutting down")
					return
				case j := <-p.jobs:
					j.result <- p.run(ctx, workerLog, j)
				}
			}
		}(i + 1)
	}
}

func (p *Pool) run(poolCtx context.Context, log *logger.Logger, j *job) Result {
	if err := j.ctx.Err(); err != nil {
		log.Debug("skipping job cancelled while queued")
		return cancelled(err)
	}
	if poolCtx.Err() != nil {
		return failed(msgPoolStopped)
	}

	jobCtx, cancel := context.WithCancel(logger.NewContext(j.ctx, log))
	defer cancel()
	stop := context.AfterFunc(poolCtx, cancel)
	defer stop()

	start := time.Now()
	res := p.exec.Execute(jobCtx, j.req)
	log.Debug("job finished in %v: exit=%d timed_out=%t", time.Since(start), res.ExitCode, res.TimedOut)
	return res
}

const msgPoolStopped = "sandbox unavailable: pool stopped"

// Execute queues req and waits for its result. If ctx ends first the
// program is killed by its worker and a cancellation result is returned.
func (p *Pool) Execute(ctx context.Context, req Request) Result {
	j := &job{ctx: ctx, req: req, result: make(chan Result, 1)}

	select {
	case <-p.done:
		return failed(msgPoolStopped)
	default:
	}

	select {
	case p.jobs <- j:
	case <-p.done:
		return failed(msgPoolStopped)
	case <-ctx.Done():
		return cancelled(ctx.Err())
	}

	select {
	case res := <-j.result:
		return res
	case <-ctx.Done():
		return cancelled(ctx.Err())
	case <-p.stopped:
		// Everything answered before shutdown finished is already buffered.
		select {
		case res := <-j.result:
			return res
		default:
			return failed(msgPoolStopped)
		}
	}
}

// Stop rejects new work, kills running programs and waits for the workers.
// Jobs still queued are answered with a failure.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.log.Info("stopping sandbox pool")
	if p.cancel != nil {
		p.cancel()
	}
	close(p.done)
	p.mu.Unlock()

	p.wg.Wait()
	for drained := false; !drained; {
		select {
		case j := <-p.jobs:
			j.result <- failed(msgPoolStopped)
		default:
			drained = true
		}
	}
	close(p.stopped)
	p.log.Info("sandbox pool stopped")
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

var _ Executor = (*Pool)(nil)
