package relay

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"noticehub/internal/app/notice"
	"noticehub/internal/app/realtime"
	"noticehub/internal/pkg/logx"
)

const (
	DefaultWorkers    = 4
	DefaultQueueSize  = 1024
	DefaultJobTimeout = 5 * time.Second
)

// Performer is one delivery attempt.
type Performer interface {
	Perform(ctx context.Context, n notice.Notice) error
}

// Stats are cumulative dispatcher counters. Unreached counts jobs whose only
// problem was a recipient with no live connection.
type Stats struct {
	Enqueued  uint64 `json:"enqueued"`
	Dropped   uint64 `json:"dropped"`
	Delivered uint64 `json:"delivered"`
	Unreached uint64 `json:"unreached"`
	Failed    uint64 `json:"failed"`
}

type job struct {
	id     string
	notice notice.Notice
}

// Dispatcher runs deliveries on a fixed pool of workers fed by a bounded queue.
// Jobs are attempted once; there is no ordering between workers.
type Dispatcher struct {
	performer Performer
	workers   int
	timeout   time.Duration

	jobs chan job

	// mu guards closed and the close of jobs against concurrent Enqueue.
	mu      sync.RWMutex
	closed  bool
	started bool

	// base is cancelled when Shutdown gives up waiting, aborting in-flight jobs.
	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	enqueued  atomic.Uint64
	dropped   atomic.Uint64
	delivered atomic.Uint64
	unreached atomic.Uint64
	failed    atomic.Uint64

	logger zerolog.Logger
}

// NewDispatcher returns a stopped Dispatcher. Non-positive arguments take the defaults.
func NewDispatcher(p Performer, workers, queueSize int, timeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}

	base, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		performer: p,
		workers:   workers,
		timeout:   timeout,
		jobs:      make(chan job, queueSize),
		base:      base,
		cancel:    cancel,
		logger:    logx.Component("dispatcher"),
	}
}

// Start launches the workers. Calling it again has no effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	d.logger.Info().Int("workers", d.workers).Int("queue_size", cap(d.jobs)).Msg("Dispatcher started")
}

// Enqueue schedules delivery of n without blocking. It returns false when the queue is
// full or the dispatcher is shut down; the notice then stays stored but is not pushed.
func (d *Dispatcher) Enqueue(n notice.Notice) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		d.logger.Warn().Int64("notice_id", n.ID).Msg("Dispatcher shut down, notice not relayed")
		return false
	}

	j := job{id: uuid.NewString(), notice: n}

	select {
	case d.jobs <- j:
		d.enqueued.Add(1)
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn().Int64("notice_id", n.ID).Int("queue_len", len(d.jobs)).Msg("Relay queue full, notice not relayed")
		return false
	}
}

// Shutdown stops accepting jobs and waits for the queue to drain. If ctx ends first,
// in-flight jobs are cancelled and ctx's error is returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		d.logger.Info().Interface("stats", d.Stats()).Msg("Dispatcher drained")
		return nil
	case <-ctx.Done():
		d.cancel()
		d.logger.Warn().Interface("stats", d.Stats()).Msg("Dispatcher shutdown timed out")
		return ctx.Err()
	}
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Enqueued:  d.enqueued.Load(),
		Dropped:   d.dropped.Load(),
		Delivered: d.delivered.Load(),
		Unreached: d.unreached.Load(),
		Failed:    d.failed.Load(),
	}
}

func (d *Dispatcher) worker(n int) {
	defer d.wg.Done()

	for j := range d.jobs {
		d.run(n, j)
	}
}

func (d *Dispatcher) run(worker int, j job) {
	logger := d.logger.With().Int("worker", worker).Str("job_id", j.id).Int64("notice_id", j.notice.ID).Logger()
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			d.failed.Add(1)
			logger.Error().Interface("panic", rec).Msg("Relay job panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(d.base, d.timeout)
	defer cancel()

	err := d.performer.Perform(ctx, j.notice)
	if err != nil && onlyUnreached(err) {
		d.unreached.Add(1)
		logger.Info().Int64("recipient_id", j.notice.RecipientID).Msg("Recipient not connected, notice not pushed")
		return
	}
	if err != nil {
		d.failed.Add(1)
		logger.Warn().Err(err).Dur("took", time.Since(start)).Msg("Relay job failed")
		return
	}

	d.delivered.Add(1)
	logger.Debug().Dur("took", time.Since(start)).Msg("Relay job done")
}

// onlyUnreached reports whether every error joined in err is realtime.ErrNoSubscribers.
func onlyUnreached(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !onlyUnreached(e) {
				return false
			}
		}
		return true
	}
	return errors.Is(err, realtime.ErrNoSubscribers)
}
