// package tasks runs relay syncs as detached, awaitable tasks.
package tasks

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/photon/internal/models"
	"github.com/desertthunder/photon/internal/shared"
)

// Sender delivers one payload to the relay.
type Sender interface {
	Sync(ctx context.Context, payload models.SyncPayload) (*models.RelayReply, error)
}

// Result is the outcome of one sync task.
type Result struct {
	Label models.Label
	Seq   uint64
	// Stale is set when a newer sync for the same label was dispatched before this one
	// finished. A stale sync that had not started sending is skipped and has no Reply.
	Stale bool
	Reply *models.RelayReply
	Err   error
}

// Task is a sync in flight. Callers may wait on it or drop it.
type Task struct {
	done   chan struct{}
	result Result
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

func (t *Task) finish(r Result) {
	t.result = r
	close(t.done)
}

// Done is closed when the task finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is done.
//
// The returned error is ctx's error; the sync's own error is in [Result.Err].
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Result returns the outcome without blocking. ok is false while the task runs.
func (t *Task) Result() (Result, bool) {
	select {
	case <-t.done:
		return t.result, true
	default:
		return Result{}, false
	}
}

// Completed returns a task that has already finished with r.
func Completed(r Result) *Task {
	t := newTask()
	t.finish(r)
	return t
}

// Options configures a [Dispatcher].
type Options struct {
	Rate     float64               // Syncs per second; zero or less means unlimited
	Burst    int                   // Token bucket size (default: 1)
	Logger   *log.Logger           // Defaults to a discarding logger
	Progress chan<- ProgressUpdate // Optional, never blocks the dispatcher
}

// Dispatcher sends payloads as detached tasks, paced by a token bucket.
//
// Each label has its own sequence counter and send lane. Sends for one label never
// overlap, and a sync that is superseded before its turn is skipped, so the last
// payload the relay sees for a label is always the newest. Results of superseded
// syncs are marked [Result.Stale] and never applied anywhere.
type Dispatcher struct {
	sender   Sender
	limiter  *rate.Limiter
	logger   *log.Logger
	progress chan<- ProgressUpdate

	mu    sync.Mutex
	seq   map[models.Label]uint64
	lanes map[models.Label]chan struct{}
	wg  sync.WaitGroup
}

// NewDispatcher creates a [Dispatcher] delivering through sender.
func NewDispatcher(sender Sender, opts Options) *Dispatcher {
	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	return &Dispatcher{
		sender:   sender,
		limiter:  rate.NewLimiter(limit, opts.Burst),
		logger:   logger,
		progress: opts.Progress,
		seq:      make(map[models.Label]uint64),
		lanes:    make(map[models.Label]chan struct{}),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (d *Dispatcher) sendProgress(update ProgressUpdate) {
	if d.progress == nil {
		return
	}
	select {
	case d.progress <- update:
	default:
	}
}

// Dispatch starts a sync of payload and returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, payload models.SyncPayload) *Task {
	label := payload.Emotion

	d.mu.Lock()
	d.seq[label]++
	seq := d.seq[label]
	d.mu.Unlock()

	task := newTask()
	d.sendProgress(queuedUpdate(label, seq))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		task.finish(d.run(ctx, label, seq, payload))
	}()
	return task
}

func (d *Dispatcher) run(ctx context.Context, label models.Label, seq uint64, payload models.SyncPayload) Result {
	res := Result{Label: label, Seq: seq}

	if err := d.limiter.Wait(ctx); err != nil {
		res.Err = err
		d.logger.Warn("sync not sent", "label", label, "seq", seq, "error", err)
		d.sendProgress(failedUpdate(label, seq, err))
		return res
	}

	lane := d.lane(label)
	select {
	case lane <- struct{}{}:
	case <-ctx.Done():
		res.Err = ctx.Err()
		d.logger.Warn("sync not sent", "label", label, "seq", seq, "error", res.Err)
		d.sendProgress(failedUpdate(label, seq, res.Err))
		return res
	}
	defer func() { <-lane }()

	if latest := d.Latest(label); latest > seq {
		res.Stale = true
		d.logger.Debug("skipping superseded sync", "label", label, "seq", seq, "latest", latest)
		d.sendProgress(supersededUpdate(label, seq, latest))
		return res
	}

	d.sendProgress(sendingUpdate(label, seq))
	res.Reply, res.Err = d.sender.Sync(ctx, payload)

	if latest := d.Latest(label); latest > seq {
		res.Stale = true
		d.logger.Debug("stale sync result", "label", label, "seq", seq, "latest", latest, "error", res.Err)
		d.sendProgress(supersededUpdate(label, seq, latest))
		return res
	}

	if res.Err != nil {
		d.logger.Warn("sync failed", "label", label, "seq", seq, "error", res.Err)
		d.sendProgress(failedUpdate(label, seq, res.Err))
		return res
	}

	d.logger.Debug("sync sent", "label", label, "seq", seq, "personalizing", payload.Personalizing)
	d.sendProgress(sentUpdate(label, seq))
	return res
}

// lane returns the single-slot semaphore serializing sends for label.
func (d *Dispatcher) lane(label models.Label) chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.lanes[label]
	if !ok {
		l = make(chan struct{}, 1)
		d.lanes[label] = l
	}
	return l
}

// Latest returns the most recent sequence dispatched for label.
func (d *Dispatcher) Latest(label models.Label) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq[label]
}

// Wait blocks until every dispatched task has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
