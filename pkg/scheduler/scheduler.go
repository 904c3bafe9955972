package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/mkarras/chess-analysis/pkg/core"
	"github.com/mkarras/chess-analysis/pkg/job"
	"github.com/mkarras/chess-analysis/pkg/security"
)

// Scheduler owns the worker pool, the FIFO queue, and the job registry.
type Scheduler struct {
	slots    int
	runner   *job.Runner
	registry *registry
	logger   *slog.Logger

	// sem caps live engine sessions at the slot budget independently of
	// the pool size, so a refactor of the pool cannot silently break the
	// resource promise.
	sem *semaphore.Weighted

	mu      sync.Mutex
	cond    *sync.Cond
	pending []string
	closed  bool

	baseCtx  context.Context
	baseStop context.CancelFunc
	group    *errgroup.Group

	subsMu sync.Mutex
	subs   []chan core.Event

	retention time.Duration
	sweeper   *retentionSweeper
}

// New starts a scheduler with the given concurrency budget. The budget is
// supplied by the resource-detection collaborator; it is clamped against
// hard limits but never recomputed here.
func New(slots int, runner *job.Runner, opts ...Option) *Scheduler {
	slots = security.ClampSlots(slots)

	s := &Scheduler{
		slots:    slots,
		runner:   runner,
		registry: newRegistry(),
		logger:   slog.Default(),
		sem:      semaphore.NewWeighted(int64(slots)),
	}
	s.cond = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}

	s.baseCtx, s.baseStop = context.WithCancel(context.Background())
	s.group, _ = errgroup.WithContext(s.baseCtx)
	for i := 0; i < slots; i++ {
		s.group.Go(s.workLoop)
	}
	if s.retention > 0 {
		s.sweeper = startSweeper(s, s.retention)
	}
	return s
}

// Submit admits one job synchronously and returns its id. A game that
// already has a queued or running job is rejected with
// core.ErrDuplicateGame.
func (s *Scheduler) Submit(ref core.GameRef, cfg core.EngineConfig) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", core.ErrSchedulerClosed
	}
	s.mu.Unlock()

	id := uuid.New().String()
	if _, err := s.registry.reserve(id, ref, cfg, ""); err != nil {
		return "", err
	}
	s.enqueue(id)
	return id, nil
}

// SubmitBatch admits many games as one bulk submission. A game with an
// active job is coalesced: the existing job id joins the batch instead of
// a duplicate being queued. The returned ids are in submission order.
func (s *Scheduler) SubmitBatch(refs []core.GameRef, cfg core.EngineConfig) (string, []string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", nil, core.ErrSchedulerClosed
	}
	s.mu.Unlock()

	batchID := uuid.New().String()
	jobIDs := make([]string, 0, len(refs))
	for _, ref := range refs {
		id := uuid.New().String()
		_, err := s.registry.reserve(id, ref, cfg, batchID)
		if errors.Is(err, core.ErrDuplicateGame) {
			if existing, ok := s.registry.activeJob(ref.ID); ok {
				jobIDs = append(jobIDs, existing)
				continue
			}
			// The active job completed between the check and now; retry
			// the reservation once.
			if _, err = s.registry.reserve(id, ref, cfg, batchID); err != nil {
				return "", nil, err
			}
		} else if err != nil {
			return "", nil, err
		}
		jobIDs = append(jobIDs, id)
		s.enqueue(id)
	}
	s.registry.addBatch(batchID, jobIDs)
	return batchID, jobIDs, nil
}

// Status returns a snapshot of one job's state. It never blocks a worker.
func (s *Scheduler) Status(jobID string) (core.JobState, error) {
	return s.registry.snapshot(jobID)
}

// BatchStatus returns the aggregate completed/total view of a bulk
// submission plus each member's state.
func (s *Scheduler) BatchStatus(batchID string) (core.BatchState, []core.JobState, error) {
	return s.registry.batchSnapshot(batchID)
}

// Cancel requests cancellation of one job. Queued jobs are cancelled on
// the spot; running jobs are interrupted cooperatively at the next ply
// boundary, which tears their engine session down within one evaluation
// window. Cancelling a terminal job is a no-op.
func (s *Scheduler) Cancel(jobID string) error {
	final, cancel, done, err := s.registry.requestCancel(jobID)
	if err != nil {
		return err
	}
	switch {
	case done:
		s.emit(core.JobCancelled{Job: final, Timestamp: time.Now()})
	case cancel != nil:
		cancel()
	}
	return nil
}

// CancelBatch cancels every not-yet-terminal member of a bulk submission.
// Completed members are left standing.
func (s *Scheduler) CancelBatch(batchID string) error {
	members, err := s.registry.batchMembers(batchID)
	if err != nil {
		return err
	}
	for _, jobID := range members {
		if err := s.Cancel(jobID); err != nil && !errors.Is(err, core.ErrUnknownJob) {
			return err
		}
	}
	return nil
}

// Stats reports job counts per status.
func (s *Scheduler) Stats() map[core.JobStatus]int {
	return s.registry.counts()
}

// Subscribe returns a channel of lifecycle events. Slow subscribers drop
// events rather than blocking workers.
func (s *Scheduler) Subscribe() <-chan core.Event {
	ch := make(chan core.Event, 128)
	s.subsMu.Lock()
	s.subs = append(s.subs, ch)
	s.subsMu.Unlock()
	return ch
}

// Close stops admission, cancels all queued and running jobs, and waits
// for the workers to drain.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	pending := s.pending
	s.pending = nil
	s.cond.Broadcast()
	s.mu.Unlock()

	for _, id := range pending {
		if final, ok := s.registry.finish(id, core.StatusCancelled, nil); ok {
			s.emit(core.JobCancelled{Job: final, Timestamp: time.Now()})
		}
	}
	if s.sweeper != nil {
		s.sweeper.stop()
	}
	s.baseStop()
	return s.group.Wait()
}

func (s *Scheduler) enqueue(id string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		// Lost the race with Close; the job must not dangle as queued.
		s.registry.finish(id, core.StatusCancelled, nil)
		return
	}
	s.pending = append(s.pending, id)
	s.cond.Signal()
	s.mu.Unlock()
}

// next blocks until a job id is available or the scheduler closes.
func (s *Scheduler) next() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.pending) == 0 && !s.closed {
		s.cond.Wait()
	}
	if len(s.pending) == 0 {
		return "", false
	}
	id := s.pending[0]
	s.pending = s.pending[1:]
	return id, true
}

func (s *Scheduler) workLoop() error {
	for {
		id, ok := s.next()
		if !ok {
			return nil
		}
		s.runJob(id)
	}
}

func (s *Scheduler) runJob(id string) {
	jobCtx, cancel := context.WithCancel(s.baseCtx)
	defer cancel()

	ref, cfg, ok := s.registry.start(id, cancel)
	if !ok {
		// Cancelled while queued.
		return
	}

	if err := s.sem.Acquire(context.Background(), 1); err != nil {
		return
	}
	defer s.sem.Release(1)

	started := time.Now()
	state, _ := s.registry.snapshot(id)
	s.emit(core.JobStarted{Job: state, Timestamp: started})
	s.logger.Info("analysis started", "job_id", id, "game_id", ref.ID)

	report, err := s.runner.Run(jobCtx, ref, cfg, &registryTracker{registry: s.registry, jobID: id})
	switch {
	case err == nil:
		if final, ok := s.registry.finish(id, core.StatusCompleted, nil); ok {
			s.emit(core.JobCompleted{Job: final, Duration: time.Since(started), Timestamp: time.Now()})
		}
		s.logger.Info("analysis completed",
			"job_id", id, "game_id", ref.ID, "moves", len(report.Moves), "duration", time.Since(started))
	case errors.Is(err, context.Canceled):
		if final, ok := s.registry.finish(id, core.StatusCancelled, nil); ok {
			s.emit(core.JobCancelled{Job: final, Timestamp: time.Now()})
		}
		s.logger.Info("analysis cancelled", "job_id", id, "game_id", ref.ID)
	default:
		if final, ok := s.registry.finish(id, core.StatusFailed, err); ok {
			s.emit(core.JobFailed{Job: final, Err: err, Timestamp: time.Now()})
		}
		s.logger.Error("analysis failed",
			"job_id", id, "game_id", ref.ID, "cause", string(core.Classify(err)), "error", err)
	}
}

func (s *Scheduler) emit(ev core.Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// registryTracker funnels job progress into the shared registry.
type registryTracker struct {
	registry *registry
	jobID    string
}

func (t *registryTracker) Started(totalPly int) {
	t.registry.setTotalPly(t.jobID, totalPly)
}

func (t *registryTracker) Advanced(done int) {
	t.registry.advance(t.jobID, done)
}
