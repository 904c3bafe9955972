package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/mkarras/chess-analysis/pkg/core"
	"github.com/mkarras/chess-analysis/pkg/security"
)

// registry is the only state shared across workers: job id → state, the
// per-game active index, and batch membership. Every write takes the one
// mutex, which makes per-id updates linearizable; reads hand out snapshots.
// It is owned by a single scheduler instance, never ambient, so independent
// schedulers cannot interfere.
type registry struct {
	mu      sync.RWMutex
	jobs    map[string]*jobEntry
	active  map[string]string // game id → job id, queued or running only
	batches map[string]*batchEntry
}

type jobEntry struct {
	state  core.JobState
	ref    core.GameRef
	cfg    core.EngineConfig
	cancel context.CancelFunc
}

type batchEntry struct {
	id        string
	jobIDs    []string
	createdAt time.Time
}

func newRegistry() *registry {
	return &registry{
		jobs:    make(map[string]*jobEntry),
		active:  make(map[string]string),
		batches: make(map[string]*batchEntry),
	}
}

// reserve admits a job for a game id, enforcing at most one active job per
// game. The returned snapshot has status queued.
func (r *registry) reserve(id string, ref core.GameRef, cfg core.EngineConfig, batchID string) (core.JobState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.active[ref.ID]; busy {
		return core.JobState{}, core.ErrDuplicateGame
	}

	entry := &jobEntry{
		state: core.JobState{
			ID:        id,
			GameID:    ref.ID,
			BatchID:   batchID,
			Status:    core.StatusQueued,
			CreatedAt: time.Now().UTC(),
		},
		ref: ref,
		cfg: cfg,
	}
	r.jobs[id] = entry
	r.active[ref.ID] = id
	return entry.state, nil
}

// activeJob returns the queued-or-running job id for a game, if any.
func (r *registry) activeJob(gameID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.active[gameID]
	return id, ok
}

// start moves a queued job to running and installs its cancel func. It
// returns the job's game ref and config, and false when the job was
// cancelled while queued.
func (r *registry) start(id string, cancel context.CancelFunc) (core.GameRef, core.EngineConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.jobs[id]
	if !ok || entry.state.Status != core.StatusQueued {
		return core.GameRef{}, core.EngineConfig{}, false
	}
	now := time.Now().UTC()
	entry.state.Status = core.StatusRunning
	entry.state.StartedAt = &now
	entry.cancel = cancel
	return entry.ref, entry.cfg, true
}

// setTotalPly records the replayed game length for progress reporting.
func (r *registry) setTotalPly(id string, totalPly int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.jobs[id]; ok {
		entry.state.TotalPly = totalPly
	}
}

// advance records that plies [0, done) are fully evaluated.
func (r *registry) advance(id string, done int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.jobs[id]; ok && done > entry.state.Ply {
		entry.state.Ply = done
	}
}

// finish moves a job to a terminal state and releases the game id. The
// transition is a no-op when the job is already terminal.
func (r *registry) finish(id string, status core.JobStatus, err error) (core.JobState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.jobs[id]
	if !ok || entry.state.Status.Terminal() {
		return core.JobState{}, false
	}
	return r.finishLocked(entry, status, err), true
}

func (r *registry) finishLocked(entry *jobEntry, status core.JobStatus, err error) core.JobState {
	now := time.Now().UTC()
	entry.state.Status = status
	entry.state.EndedAt = &now
	if err != nil {
		entry.state.Err = security.SanitizeErrorMessage(err.Error())
		entry.state.Cause = core.Classify(err)
	}
	entry.cancel = nil
	if r.active[entry.state.GameID] == entry.state.ID {
		delete(r.active, entry.state.GameID)
	}
	return entry.state
}

// requestCancel resolves a cancellation under the one lock, so a queued
// job cannot slip into running between the status check and the
// transition. A still-queued job is finished as cancelled and its final
// state returned with done=true; a running job yields its installed
// cancel func for the caller to invoke; a terminal job yields neither.
func (r *registry) requestCancel(id string) (final core.JobState, cancel context.CancelFunc, done bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.jobs[id]
	if !ok {
		return core.JobState{}, nil, false, core.ErrUnknownJob
	}
	switch entry.state.Status {
	case core.StatusQueued:
		return r.finishLocked(entry, core.StatusCancelled, nil), nil, true, nil
	case core.StatusRunning:
		return core.JobState{}, entry.cancel, false, nil
	default:
		return core.JobState{}, nil, false, nil
	}
}

// snapshot returns a copy of a job's state.
func (r *registry) snapshot(id string) (core.JobState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.jobs[id]
	if !ok {
		return core.JobState{}, core.ErrUnknownJob
	}
	return entry.state, nil
}

// addBatch records a bulk submission's membership.
func (r *registry) addBatch(id string, jobIDs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[id] = &batchEntry{
		id:        id,
		jobIDs:    append([]string(nil), jobIDs...),
		createdAt: time.Now().UTC(),
	}
}

// batchSnapshot returns the aggregate batch view plus the member states.
// Completed counts terminal members; members already retired by the
// retention sweeper count as completed.
func (r *registry) batchSnapshot(id string) (core.BatchState, []core.JobState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	batch, ok := r.batches[id]
	if !ok {
		return core.BatchState{}, nil, core.ErrUnknownBatch
	}

	state := core.BatchState{
		ID:        batch.id,
		JobIDs:    append([]string(nil), batch.jobIDs...),
		Total:     len(batch.jobIDs),
		CreatedAt: batch.createdAt,
	}
	members := make([]core.JobState, 0, len(batch.jobIDs))
	for _, jobID := range batch.jobIDs {
		entry, ok := r.jobs[jobID]
		if !ok {
			state.Completed++
			continue
		}
		if entry.state.Status.Terminal() {
			state.Completed++
		}
		members = append(members, entry.state)
	}
	return state, members, nil
}

// batchMembers returns the member job ids of a batch.
func (r *registry) batchMembers(id string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	batch, ok := r.batches[id]
	if !ok {
		return nil, core.ErrUnknownBatch
	}
	return append([]string(nil), batch.jobIDs...), nil
}

// prune retires terminal jobs that ended before cutoff, plus batches whose
// members are all gone.
func (r *registry) prune(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.jobs {
		if entry.state.Status.Terminal() && entry.state.EndedAt != nil && entry.state.EndedAt.Before(cutoff) {
			delete(r.jobs, id)
			removed++
		}
	}
	for id, batch := range r.batches {
		gone := true
		for _, jobID := range batch.jobIDs {
			if _, ok := r.jobs[jobID]; ok {
				gone = false
				break
			}
		}
		if gone {
			delete(r.batches, id)
		}
	}
	return removed
}

// counts tallies jobs per status.
func (r *registry) counts() map[core.JobStatus]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[core.JobStatus]int)
	for _, entry := range r.jobs {
		out[entry.state.Status]++
	}
	return out
}
