// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/okian/peereval/internal/adapters/repository"
	"github.com/okian/peereval/internal/domain/dedupe"
	"github.com/okian/peereval/internal/domain/model"
	"github.com/okian/peereval/internal/domain/rotation"
	"github.com/okian/peereval/internal/domain/scoring"
	"github.com/okian/peereval/internal/domain/submission"
	"github.com/okian/peereval/internal/domain/types"
	"github.com/okian/peereval/pkg/logger"
	"github.com/okian/peereval/pkg/metrics"
)

const (
	defaultMaxWeek    = 15
	defaultDedupeSize = 10_000
)

// state is the snapshot being served plus how fresh it is.
// It is replaced as a whole, never mutated.
type state struct {
	snap        model.Snapshot
	stale       bool
	lastErr     string
	lastAttempt time.Time
}

// Service implements the API dependencies for peer evaluation.
type Service struct {
	mu sync.RWMutex

	// Core components
	store repository.Store
	acks  dedupe.Cache[types.Ack]

	// sem serialises every store round trip.
	sem     *semaphore.Weighted
	flight  singleflight.Group
	current atomic.Pointer[state]

	// Configuration
	maxWeek    int
	dedupeSize int
	now        func() time.Time
	newID      func() string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
// Until the first load the service serves an empty, stale snapshot.
func New(opts ...Option) *Service {
	s := &Service{
		sem:        semaphore.NewWeighted(1),
		maxWeek:    defaultMaxWeek,
		dedupeSize: defaultDedupeSize,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	s.acks = dedupe.NewInMemory[types.Ack](dedupe.WithMaxSize(s.dedupeSize))
	s.current.Store(&state{stale: true})
	return s
}

// Start performs the initial load. A failed load is logged and the
// service keeps serving the empty stale snapshot.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}

	s.logger.Info(ctx, "starting peer evaluation service...")
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn(ctx, "initial load failed, serving empty snapshot", logger.Error(err))
	}

	s.started = true
	info := s.SnapshotInfo()
	s.logger.Info(ctx, "peer evaluation service started",
		logger.Int("members", info.Members),
		logger.Int("records", info.Records),
		logger.Bool("stale", info.Stale),
		logger.Int("maxWeek", s.maxWeek),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop marks the service as stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "peer evaluation service stopped")
}

// Refresh reloads the snapshot from the store. Concurrent calls share
// one round trip.
func (s *Service) Refresh(ctx context.Context) (types.SnapshotInfo, error) {
	if s.store == nil {
		return s.SnapshotInfo(), ErrNoStore
	}
	if err := ctx.Err(); err != nil {
		return s.SnapshotInfo(), err
	}
	ch := s.flight.DoChan("refresh", func() (any, error) {
		// Every coalesced caller waits on this load; one of them leaving must not cancel it.
		shared := context.WithoutCancel(ctx)
		if err := s.sem.Acquire(shared, 1); err != nil {
			return nil, err
		}
		defer s.sem.Release(1)
		return nil, s.reloadLocked(shared)
	})
	select {
	case <-ctx.Done():
		return s.SnapshotInfo(), ctx.Err()
	case res := <-ch:
		return s.SnapshotInfo(), res.Err
	}
}

// reloadLocked replaces the snapshot. The caller must hold sem.
// On failure the previous snapshot is kept and marked stale.
func (s *Service) reloadLocked(ctx context.Context) error {
	attempt := s.now()
	snap, err := s.store.Load(ctx)
	if err != nil {
		next := *s.current.Load()
		next.stale = true
		next.lastErr = err.Error()
		next.lastAttempt = attempt
		s.current.Store(&next)

		metrics.RecordReload("error")
		metrics.UpdateSnapshotStale(true)
		metrics.RecordErrorByComponent("service", "reload")
		s.logger.Warn(ctx, "snapshot reload failed, keeping previous snapshot", logger.Error(err))
		return fmt.Errorf("reload snapshot: %w", err)
	}

	s.current.Store(&state{snap: snap, lastAttempt: attempt})
	metrics.RecordReload("ok")
	metrics.UpdateSnapshot(len(snap.Members), len(snap.Records), snap.LoadedAt)
	metrics.UpdateSnapshotStale(false)
	s.logger.Debug(ctx, "snapshot reloaded",
		logger.Int("members", len(snap.Members)),
		logger.Int("records", len(snap.Records)),
	)
	return nil
}

// Snapshot returns the snapshot currently served.
func (s *Service) Snapshot() model.Snapshot {
	return s.current.Load().snap
}

// SnapshotInfo describes the snapshot currently served.
func (s *Service) SnapshotInfo() types.SnapshotInfo {
	st := s.current.Load()
	return types.SnapshotInfo{
		Members:     len(st.snap.Members),
		Records:     len(st.snap.Records),
		LoadedAt:    st.snap.LoadedAt,
		Stale:       st.stale,
		LastError:   st.lastErr,
		LastAttempt: st.lastAttempt,
	}
}

// Members returns the roster in store order.
func (s *Service) Members() []types.Member {
	return types.FromMembers(s.Snapshot().Members)
}

// Next returns who evaluator must score next in week, plus everyone
// still pending after that.
func (s *Service) Next(ctx context.Context, week int, evaluator string) (types.Assignment, error) {
	evaluator = strings.TrimSpace(evaluator)
	if evaluator == "" {
		return types.Assignment{}, fmt.Errorf("%w: evaluator not set", submission.ErrMissingSelection)
	}
	if err := submission.CheckWeek(week, s.maxWeek); err != nil {
		return types.Assignment{}, err
	}

	st := s.current.Load()
	ev, err := submission.ResolveEvaluator(st.snap, evaluator)
	if err != nil && st.stale && errors.Is(err, submission.ErrUnknownMember) {
		// The roster itself may be what failed to load.
		if _, rerr := s.Refresh(ctx); rerr != nil {
			return types.Assignment{}, s.unavailable(s.current.Load(), err)
		}
		st = s.current.Load()
		ev, err = submission.ResolveEvaluator(st.snap, evaluator)
	}
	if err != nil {
		return types.Assignment{}, err
	}

	pending := rotation.Pending(st.snap.Members, st.snap.Records, week, ev.Name)
	a := types.Assignment{
		Week:      week,
		OddWeek:   rotation.IsOddWeek(week),
		Evaluator: ev.Name,
		Remaining: types.FromMembers(pending),
		Stale:     st.stale,
	}
	if len(pending) > 0 {
		next := types.FromMember(pending[0])
		a.Next = &next
	}
	metrics.RecordAssignment(a.Next != nil)
	s.logger.Debug(ctx, "assignment served",
		logger.String("evaluator", ev.Name),
		logger.Int("week", week),
		logger.Int("remaining", len(pending)),
	)
	return a, nil
}

// Submit validates req against the current snapshot, appends the record
// and reloads. A repeated submission id returns the first Ack unchanged.
func (s *Service) Submit(ctx context.Context, req submission.Request) (types.Ack, error) {
	if s.store == nil {
		return types.Ack{}, ErrNoStore
	}

	id := strings.TrimSpace(req.SubmissionID)
	if ack, ok := s.duplicate(ctx, id); ok {
		return ack, nil
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return types.Ack{}, err
	}
	defer s.sem.Release(1)

	// A concurrent request with the same id may have finished while we waited.
	if ack, ok := s.duplicate(ctx, id); ok {
		return ack, nil
	}

	// Never pick a target from a snapshot that may miss earlier appends.
	if s.current.Load().stale {
		if err := s.reloadLocked(ctx); err != nil {
			metrics.RecordSubmission("store_error")
			return types.Ack{}, fmt.Errorf("%w: %w", submission.ErrStoreUnavailable, err)
		}
	}

	v, err := submission.Validate(s.current.Load().snap, req, s.maxWeek)
	if err != nil {
		metrics.RecordSubmission("invalid")
		s.logger.Debug(ctx, "submission rejected",
			logger.String("evaluator", req.Evaluator),
			logger.Int("week", req.Week),
			logger.Error(err),
		)
		return types.Ack{}, err
	}

	rec := v.Record()
	if err := s.store.Append(ctx, rec); err != nil {
		metrics.RecordSubmission("store_error")
		metrics.RecordErrorByComponent("service", "append")
		s.logger.Error(ctx, "append failed",
			logger.String("evaluator", rec.Evaluator),
			logger.String("evaluated", rec.Evaluated),
			logger.Error(err),
		)
		return types.Ack{}, fmt.Errorf("%w: %w", submission.ErrStoreUnavailable, err)
	}

	if id == "" {
		id = s.newID()
	}
	ack := types.Ack{
		SubmissionID: id,
		Week:         rec.Week,
		Evaluator:    rec.Evaluator,
		Evaluated:    rec.Evaluated,
		Score:        rec.Score,
		RecordedAt:   s.now(),
	}

	// The stale snapshot lacks the new record, so it cannot tell what is next.
	if err := s.reloadLocked(ctx); err != nil {
		ack.Stale = true
	} else {
		snap := s.current.Load().snap
		if next, ok := rotation.SelectNext(snap.Members, snap.Records, rec.Week, rec.Evaluator); ok {
			m := types.FromMember(next)
			ack.Next = &m
		}
	}

	s.acks.Record(ctx, id, ack)
	metrics.RecordSubmission("ok")
	s.logger.Info(ctx, "evaluation recorded",
		logger.String("submissionID", id),
		logger.String("evaluator", rec.Evaluator),
		logger.String("evaluated", rec.Evaluated),
		logger.Int("week", rec.Week),
		logger.Float64("score", rec.Score),
		logger.Bool("stale", ack.Stale),
	)
	return ack, nil
}

// unavailable reports a lookup miss on a stale snapshot as a store failure.
func (s *Service) unavailable(st *state, miss error) error {
	metrics.RecordErrorByComponent("service", "stale_lookup")
	if st.lastErr != "" {
		return fmt.Errorf("%w: roster not confirmed (%s): %v", submission.ErrStoreUnavailable, st.lastErr, miss)
	}
	return fmt.Errorf("%w: roster not confirmed: %v", submission.ErrStoreUnavailable, miss)
}

func (s *Service) duplicate(ctx context.Context, id string) (types.Ack, bool) {
	if id == "" {
		return types.Ack{}, false
	}
	ack, ok := s.acks.Lookup(ctx, id)
	if !ok {
		return types.Ack{}, false
	}
	metrics.RecordSubmissionDuplicate()
	s.logger.Debug(ctx, "duplicate submission", logger.String("submissionID", id))
	ack.Duplicate = true
	return ack, true
}

// Averages returns the averages table in roster order.
func (s *Service) Averages() []types.Average {
	snap := s.Snapshot()
	rows := scoring.Averages(snap.Members, snap.Records)
	out := make([]types.Average, len(rows))
	for i, r := range rows {
		out[i] = types.FromAverage(r)
	}
	return out
}

// Average returns the averages row for one member.
func (s *Service) Average(name string) (types.Average, error) {
	snap := s.Snapshot()
	m, ok := snap.Member(strings.TrimSpace(name))
	if !ok {
		var err error = &submission.UnknownMemberError{
			Name:       name,
			Suggestion: submission.Suggest(name, snap.Names()),
		}
		if st := s.current.Load(); st.stale {
			err = s.unavailable(st, err)
		}
		return types.Average{}, err
	}
	avg, valid := scoring.AverageScore(snap.Records, m.Name)
	row := scoring.MemberAverage{Member: m, Average: avg, Valid: valid}
	for _, r := range snap.Records {
		if r.Evaluated == m.Name && !r.Unscored {
			row.Count++
		}
	}
	return types.FromAverage(row), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	info := s.SnapshotInfo()
	stats := map[string]interface{}{
		"started":       started,
		"maxWeek":       s.maxWeek,
		"dedupeSize":    s.dedupeSize,
		"dedupeEntries": s.acks.Size(),
		"members":       info.Members,
		"records":       info.Records,
		"stale":         info.Stale,
		"loadedAt":      info.LoadedAt,
	}
	if info.LastError != "" {
		stats["lastError"] = info.LastError
	}
	metrics.UpdateSnapshotStale(info.Stale)
	return stats
}
