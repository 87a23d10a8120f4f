// Package scheduler drives the periodic scan-filter-dispatch-cache cycle
// that watches warranty deadlines and notifies recipients.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warrantly/expiry-notifier/internal/config"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
	repo "github.com/warrantly/expiry-notifier/internal/domain/repository"
	"github.com/warrantly/expiry-notifier/internal/notifiers"
)

// CycleStats reports what one scan cycle did.
type CycleStats struct {
	Found            int // triples within their per-recipient threshold
	Notified         int // dispatches with at least one leg delivered
	SkippedDedupe    int // already notified within the dedupe TTL
	SkippedNoChannel int // opted out or no usable channel after downgrade
	Failed           int // all legs failed; retried next cycle
}

// Scheduler owns the scan schedule. It is single-threaded with respect to
// itself: cycles never overlap, and an overrunning cycle simply delays the
// next tick.
type Scheduler struct {
	cfg        *config.Config
	logger     zerolog.Logger
	store      repo.WarrantyStore
	dedupe     repo.DedupeCache
	scan       repo.ScanCache
	history    repo.NotificationLog
	dispatcher notifiers.Resolver
	now        func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a new Scheduler.
func New(
	cfg *config.Config,
	logger *zerolog.Logger,
	store repo.WarrantyStore,
	dedupe repo.DedupeCache,
	scan repo.ScanCache,
	history repo.NotificationLog,
	dispatcher notifiers.Resolver,
) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		logger:     logger.With().Str("component", "scheduler").Logger(),
		store:      store,
		dedupe:     dedupe,
		scan:       scan,
		history:    history,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Start begins the loop after the configured startup delay. Calling Start
// while the loop is already running is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn().Msg("start called while already running, ignoring")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	s.mu.Unlock()

	s.logger.Info().
		Dur("interval", s.cfg.Scheduler.Interval).
		Dur("startup_delay", s.cfg.Scheduler.StartupDelay).
		Msg("scheduler starting")

	go s.run(ctx)
}

// Stop signals cancellation and waits up to grace for the current cycle to
// finish. A cycle that does not finish in time is abandoned, not killed.
func (s *Scheduler) Stop(grace time.Duration) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.running = false
	s.mu.Unlock()

	cancel()

	select {
	case <-done:
		s.logger.Info().Msg("scheduler stopped")
	case <-time.After(grace):
		s.logger.Warn().Dur("grace", grace).Msg("grace period elapsed, abandoning in-flight cycle")
	}
}

// run is the loop body: one cycle after the startup delay, then one per tick.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	select {
	case <-ctx.Done():
		return
	case <-time.After(s.cfg.Scheduler.StartupDelay):
	}

	s.cycle(ctx)

	ticker := time.NewTicker(s.cfg.Scheduler.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

// cycle runs one pass and logs the outcome. A failed cycle is retried at the
// next scheduled interval; it never crashes the loop.
func (s *Scheduler) cycle(ctx context.Context) {
	stats, err := s.RunOnce(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Warn().Err(err).Msg("scan cycle aborted, retrying next interval")
		return
	}
	s.logger.Info().
		Int("found", stats.Found).
		Int("notified", stats.Notified).
		Int("skipped_dedupe", stats.SkippedDedupe).
		Int("skipped_no_channel", stats.SkippedNoChannel).
		Int("failed", stats.Failed).
		Msg("scan cycle complete")
}

// RunOnce performs exactly one scan-filter-dispatch-cache pass synchronously.
func (s *Scheduler) RunOnce(ctx context.Context) (CycleStats, error) {
	var stats CycleStats
	asOf := s.now()

	candidates, err := s.store.FindApproachingDeadlines(ctx, asOf, s.cfg.Scheduler.OuterThresholdDays)
	if err != nil {
		// Store failures abort the whole cycle without touching caches.
		return stats, fmt.Errorf("scheduler: store query failed: %w", err)
	}

	due := s.filterDue(candidates, asOf, &stats)
	stats.Found = len(due)

	processed := s.dispatchAll(ctx, due, asOf, &stats)
	if ctx.Err() != nil {
		s.logger.Warn().
			Int("processed", processed).
			Int("total", len(due)).
			Msg("cycle abandoned before completion")
		return stats, ctx.Err()
	}

	// The read view always reflects true state, independent of whether the
	// notifications above succeeded, failed, or were deduped.
	s.rebuildSnapshots(ctx, due, asOf)

	return stats, nil
}

// filterDue applies the precise per-recipient threshold to the candidates
// returned under the store's generous outer bound. The window is inclusive
// on both ends; past deadlines are excluded.
func (s *Scheduler) filterDue(candidates []model.Candidate, asOf time.Time, stats *CycleStats) []model.Candidate {
	due := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Preference.OptedOut {
			stats.SkippedNoChannel++
			continue
		}
		threshold := c.Preference.ThresholdDays
		if threshold < 1 || threshold > 90 {
			s.logger.Warn().
				Stringer("record_id", c.RecordID).
				Stringer("recipient_id", c.RecipientID).
				Int("threshold_days", threshold).
				Msg("malformed preference threshold, skipping triple")
			continue
		}
		days := model.DaysUntil(asOf, c.Deadline)
		if days < 0 || days > threshold {
			continue
		}
		due = append(due, c)
	}
	return due
}

// dispatchAll fans the due triples out to a bounded worker pool. Recipients
// are independent work items; the dedupe cache is the only shared mutable
// state and supports concurrent access. Returns how many triples were
// handed to workers before cancellation.
func (s *Scheduler) dispatchAll(ctx context.Context, due []model.Candidate, asOf time.Time, stats *CycleStats) int {
	workers := s.cfg.Scheduler.Workers
	if workers > len(due) {
		workers = len(due)
	}
	if workers < 1 {
		return 0
	}

	var statsMu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan model.Candidate)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				s.processTriple(ctx, c, asOf, stats, &statsMu)
			}
		}()
	}

	processed := 0
feed:
	for _, c := range due {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- c:
			processed++
		}
	}
	close(jobs)
	wg.Wait()

	return processed
}

// processTriple handles one (record, recipient, preference) triple:
// dedupe check, channel resolution, dispatch, cache and history update.
// A per-triple failure never aborts the cycle.
func (s *Scheduler) processTriple(ctx context.Context, c model.Candidate, asOf time.Time, stats *CycleStats, statsMu *sync.Mutex) {
	log := s.logger.With().
		Stringer("record_id", c.RecordID).
		Stringer("recipient_id", c.RecipientID).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("triple processing panicked, skipping")
			statsMu.Lock()
			stats.Failed++
			statsMu.Unlock()
		}
	}()

	key := c.Key()
	seen, err := s.dedupe.Contains(ctx, key)
	if err != nil {
		// A broken dedupe cache must not suppress alerts; prefer the rare
		// duplicate over a missed deadline.
		log.Warn().Err(err).Msg("dedupe lookup failed, proceeding with dispatch")
	}
	if seen {
		statsMu.Lock()
		stats.SkippedDedupe++
		statsMu.Unlock()
		return
	}

	notifier, channel, ok := s.dispatcher.Resolve(c.Preference)
	if !ok {
		statsMu.Lock()
		stats.SkippedNoChannel++
		statsMu.Unlock()
		return
	}

	contact := model.Contact{Email: c.Preference.Email}
	if c.Preference.Phone != "" && c.Preference.PhoneVerified {
		contact.Phone = c.Preference.Phone
	}

	msg := model.Message{
		Kind:          model.KindWarrantyExpiring,
		RecordID:      c.RecordID,
		Label:         c.Label,
		DaysRemaining: model.DaysUntil(asOf, c.Deadline),
		Deadline:      c.Deadline,
	}

	if err := notifier.Send(ctx, contact, msg); err != nil {
		// Total failure: the dedupe key is withheld so the triple is
		// retried next cycle instead of being permanently suppressed.
		log.Warn().Err(err).Msg("dispatch failed on all legs, will retry next cycle")
		statsMu.Lock()
		stats.Failed++
		statsMu.Unlock()
		return
	}

	if err := s.dedupe.Insert(ctx, key, s.cfg.Cache.DedupeTTL); err != nil {
		log.Warn().Err(err).Msg("failed to insert dedupe key after successful dispatch")
	}

	if s.history != nil {
		rec := model.DeliveryRecord{
			RecordID:    c.RecordID,
			RecipientID: c.RecipientID,
			Kind:        model.KindWarrantyExpiring,
			Channel:     channel,
			SentAt:      s.now().UTC(),
		}
		if err := s.history.Record(ctx, rec); err != nil && !errors.Is(err, repo.ErrDuplicateRecord) {
			log.Warn().Err(err).Msg("failed to record delivery history")
		}
	}

	statsMu.Lock()
	stats.Notified++
	statsMu.Unlock()
}

// rebuildSnapshots overwrites each owner's scan cache entry from the full
// due set computed this cycle.
func (s *Scheduler) rebuildSnapshots(ctx context.Context, due []model.Candidate, asOf time.Time) {
	byOwner := make(map[uuid.UUID][]model.PendingNotification)
	for _, c := range due {
		byOwner[c.OwnerID] = append(byOwner[c.OwnerID], c.Pending(asOf))
	}

	ttl := s.cfg.Scheduler.ScanTTL()
	for ownerID, list := range byOwner {
		if err := s.scan.SetSnapshot(ctx, ownerID, list, ttl); err != nil {
			s.logger.Warn().Err(err).Stringer("owner_id", ownerID).Msg("failed to refresh scan snapshot")
		}
	}
}
