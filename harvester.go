// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package streaksnake

import (
	"context"
	"errors"
	"sync"

	"github.com/agentberlin/streaksnake/storage"
	"go.uber.org/zap"
)

// OnProgressFunc is called after each entry's profile has been processed.
type OnProgressFunc func(Progress)

// OnRecordFunc is called for each record added to the result, in order.
type OnRecordFunc func(position int, record HarvestRecord)

// OnDiagnosticFunc is called for each entry-scoped failure.
type OnDiagnosticFunc func(Diagnostic)

// OnStateChangeFunc is called on every lifecycle transition.
type OnStateChangeFunc func(State)

// Harvester drives one leaderboard harvest at a time: it reveals rows,
// extracts and deduplicates entries, then resolves each entry's social links.
type Harvester struct {
	config   *Config
	launcher Launcher
	store    storage.Storage
	robots   *RobotsChecker

	onProgress    OnProgressFunc
	onRecord      OnRecordFunc
	onDiagnostic  OnDiagnosticFunc
	onStateChange OnStateChangeFunc

	state State
	mutex sync.RWMutex
}

// NewHarvester returns a harvester acquiring sessions from launcher.
// If config is nil, NewDefaultConfig is used; zero fields take defaults.
func NewHarvester(launcher Launcher, config *Config) *Harvester {
	if config == nil {
		config = NewDefaultConfig()
	}
	cfg := config.withDefaults()
	return &Harvester{
		config:   cfg,
		launcher: launcher,
		robots:   NewRobotsChecker(cfg.UserAgent),
		state:    StateIdle,
	}
}

// Config returns the effective configuration.
func (h *Harvester) Config() *Config {
	return h.config
}

// SetStorage overrides the per-run in-memory admission storage. A storage
// set here is shared by every subsequent Run.
func (h *Harvester) SetStorage(s storage.Storage) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.store = s
}

// SetRobotsChecker replaces the robots.txt checker used when RespectRobots is set.
func (h *Harvester) SetRobotsChecker(rc *RobotsChecker) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.robots = rc
}

func (h *Harvester) SetOnProgress(f OnProgressFunc) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.onProgress = f
}

func (h *Harvester) SetOnRecord(f OnRecordFunc) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.onRecord = f
}

func (h *Harvester) SetOnDiagnostic(f OnDiagnosticFunc) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.onDiagnostic = f
}

func (h *Harvester) SetOnStateChange(f OnStateChangeFunc) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.onStateChange = f
}

// State returns the state of the current or last run.
func (h *Harvester) State() State {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.state
}

func (h *Harvester) callOnProgress(p Progress) {
	h.mutex.RLock()
	callback := h.onProgress
	h.mutex.RUnlock()

	if callback != nil {
		callback(p)
	}
}

func (h *Harvester) callOnRecord(position int, r HarvestRecord) {
	h.mutex.RLock()
	callback := h.onRecord
	h.mutex.RUnlock()

	if callback != nil {
		callback(position, r)
	}
}

func (h *Harvester) callOnDiagnostic(d Diagnostic) {
	h.mutex.RLock()
	callback := h.onDiagnostic
	h.mutex.RUnlock()

	if callback != nil {
		callback(d)
	}
}

// run holds the per-run state of a Harvester.
type run struct {
	*Harvester
	cfg    *Config
	log    *zap.Logger
	result *HarvestResult
	limit  int

	extractor *EntryExtractor
	dedup     *IdentityDeduplicator
	resolver  *SocialLinkResolver
	revealer  Revealer
}

func (r *run) transition(s State) {
	r.result.State = s
	r.mutex.Lock()
	r.state = s
	callback := r.onStateChange
	r.mutex.Unlock()

	r.log.Debug("state", zap.String("state", string(s)))
	if callback != nil {
		callback(s)
	}
}

func (r *run) diagnose(err error, name string) {
	d := diagnosticFrom(err, name)
	r.result.Diagnostics = append(r.result.Diagnostics, d)
	r.log.Warn("entry failed",
		zap.String("kind", string(d.Kind)),
		zap.String("url", d.URL),
		zap.String("name", d.Name),
		zap.String("error", d.Message))
	r.callOnDiagnostic(d)
}

// abort ends the run with an empty result.
func (r *run) abort(err error) (*HarvestResult, error) {
	r.result.Records = []HarvestRecord{}
	r.result.LimitReached = false
	r.transition(StateAborted)
	r.log.Error("harvest aborted", zap.Error(err))
	return r.result, err
}

// cancel ends the run keeping what was collected so far.
func (r *run) cancel(ctx context.Context) (*HarvestResult, error) {
	r.transition(StateCancelled)
	r.log.Info("harvest cancelled", zap.Int("records", len(r.result.Records)))
	return r.result, ctx.Err()
}

// Run harvests target, admitting at most limit entries (0 = unlimited).
// Only setup failures are returned as errors, with an empty Aborted result.
// A cancelled ctx returns the partial result together with ctx.Err().
// The session is released exactly once on every path.
func (h *Harvester) Run(ctx context.Context, target string, limit int) (*HarvestResult, error) {
	if limit < 0 {
		limit = 0
	}
	cfg := h.config
	r := &run{
		Harvester: h,
		cfg:       cfg,
		log:       cfg.Logger.With(zap.String("target", target)),
		result:    newResult(target),
		limit:     limit,
	}
	r.transition(StateIdle)

	if err := r.prepare(ctx, target); err != nil {
		return r.abort(err)
	}

	sess, err := h.launcher.NewSession(ctx)
	if err != nil {
		return r.abort(wrapError(KindSetup, target, err, "launching browser session"))
	}
	var closeOnce sync.Once
	release := func() {
		closeOnce.Do(func() {
			if err := sess.Close(); err != nil {
				r.log.Warn("closing session", zap.Error(err))
			}
		})
	}
	defer release()
	r.transition(StateSessionActive)

	if err := r.openListing(ctx, sess, target); err != nil {
		if ctx.Err() != nil {
			return r.cancel(ctx)
		}
		return r.abort(err)
	}

	entries, err := r.collect(ctx, sess)
	if err != nil {
		return r.cancel(ctx)
	}

	r.transition(StateResolving)
	if cfg.Workers > 1 && len(entries) > 1 {
		err = r.resolveConcurrently(ctx, sess, entries)
	} else {
		err = r.resolveSequentially(ctx, sess, entries)
	}
	if err != nil {
		return r.cancel(ctx)
	}

	release()
	r.transition(StateFinished)
	r.log.Info("harvest finished",
		zap.Int("records", len(r.result.Records)),
		zap.Int("diagnostics", len(r.result.Diagnostics)),
		zap.Bool("limit_reached", r.result.LimitReached))
	return r.result, nil
}

// prepare builds the run's components. Every failure here is a setup failure.
func (r *run) prepare(ctx context.Context, target string) error {
	if _, err := urlParser.Parse(target); err != nil {
		return wrapError(KindSetup, target, err, "invalid target URL")
	}

	if r.cfg.RespectRobots {
		r.mutex.RLock()
		rc := r.robots
		r.mutex.RUnlock()
		allowed, err := rc.Allowed(ctx, target)
		if err != nil {
			r.log.Warn("robots.txt unavailable, continuing", zap.Error(err))
		}
		if !allowed {
			return wrapError(KindSetup, target, ErrRobotsDisallowed, "robots.txt check")
		}
	}

	classifier, err := NewLinkClassifier(r.cfg.SiteURL, r.cfg.Rules...)
	if err != nil {
		return wrapError(KindSetup, target, err, "building link classifier")
	}

	r.mutex.RLock()
	store := r.store
	r.mutex.RUnlock()
	r.dedup, err = NewIdentityDeduplicator(store)
	if err != nil {
		return wrapError(KindSetup, target, err, "initializing deduplication")
	}

	r.revealer, err = newRevealer(r.cfg, r.limit)
	if err != nil {
		return wrapError(KindSetup, target, err, "configuring reveal strategy")
	}

	r.extractor = &EntryExtractor{Selectors: r.cfg.Selectors, Origin: r.cfg.SiteURL, Logger: r.log}
	r.resolver = &SocialLinkResolver{
		Classifier:    classifier,
		LinkContainer: r.cfg.Selectors.LinkContainer,
		Timeout:       r.cfg.ProfileTimeout,
	}
	return nil
}

// openListing loads the leaderboard and waits for its first row.
func (r *run) openListing(ctx context.Context, sess Session, target string) error {
	if err := sess.Navigate(ctx, target); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrWaitTimeout) {
			return wrapError(KindNavigationTimeout, target, err, "loading leaderboard")
		}
		return wrapError(KindSetup, target, err, "loading leaderboard")
	}
	if _, err := sess.WaitFor(ctx, r.cfg.Selectors.Row, r.cfg.ListingTimeout); err != nil {
		if errors.Is(err, ErrWaitTimeout) {
			return wrapError(KindNavigationTimeout, target, err, "leaderboard rows never appeared")
		}
		return wrapError(KindSetup, target, err, "waiting for leaderboard rows")
	}
	return nil
}

// collect alternates extraction and reveal steps until the revealer is
// exhausted or the limit is reached. It returns entries in discovery order
// and fails only on cancellation.
//
// Every visible row is extracted on every pass: a reveal step may append,
// replace, reorder or re-surface rows, and identity dedup drops repeats.
// A row that failed to parse is reported once, keyed by its content.
func (r *run) collect(ctx context.Context, sess Session) ([]LeaderboardEntry, error) {
	var admitted []LeaderboardEntry
	failed := make(map[string]struct{})

	for {
		if err := ctx.Err(); err != nil {
			return admitted, err
		}
		r.transition(StateExtracting)

		rows, err := sess.FindAll(ctx, r.cfg.Selectors.Row)
		if err != nil {
			if ctx.Err() != nil {
				return admitted, ctx.Err()
			}
			r.diagnose(wrapError(KindParse, r.result.Target, err, "listing rows"), "")
			return admitted, nil
		}

		for _, row := range rows {
			entry, err := r.extractor.Extract(ctx, sess, row)
			if ctx.Err() != nil {
				return admitted, ctx.Err()
			}
			if err != nil {
				key := r.extractor.RowKey(ctx, sess, row)
				if _, reported := failed[key]; !reported {
					failed[key] = struct{}{}
					r.diagnose(err, entry.Name)
				}
				continue
			}
			fresh, err := r.dedup.Admit(entry)
			if err != nil {
				r.diagnose(wrapError(KindParse, entry.ProfileURL, err, "deduplicating %q", entry.Name), entry.Name)
				continue
			}
			if !fresh {
				continue
			}
			admitted = append(admitted, entry)
			if r.limit > 0 && len(admitted) >= r.limit {
				r.result.LimitReached = true
				r.log.Debug("limit reached", zap.Int("limit", r.limit))
				return admitted, nil
			}
		}

		r.transition(StateRevealing)
		more, err := r.revealer.Reveal(ctx, sess, len(admitted))
		if err != nil {
			if ctx.Err() != nil {
				return admitted, ctx.Err()
			}
			r.log.Warn("reveal step failed, stopping", zap.Error(err))
			return admitted, nil
		}
		if !more {
			return admitted, nil
		}
	}
}

func (r *run) record(position int, entry LeaderboardEntry, links SocialLinks, err error) {
	if err != nil {
		r.diagnose(err, entry.Name)
		if r.cfg.DropUnresolved {
			return
		}
		links = EmptySocialLinks()
	}
	rec := HarvestRecord{LeaderboardEntry: entry, Links: links, Resolved: err == nil}
	r.result.Records = append(r.result.Records, rec)
	r.callOnRecord(position, rec)
}

func (r *run) resolveSequentially(ctx context.Context, sess Session, entries []LeaderboardEntry) error {
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		links, err := r.resolver.Resolve(ctx, sess, entry)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		r.record(i, entry, links, err)
		r.callOnProgress(Progress{Processed: i + 1, Total: len(entries), Current: entry.Name})
	}
	return nil
}

type resolution struct {
	links SocialLinks
	err   error
	done  bool
}

// resolveConcurrently resolves entries on the primary session plus up to
// Workers-1 extra sessions. Records are emitted as soon as every earlier
// entry has been recorded, so they keep discovery order.
func (r *run) resolveConcurrently(ctx context.Context, primary Session, entries []LeaderboardEntry) error {
	sessions := []Session{primary}
	for i := 1; i < r.cfg.Workers && i < len(entries); i++ {
		extra, err := r.launcher.NewSession(ctx)
		if err != nil {
			r.log.Warn("extra session unavailable", zap.Int("worker", i), zap.Error(err))
			break
		}
		sessions = append(sessions, extra)
	}
	defer func() {
		for _, s := range sessions[1:] {
			if err := s.Close(); err != nil {
				r.log.Warn("closing worker session", zap.Error(err))
			}
		}
	}()

	results := make([]resolution, len(entries))
	var mutex sync.Mutex
	processed, next := 0, 0

	// flush records the contiguous run of finished entries from next.
	// Nothing is recorded once ctx is cancelled.
	flush := func() {
		for next < len(entries) && results[next].done && ctx.Err() == nil {
			res := results[next]
			r.record(next, entries[next], res.links, res.err)
			next++
		}
	}

	pool := NewWorkerPool(ctx, sessions, len(entries))
	for i, entry := range entries {
		i, entry := i, entry
		err := pool.Submit(func(sess Session) {
			if ctx.Err() != nil {
				return
			}
			links, err := r.resolver.Resolve(ctx, sess, entry)

			mutex.Lock()
			defer mutex.Unlock()
			results[i] = resolution{links: links, err: err, done: true}
			flush()
			if ctx.Err() != nil {
				return
			}
			processed++
			r.callOnProgress(Progress{Processed: processed, Total: len(entries), Current: entry.Name})
		})
		if err != nil {
			break
		}
	}
	pool.Close()

	// Without cancellation every entry finished and was flushed.
	return ctx.Err()
}
