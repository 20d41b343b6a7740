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

package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/agentberlin/streaksnake"
	"github.com/agentberlin/streaksnake/internal/store"
	"github.com/agentberlin/streaksnake/internal/types"
	"go.uber.org/zap"
)

// activeHarvest tracks a harvest in flight
type activeHarvest struct {
	projectID   uint
	runID       uint
	domain      string
	url         string
	cancel      context.CancelFunc
	statusMutex sync.RWMutex
	state       streaksnake.State
	progress    streaksnake.Progress
	records     int
	failures    int
	stopped     bool
}

func (ah *activeHarvest) snapshot() types.HarvestProgress {
	ah.statusMutex.RLock()
	defer ah.statusMutex.RUnlock()
	return types.HarvestProgress{
		ProjectID: ah.projectID,
		RunID:     ah.runID,
		Domain:    ah.domain,
		URL:       ah.url,
		State:     string(ah.state),
		Processed: ah.progress.Processed,
		Total:     ah.progress.Total,
		Current:   ah.progress.Current,
		Records:   ah.records,
		Failures:  ah.failures,
	}
}

// harvestSettings is a request merged with the project's stored defaults
type harvestSettings struct {
	strategy       string
	limit          int
	workers        int
	dropUnresolved bool
	respectRobots  bool
	userAgent      string
}

func mergeSettings(req types.HarvestRequest, stored *store.Config) harvestSettings {
	s := harvestSettings{
		strategy:       stored.Strategy,
		limit:          stored.Limit,
		workers:        stored.Workers,
		dropUnresolved: stored.DropUnresolved,
		respectRobots:  stored.RespectRobots,
		userAgent:      stored.UserAgent,
	}
	if req.Strategy != "" {
		s.strategy = req.Strategy
	}
	if req.Limit > 0 {
		s.limit = req.Limit
	}
	if req.Workers > 0 {
		s.workers = req.Workers
	}
	if req.UserAgent != "" {
		s.userAgent = req.UserAgent
	}
	if req.DropUnresolved != nil {
		s.dropUnresolved = *req.DropUnresolved
	}
	if req.RespectRobots != nil {
		s.respectRobots = *req.RespectRobots
	}
	if s.strategy == "" {
		s.strategy = string(streaksnake.StrategyScroll)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// buildConfig builds the harvester configuration for a target
func (a *App) buildConfig(target *normalizedTarget, s harvestSettings) *streaksnake.Config {
	cfg := streaksnake.NewDefaultConfig()
	cfg.SiteURL = target.Origin
	cfg.Strategy = streaksnake.Strategy(s.strategy)
	cfg.Workers = s.workers
	cfg.DropUnresolved = s.dropUnresolved
	cfg.RespectRobots = s.respectRobots
	if s.userAgent != "" {
		cfg.UserAgent = s.userAgent
	}
	cfg.Logger = a.logger.With(zap.String("domain", target.Domain))
	if a.configHook != nil {
		a.configHook(cfg)
	}
	return cfg
}

// Harvest runs one harvest to completion, persisting records and
// diagnostics as they are produced. The returned run reflects the terminal
// state; setup failures are returned as errors after the run is recorded
// as aborted.
func (a *App) Harvest(ctx context.Context, req types.HarvestRequest) (*types.RunInfo, error) {
	if req.Strategy != "" {
		if err := validateStrategy(req.Strategy); err != nil {
			return nil, err
		}
	}

	target, err := normalizeTarget(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	project, err := a.store.GetOrCreateProject(target.URL, target.Domain)
	if err != nil {
		return nil, fmt.Errorf("failed to get/create project: %v", err)
	}

	stored, err := a.store.GetOrCreateConfig(project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %v", err)
	}
	settings := mergeSettings(req, stored)

	if req.SaveAsDefault {
		if err := a.store.UpdateConfig(project.ID, settings.strategy, settings.limit, settings.workers,
			settings.dropUnresolved, settings.respectRobots, settings.userAgent); err != nil {
			return nil, err
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ah := &activeHarvest{
		projectID: project.ID,
		domain:    target.Domain,
		url:       target.URL,
		cancel:    cancel,
		state:     streaksnake.StateIdle,
	}

	a.harvestsMutex.Lock()
	if _, busy := a.activeHarvests[project.ID]; busy {
		a.harvestsMutex.Unlock()
		return nil, fmt.Errorf("harvest already in progress for %s", target.Domain)
	}
	a.activeHarvests[project.ID] = ah
	a.harvestsMutex.Unlock()

	defer func() {
		a.harvestsMutex.Lock()
		delete(a.activeHarvests, project.ID)
		a.harvestsMutex.Unlock()
	}()

	run, err := a.store.CreateRun(project.ID, target.URL, settings.strategy, settings.limit)
	if err != nil {
		return nil, err
	}
	ah.statusMutex.Lock()
	ah.runID = run.ID
	ah.statusMutex.Unlock()

	log := a.logger.With(zap.Uint("run", run.ID), zap.String("url", target.URL))
	log.Info("harvest starting",
		zap.String("strategy", settings.strategy),
		zap.Int("limit", settings.limit),
		zap.Int("workers", settings.workers))
	a.emitter.Emit(EventHarvestStarted, ah.snapshot())

	harvester := streaksnake.NewHarvester(a.launcher, a.buildConfig(target, settings))
	a.wireCallbacks(harvester, ah, run.ID, log)

	result, runErr := harvester.Run(runCtx, target.URL, settings.limit)

	state, event := store.RunStateFinished, EventHarvestCompleted
	errMsg := ""
	switch result.State {
	case streaksnake.StateAborted:
		state, event = store.RunStateAborted, EventHarvestAborted
	case streaksnake.StateCancelled:
		state, event = store.RunStateCancelled, EventHarvestCancelled
	}
	if runErr != nil {
		errMsg = runErr.Error()
	}

	if err := a.store.FinishRun(run.ID, state, result.LimitReached, errMsg); err != nil {
		log.Error("recording run outcome", zap.Error(err))
		return nil, err
	}

	finished, err := a.store.GetRun(run.ID)
	if err != nil {
		return nil, err
	}
	info := runInfoFrom(finished, target.Domain)
	a.emitter.Emit(event, info)

	if result.State == streaksnake.StateAborted {
		return &info, runErr
	}
	if result.State == streaksnake.StateCancelled && !errors.Is(runErr, context.Canceled) {
		return &info, runErr
	}
	return &info, nil
}

func (a *App) wireCallbacks(h *streaksnake.Harvester, ah *activeHarvest, runID uint, log *zap.Logger) {
	h.SetOnStateChange(func(s streaksnake.State) {
		ah.statusMutex.Lock()
		ah.state = s
		ah.statusMutex.Unlock()
	})

	h.SetOnRecord(func(position int, rec streaksnake.HarvestRecord) {
		record := &store.Record{
			RunID:      runID,
			Position:   position,
			Name:       rec.Name,
			ProfileURL: rec.ProfileURL,
			StreakDays: rec.StreakDays,
			Twitter:    rec.Links.Twitter,
			LinkedIn:   rec.Links.LinkedIn,
			Facebook:   rec.Links.Facebook,
			Website:    rec.Links.Website,
			Resolved:   rec.Resolved,
		}
		if err := record.SetOtherLinksArray(rec.Links.OtherLinks); err != nil {
			log.Warn("encoding other links", zap.String("profile", rec.ProfileURL), zap.Error(err))
		}
		if err := a.store.SaveRecord(record); err != nil {
			log.Error("saving record", zap.String("profile", rec.ProfileURL), zap.Error(err))
			return
		}
		ah.statusMutex.Lock()
		ah.records++
		ah.statusMutex.Unlock()
	})

	h.SetOnDiagnostic(func(d streaksnake.Diagnostic) {
		if err := a.store.SaveDiagnostic(&store.Diagnostic{
			RunID:   runID,
			Kind:    string(d.Kind),
			URL:     d.URL,
			Name:    d.Name,
			Message: d.Message,
		}); err != nil {
			log.Error("saving diagnostic", zap.String("url", d.URL), zap.Error(err))
		}
		ah.statusMutex.Lock()
		ah.failures++
		ah.statusMutex.Unlock()
	})

	h.SetOnProgress(func(p streaksnake.Progress) {
		ah.statusMutex.Lock()
		ah.progress = p
		ah.statusMutex.Unlock()
		a.emitter.Emit(EventHarvestProgress, ah.snapshot())
	})
}
