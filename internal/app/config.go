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
	"fmt"

	"github.com/agentberlin/streaksnake"
	"github.com/agentberlin/streaksnake/internal/types"
)

// GetConfigForDomain returns the harvest defaults of a leaderboard domain
func (a *App) GetConfigForDomain(urlStr string) (*types.ConfigResponse, error) {
	target, err := normalizeTarget(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	project, err := a.store.GetOrCreateProject(target.URL, target.Domain)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %v", err)
	}

	config, err := a.store.GetOrCreateConfig(project.ID)
	if err != nil {
		return nil, err
	}

	return &types.ConfigResponse{
		Domain:         target.Domain,
		Strategy:       config.Strategy,
		Limit:          config.Limit,
		Workers:        config.Workers,
		DropUnresolved: config.DropUnresolved,
		RespectRobots:  config.RespectRobots,
		UserAgent:      config.UserAgent,
	}, nil
}

// UpdateConfigForDomain stores the harvest defaults of a leaderboard domain
func (a *App) UpdateConfigForDomain(urlStr string, strategy string, limit, workers int, dropUnresolved, respectRobots bool, userAgent string) error {
	if err := validateStrategy(strategy); err != nil {
		return err
	}

	target, err := normalizeTarget(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	project, err := a.store.GetOrCreateProject(target.URL, target.Domain)
	if err != nil {
		return fmt.Errorf("failed to get project: %v", err)
	}

	return a.store.UpdateConfig(project.ID, strategy, limit, workers, dropUnresolved, respectRobots, userAgent)
}

func validateStrategy(strategy string) error {
	switch streaksnake.Strategy(strategy) {
	case streaksnake.StrategyScroll, streaksnake.StrategyPaginate:
		return nil
	}
	return fmt.Errorf("unknown strategy %q (want %q or %q)", strategy, streaksnake.StrategyScroll, streaksnake.StrategyPaginate)
}
