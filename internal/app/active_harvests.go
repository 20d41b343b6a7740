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
	"sort"

	"github.com/agentberlin/streaksnake/internal/types"
)

// GetActiveHarvests returns the progress of all active harvests
func (a *App) GetActiveHarvests() []types.HarvestProgress {
	a.harvestsMutex.RLock()
	defer a.harvestsMutex.RUnlock()

	progress := make([]types.HarvestProgress, 0, len(a.activeHarvests))
	for _, ah := range a.activeHarvests {
		progress = append(progress, ah.snapshot())
	}
	sort.Slice(progress, func(i, j int) bool { return progress[i].ProjectID < progress[j].ProjectID })
	return progress
}

// StopHarvest cancels the active harvest of a project. The harvest keeps
// what it collected and is recorded as cancelled.
func (a *App) StopHarvest(projectID uint) error {
	a.harvestsMutex.RLock()
	ah, exists := a.activeHarvests[projectID]
	a.harvestsMutex.RUnlock()

	if !exists {
		return fmt.Errorf("no active harvest found for project %d", projectID)
	}

	ah.statusMutex.Lock()
	alreadyStopped := ah.stopped
	ah.stopped = true
	ah.statusMutex.Unlock()

	if !alreadyStopped {
		a.logger.Sugar().Infof("stop signal sent for project %d", projectID)
		ah.cancel()
	}
	return nil
}
