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

	"github.com/agentberlin/streaksnake/internal/store"
	"github.com/agentberlin/streaksnake/internal/types"
)

func runInfoFrom(run *store.Run, domain string) types.RunInfo {
	return types.RunInfo{
		ID:              run.ID,
		ProjectID:       run.ProjectID,
		Domain:          domain,
		Target:          run.Target,
		Strategy:        run.Strategy,
		Limit:           run.Limit,
		State:           run.State,
		LimitReached:    run.LimitReached,
		RecordCount:     run.RecordCount,
		DiagnosticCount: run.DiagnosticCount,
		Error:           run.Error,
		StartedAt:       run.StartedAt,
		FinishedAt:      run.FinishedAt,
	}
}

func recordInfoFrom(r *store.Record) types.RecordInfo {
	return types.RecordInfo{
		Position:   r.Position,
		Name:       r.Name,
		ProfileURL: r.ProfileURL,
		StreakDays: r.StreakDays,
		Twitter:    r.Twitter,
		LinkedIn:   r.LinkedIn,
		Facebook:   r.Facebook,
		Website:    r.Website,
		OtherLinks: r.GetOtherLinksArray(),
		Resolved:   r.Resolved,
	}
}

// domainOf looks up the project domain of a run, falling back to empty
func (a *App) domainOf(projectID uint) string {
	project, err := a.store.GetProjectByID(projectID)
	if err != nil {
		return ""
	}
	return project.Domain
}

// ListRuns returns the most recent runs across projects (limit <= 0 = all)
func (a *App) ListRuns(limit int) ([]types.RunInfo, error) {
	runs, err := a.store.ListRuns(limit)
	if err != nil {
		return nil, err
	}

	domains := make(map[uint]string)
	infos := make([]types.RunInfo, 0, len(runs))
	for i := range runs {
		domain, ok := domains[runs[i].ProjectID]
		if !ok {
			domain = a.domainOf(runs[i].ProjectID)
			domains[runs[i].ProjectID] = domain
		}
		infos = append(infos, runInfoFrom(&runs[i], domain))
	}
	return infos, nil
}

// GetRunResult returns a run with its records (optionally filtered by a
// name or URL substring) and diagnostics
func (a *App) GetRunResult(runID uint, query string) (*types.RunResultDetailed, error) {
	run, err := a.store.GetRun(runID)
	if err != nil {
		return nil, err
	}

	var records []store.Record
	if query != "" {
		records, err = a.store.SearchRunRecords(runID, query)
	} else {
		records, err = a.store.GetRunRecords(runID)
	}
	if err != nil {
		return nil, err
	}

	diagnostics, err := a.store.GetRunDiagnostics(runID)
	if err != nil {
		return nil, err
	}

	result := &types.RunResultDetailed{
		RunInfo:     runInfoFrom(run, a.domainOf(run.ProjectID)),
		Records:     make([]types.RecordInfo, 0, len(records)),
		Diagnostics: make([]types.DiagnosticInfo, 0, len(diagnostics)),
	}
	for i := range records {
		result.Records = append(result.Records, recordInfoFrom(&records[i]))
	}
	for _, d := range diagnostics {
		result.Diagnostics = append(result.Diagnostics, types.DiagnosticInfo{
			Kind:    d.Kind,
			URL:     d.URL,
			Name:    d.Name,
			Message: d.Message,
		})
	}
	return result, nil
}

// DeleteRun deletes a run unless it is still in progress
func (a *App) DeleteRun(runID uint) error {
	run, err := a.store.GetRun(runID)
	if err != nil {
		return err
	}
	if run.State == store.RunStateInProgress {
		a.harvestsMutex.RLock()
		ah, active := a.activeHarvests[run.ProjectID]
		a.harvestsMutex.RUnlock()
		if active && ah.snapshot().RunID == runID {
			return fmt.Errorf("cannot delete run %d while it is in progress", runID)
		}
	}
	return a.store.DeleteRun(runID)
}

// GetProjects returns all projects with their latest run summary
func (a *App) GetProjects() ([]types.ProjectInfo, error) {
	projects, err := a.store.GetAllProjects()
	if err != nil {
		return nil, err
	}

	infos := make([]types.ProjectInfo, 0, len(projects))
	for _, p := range projects {
		info := types.ProjectInfo{
			ID:     p.ID,
			URL:    p.URL,
			Domain: p.Domain,
		}
		if len(p.Runs) > 0 {
			latest := p.Runs[0]
			info.LatestRunID = latest.ID
			info.LastRunAt = latest.StartedAt
			info.RecordCount = latest.RecordCount
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// DeleteProject deletes a project with all its runs
func (a *App) DeleteProject(projectID uint) error {
	a.harvestsMutex.RLock()
	_, active := a.activeHarvests[projectID]
	a.harvestsMutex.RUnlock()
	if active {
		return fmt.Errorf("cannot delete project %d while a harvest is in progress", projectID)
	}
	return a.store.DeleteProject(projectID)
}
