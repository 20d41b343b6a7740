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

package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// CreateRun starts a new in-progress run for a project
func (s *Store) CreateRun(projectID uint, target string, strategy string, limit int) (*Run, error) {
	run := Run{
		ProjectID: projectID,
		Target:    target,
		Strategy:  strategy,
		Limit:     limit,
		State:     RunStateInProgress,
		StartedAt: time.Now().Unix(),
	}
	if err := s.db.Create(&run).Error; err != nil {
		return nil, fmt.Errorf("failed to create run: %v", err)
	}
	return &run, nil
}

// FinishRun records the terminal state of a run and refreshes its counters
func (s *Store) FinishRun(runID uint, state string, limitReached bool, errMsg string) error {
	var records, diagnostics int64
	if err := s.db.Model(&Record{}).Where("run_id = ?", runID).Count(&records).Error; err != nil {
		return fmt.Errorf("failed to count records: %v", err)
	}
	if err := s.db.Model(&Diagnostic{}).Where("run_id = ?", runID).Count(&diagnostics).Error; err != nil {
		return fmt.Errorf("failed to count diagnostics: %v", err)
	}

	result := s.db.Model(&Run{}).Where("id = ?", runID).Updates(map[string]interface{}{
		"state":            state,
		"limit_reached":    limitReached,
		"error":            errMsg,
		"record_count":     int(records),
		"diagnostic_count": int(diagnostics),
		"finished_at":      time.Now().Unix(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to finish run: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("run with ID %d not found", runID)
	}
	return nil
}

// GetRun gets a run by ID
func (s *Store) GetRun(id uint) (*Run, error) {
	var run Run
	if err := s.db.First(&run, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get run: %v", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs across all projects (limit <= 0 = all)
func (s *Store) ListRuns(limit int) ([]Run, error) {
	var runs []Run
	q := s.db.Order("started_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %v", err)
	}
	return runs, nil
}

// GetProjectRuns returns all runs for a project, newest first
func (s *Store) GetProjectRuns(projectID uint) ([]Run, error) {
	var runs []Run
	result := s.db.Where("project_id = ?", projectID).Order("started_at DESC, id DESC").Find(&runs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get runs: %v", result.Error)
	}
	return runs, nil
}

// GetLatestRun returns the newest run of a project, or nil if it has none
func (s *Store) GetLatestRun(projectID uint) (*Run, error) {
	var run Run
	err := s.db.Where("project_id = ?", projectID).Order("started_at DESC, id DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %v", err)
	}
	return &run, nil
}

// DeleteRun deletes a run with its records and diagnostics
func (s *Store) DeleteRun(runID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", runID).Delete(&Record{}).Error; err != nil {
			return fmt.Errorf("failed to delete records: %v", err)
		}
		if err := tx.Where("run_id = ?", runID).Delete(&Diagnostic{}).Error; err != nil {
			return fmt.Errorf("failed to delete diagnostics: %v", err)
		}
		result := tx.Delete(&Run{}, runID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("run with ID %d not found", runID)
		}
		return nil
	})
}
