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

import "fmt"

// SaveRecord stores one harvested record of a run
func (s *Store) SaveRecord(record *Record) error {
	if record.OtherLinks == "" {
		if err := record.SetOtherLinksArray(nil); err != nil {
			return err
		}
	}
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to save record: %v", err)
	}
	return nil
}

// SaveDiagnostic stores one entry-scoped failure of a run
func (s *Store) SaveDiagnostic(diagnostic *Diagnostic) error {
	if err := s.db.Create(diagnostic).Error; err != nil {
		return fmt.Errorf("failed to save diagnostic: %v", err)
	}
	return nil
}

// GetRunRecords returns the records of a run in discovery order
func (s *Store) GetRunRecords(runID uint) ([]Record, error) {
	var records []Record
	result := s.db.Where("run_id = ?", runID).Order("position ASC").Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get records: %v", result.Error)
	}
	return records, nil
}

// SearchRunRecords returns records whose name or profile URL contains query
func (s *Store) SearchRunRecords(runID uint, query string) ([]Record, error) {
	var records []Record
	pattern := "%" + query + "%"
	result := s.db.Where("run_id = ?", runID).
		Where("name LIKE ? OR profile_url LIKE ?", pattern, pattern).
		Order("position ASC").
		Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to search records: %v", result.Error)
	}
	return records, nil
}

// GetRunDiagnostics returns the diagnostics of a run in the order they occurred
func (s *Store) GetRunDiagnostics(runID uint) ([]Diagnostic, error) {
	var diagnostics []Diagnostic
	result := s.db.Where("run_id = ?", runID).Order("id ASC").Find(&diagnostics)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get diagnostics: %v", result.Error)
	}
	return diagnostics, nil
}
