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

	"gorm.io/gorm"
)

// GetOrCreateProject gets or creates a project by domain
func (s *Store) GetOrCreateProject(urlStr string, domain string) (*Project, error) {
	var project Project
	result := s.db.Where("domain = ?", domain).First(&project)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		project = Project{
			URL:    urlStr,
			Domain: domain,
		}
		if err := s.db.Create(&project).Error; err != nil {
			return nil, fmt.Errorf("failed to create project: %v", err)
		}
		return &project, nil
	}

	if result.Error != nil {
		return nil, fmt.Errorf("failed to get project: %v", result.Error)
	}

	// Keep the most recently harvested URL
	if project.URL != urlStr {
		project.URL = urlStr
		s.db.Save(&project)
	}

	return &project, nil
}

// GetAllProjects returns all projects with their latest run
func (s *Store) GetAllProjects() ([]Project, error) {
	var projects []Project

	if err := s.db.Order("id ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to get projects: %v", err)
	}

	for i := range projects {
		var latest Run
		err := s.db.Where("project_id = ?", projects[i].ID).
			Order("started_at DESC, id DESC").
			First(&latest).Error

		if err == nil {
			projects[i].Runs = []Run{latest}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get latest run for project %d: %v", projects[i].ID, err)
		}
	}

	return projects, nil
}

// GetProjectByID gets a project by ID
func (s *Store) GetProjectByID(id uint) (*Project, error) {
	var project Project
	result := s.db.First(&project, id)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get project: %v", result.Error)
	}
	return &project, nil
}

// GetProjectByDomain gets a project by domain
func (s *Store) GetProjectByDomain(domain string) (*Project, error) {
	var project Project
	result := s.db.Where("domain = ?", domain).First(&project)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get project: %v", result.Error)
	}
	return &project, nil
}

// DeleteProject deletes a project with its config and runs (cascade)
func (s *Store) DeleteProject(projectID uint) error {
	result := s.db.Delete(&Project{}, projectID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("project with ID %d not found", projectID)
	}
	return nil
}
