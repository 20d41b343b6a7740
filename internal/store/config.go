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

// GetOrCreateConfig retrieves the config for a project or creates one with defaults
func (s *Store) GetOrCreateConfig(projectID uint) (*Config, error) {
	var config Config

	result := s.db.Where("project_id = ?", projectID).First(&config)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		config = Config{
			ProjectID: projectID,
			Strategy:  "scroll",
			Workers:   1,
			UserAgent: "streaksnake/1.0",
		}
		if err := s.db.Create(&config).Error; err != nil {
			return nil, fmt.Errorf("failed to create config: %v", err)
		}
		return &config, nil
	}

	if result.Error != nil {
		return nil, fmt.Errorf("failed to get config: %v", result.Error)
	}

	return &config, nil
}

// UpdateConfig updates the harvest defaults of a project
func (s *Store) UpdateConfig(projectID uint, strategy string, limit, workers int, dropUnresolved, respectRobots bool, userAgent string) error {
	config, err := s.GetOrCreateConfig(projectID)
	if err != nil {
		return err
	}

	if workers < 1 {
		workers = 1
	}
	if limit < 0 {
		limit = 0
	}

	// Select forces zero values (false, 0) to be written
	result := s.db.Model(config).
		Select("strategy", "entry_limit", "workers", "drop_unresolved", "respect_robots", "user_agent").
		Updates(Config{
			Strategy:       strategy,
			Limit:          limit,
			Workers:        workers,
			DropUnresolved: dropUnresolved,
			RespectRobots:  respectRobots,
			UserAgent:      userAgent,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update config: %v", result.Error)
	}
	return nil
}
