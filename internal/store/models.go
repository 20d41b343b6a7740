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

import "encoding/json"

// Project groups the runs harvested from one leaderboard domain
type Project struct {
	ID        uint   `gorm:"primaryKey"`
	URL       string `gorm:"not null"`
	Domain    string `gorm:"uniqueIndex;not null"`
	Runs      []Run  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedAt int64  `gorm:"autoCreateTime"`
	UpdatedAt int64  `gorm:"autoUpdateTime"`
}

// Config holds the default harvest settings of a project
type Config struct {
	ID             uint     `gorm:"primaryKey"`
	ProjectID      uint     `gorm:"uniqueIndex;not null"`
	Strategy       string   `gorm:"default:'scroll'"`
	Limit          int      `gorm:"column:entry_limit;default:0"` // 0 = unlimited
	Workers        int      `gorm:"default:1"`
	DropUnresolved bool     `gorm:"default:false"`
	RespectRobots  bool     `gorm:"default:false"`
	UserAgent      string   `gorm:"type:text"`
	Project        *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedAt      int64    `gorm:"autoCreateTime"`
	UpdatedAt      int64    `gorm:"autoUpdateTime"`
}

// Run states mirror the harvester's terminal states plus in-progress
const (
	RunStateInProgress = "in_progress"
	RunStateFinished   = "finished"
	RunStateAborted    = "aborted"
	RunStateCancelled  = "cancelled"
)

// Run is one harvest of a leaderboard
type Run struct {
	ID              uint         `gorm:"primaryKey"`
	ProjectID       uint         `gorm:"index;not null"`
	Target          string       `gorm:"not null"`
	Strategy        string       `gorm:"not null"`
	Limit           int          `gorm:"column:entry_limit"`
	State           string       `gorm:"index;not null"`
	LimitReached    bool         `gorm:"default:false"`
	RecordCount     int          `gorm:"default:0"`
	DiagnosticCount int          `gorm:"default:0"`
	Error           string       `gorm:"type:text"`
	StartedAt       int64        `gorm:"not null"`
	FinishedAt      int64        `gorm:"default:0"`
	Records         []Record     `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
	Diagnostics     []Diagnostic `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
	CreatedAt       int64        `gorm:"autoCreateTime"`
	UpdatedAt       int64        `gorm:"autoUpdateTime"`
}

// Record is a harvested entry joined with its social links
type Record struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      uint   `gorm:"index;not null"`
	Position   int    `gorm:"not null"` // discovery order within the run
	Name       string `gorm:"not null"`
	ProfileURL string `gorm:"type:text;not null"`
	StreakDays int
	Twitter    string `gorm:"type:text"`
	LinkedIn   string `gorm:"type:text"`
	Facebook   string `gorm:"type:text"`
	Website    string `gorm:"type:text"`
	OtherLinks string `gorm:"type:text"` // JSON array
	Resolved   bool
	CreatedAt  int64 `gorm:"autoCreateTime"`
}

// GetOtherLinksArray deserializes OtherLinks; it never returns nil
func (r *Record) GetOtherLinksArray() []string {
	links := []string{}
	if r.OtherLinks == "" {
		return links
	}
	if err := json.Unmarshal([]byte(r.OtherLinks), &links); err != nil || links == nil {
		return []string{}
	}
	return links
}

// SetOtherLinksArray serializes links into OtherLinks
func (r *Record) SetOtherLinksArray(links []string) error {
	if links == nil {
		links = []string{}
	}
	data, err := json.Marshal(links)
	if err != nil {
		return err
	}
	r.OtherLinks = string(data)
	return nil
}

// Diagnostic is an entry-scoped failure recorded during a run
type Diagnostic struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     uint   `gorm:"index;not null"`
	Kind      string `gorm:"not null"`
	URL       string `gorm:"type:text"`
	Name      string
	Message   string `gorm:"type:text"`
	CreatedAt int64  `gorm:"autoCreateTime"`
}
