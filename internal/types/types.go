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

package types

// HarvestRequest describes a harvest to run. Zero values and nil flags fall
// back to the project's stored configuration.
type HarvestRequest struct {
	URL            string `json:"url"`
	Strategy       string `json:"strategy,omitempty"`
	Limit          int    `json:"limit"`
	Workers        int    `json:"workers,omitempty"`
	DropUnresolved *bool  `json:"dropUnresolved,omitempty"`
	RespectRobots  *bool  `json:"respectRobots,omitempty"`
	UserAgent      string `json:"userAgent,omitempty"`
	// SaveAsDefault stores the effective settings as the project's configuration
	SaveAsDefault bool `json:"saveAsDefault"`
}

// HarvestProgress represents the progress of an active harvest
type HarvestProgress struct {
	ProjectID uint   `json:"projectId"`
	RunID     uint   `json:"runId"`
	Domain    string `json:"domain"`
	URL       string `json:"url"`
	State     string `json:"state"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Current   string `json:"current"`
	Records   int    `json:"records"`
	Failures  int    `json:"failures"`
}

// RecordInfo is one harvested entry with its social links
type RecordInfo struct {
	Position   int      `json:"position"`
	Name       string   `json:"name"`
	ProfileURL string   `json:"profileUrl"`
	StreakDays int      `json:"streakDays"`
	Twitter    string   `json:"twitter"`
	LinkedIn   string   `json:"linkedin"`
	Facebook   string   `json:"facebook"`
	Website    string   `json:"website"`
	OtherLinks []string `json:"otherLinks"`
	Resolved   bool     `json:"resolved"`
}

// DiagnosticInfo is an entry-scoped failure of a run
type DiagnosticInfo struct {
	Kind    string `json:"kind"`
	URL     string `json:"url,omitempty"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

// RunInfo represents run information for clients
type RunInfo struct {
	ID              uint   `json:"id"`
	ProjectID       uint   `json:"projectId"`
	Domain          string `json:"domain,omitempty"`
	Target          string `json:"target"`
	Strategy        string `json:"strategy"`
	Limit           int    `json:"limit"`
	State           string `json:"state"`
	LimitReached    bool   `json:"limitReached"`
	RecordCount     int    `json:"recordCount"`
	DiagnosticCount int    `json:"diagnosticCount"`
	Error           string `json:"error,omitempty"`
	StartedAt       int64  `json:"startedAt"`
	FinishedAt      int64  `json:"finishedAt"`
}

// RunResultDetailed represents a run with all its records and diagnostics
type RunResultDetailed struct {
	RunInfo     RunInfo          `json:"runInfo"`
	Records     []RecordInfo     `json:"records"`
	Diagnostics []DiagnosticInfo `json:"diagnostics"`
}

// ProjectInfo represents project information for clients
type ProjectInfo struct {
	ID          uint   `json:"id"`
	URL         string `json:"url"`
	Domain      string `json:"domain"`
	LatestRunID uint   `json:"latestRunId"`
	LastRunAt   int64  `json:"lastRunAt"`
	RecordCount int    `json:"recordCount"`
}

// ConfigResponse represents a project's harvest defaults
type ConfigResponse struct {
	Domain         string `json:"domain"`
	Strategy       string `json:"strategy"`
	Limit          int    `json:"limit"`
	Workers        int    `json:"workers"`
	DropUnresolved bool   `json:"dropUnresolved"`
	RespectRobots  bool   `json:"respectRobots"`
	UserAgent      string `json:"userAgent"`
}

// SystemHealthCheck represents the result of system dependency checks
type SystemHealthCheck struct {
	IsHealthy  bool   `json:"isHealthy"`
	ErrorTitle string `json:"errorTitle,omitempty"`
	ErrorMsg   string `json:"errorMsg,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}
