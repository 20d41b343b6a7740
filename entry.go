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

package streaksnake

// LeaderboardEntry is one row of the leaderboard. ProfileURL is its identity.
type LeaderboardEntry struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profileUrl"`
	StreakDays int    `json:"streakDays"`
}

// SocialLinks holds the classified outbound links of a profile page.
// Missing categories are empty strings; OtherLinks is never nil.
type SocialLinks struct {
	Twitter    string   `json:"twitter"`
	LinkedIn   string   `json:"linkedin"`
	Facebook   string   `json:"facebook"`
	Website    string   `json:"website"`
	OtherLinks []string `json:"otherLinks"`
}

// EmptySocialLinks returns a SocialLinks with every category absent.
func EmptySocialLinks() SocialLinks {
	return SocialLinks{OtherLinks: []string{}}
}

// IsEmpty reports whether no link was classified.
func (s SocialLinks) IsEmpty() bool {
	return s.Twitter == "" && s.LinkedIn == "" && s.Facebook == "" && s.Website == "" && len(s.OtherLinks) == 0
}

// HarvestRecord is an entry joined with its social links.
// Resolved is false when the profile page could not be processed.
type HarvestRecord struct {
	LeaderboardEntry
	Links    SocialLinks `json:"links"`
	Resolved bool        `json:"resolved"`
}

// Diagnostic describes an entry-scoped failure that did not stop the run.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	URL     string `json:"url,omitempty"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

// State is a position in the harvest lifecycle.
type State string

const (
	StateIdle          State = "idle"
	StateSessionActive State = "session_active"
	StateRevealing     State = "revealing"
	StateExtracting    State = "extracting"
	StateResolving     State = "resolving"
	StateFinished      State = "finished"
	StateAborted       State = "aborted"
	StateCancelled     State = "cancelled"
)

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateAborted || s == StateCancelled
}

// HarvestResult is the outcome of one run. Records are in discovery order
// and their profile URLs are pairwise distinct.
type HarvestResult struct {
	Target       string          `json:"target"`
	Records      []HarvestRecord `json:"records"`
	Diagnostics  []Diagnostic    `json:"diagnostics"`
	State        State           `json:"state"`
	LimitReached bool            `json:"limitReached"`
}

func newResult(target string) *HarvestResult {
	return &HarvestResult{
		Target:      target,
		Records:     []HarvestRecord{},
		Diagnostics: []Diagnostic{},
		State:       StateIdle,
	}
}

// Progress is reported after every resolved entry.
type Progress struct {
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Current   string `json:"current"`
}
