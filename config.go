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

import (
	"time"

	"go.uber.org/zap"
)

// Strategy selects how more leaderboard rows are revealed.
type Strategy string

const (
	// StrategyScroll scrolls the document until its extent stops growing.
	StrategyScroll Strategy = "scroll"
	// StrategyPaginate activates a "next page" control until it disappears.
	StrategyPaginate Strategy = "paginate"
)

// Selectors locate the parts of the leaderboard and profile pages.
type Selectors struct {
	// Row matches one leaderboard row.
	Row string
	// Name, Link and Streak are evaluated inside a row.
	Name   string
	Link   string
	Streak string
	// LinkContainer holds the outbound links on a profile page.
	LinkContainer string
	// Next is the pagination control, used by StrategyPaginate.
	Next string
}

// Config controls a Harvester.
type Config struct {
	// SiteURL is the origin that relative profile references resolve against.
	// Links to its registrable domain are never classified.
	SiteURL string

	Strategy  Strategy
	Selectors Selectors

	// ListingTimeout bounds the wait for the first leaderboard row.
	ListingTimeout time.Duration
	// ProfileTimeout bounds the wait for a profile's link container.
	ProfileTimeout time.Duration
	// Settle bounds how long a reveal step waits for new content.
	Settle time.Duration
	// PollInterval is how often the document extent is re-read while settling.
	PollInterval time.Duration
	// StableThreshold is how many identical extent readings end scrolling.
	StableThreshold int
	// MaxPages caps pagination steps (0 = unlimited).
	MaxPages int

	// Workers > 1 resolves profiles on that many sessions.
	Workers int
	// DropUnresolved removes entries whose profile page failed instead of
	// keeping them with empty links.
	DropUnresolved bool

	// RespectRobots checks robots.txt for the target before launching a session.
	RespectRobots bool
	UserAgent     string

	Rules  []ClassifierRule
	Logger *zap.Logger
	Clock  Clock
}

// NewDefaultConfig returns the configuration for the Product Hunt
// visit-streak leaderboard.
func NewDefaultConfig() *Config {
	return &Config{
		SiteURL:  "https://www.producthunt.com",
		Strategy: StrategyScroll,
		Selectors: Selectors{
			Row:           `div[data-sentry-component="VisitStreak"]`,
			Name:          `div[class*="text-16 font-semibold"]`,
			Link:          `a`,
			Streak:        `div[class*="text-14 font-normal"]`,
			LinkContainer: `div[class*="styles_links"]`,
			Next:          `a[rel="next"]`,
		},
		ListingTimeout:  10 * time.Second,
		ProfileTimeout:  5 * time.Second,
		Settle:          2 * time.Second,
		PollInterval:    250 * time.Millisecond,
		StableThreshold: 3,
		Workers:         1,
		UserAgent:       "streaksnake/1.0",
		Rules:           DefaultRules(),
		Logger:          zap.NewNop(),
		Clock:           RealClock,
	}
}

// withDefaults fills zero values from NewDefaultConfig.
func (c *Config) withDefaults() *Config {
	d := NewDefaultConfig()
	out := *c
	if out.SiteURL == "" {
		out.SiteURL = d.SiteURL
	}
	if out.Strategy == "" {
		out.Strategy = d.Strategy
	}
	if out.Selectors == (Selectors{}) {
		out.Selectors = d.Selectors
	}
	if out.ListingTimeout <= 0 {
		out.ListingTimeout = d.ListingTimeout
	}
	if out.ProfileTimeout <= 0 {
		out.ProfileTimeout = d.ProfileTimeout
	}
	if out.Settle <= 0 {
		out.Settle = d.Settle
	}
	if out.PollInterval <= 0 {
		out.PollInterval = d.PollInterval
	}
	if out.StableThreshold <= 0 {
		out.StableThreshold = d.StableThreshold
	}
	if out.Workers <= 0 {
		out.Workers = 1
	}
	if out.UserAgent == "" {
		out.UserAgent = d.UserAgent
	}
	if out.Rules == nil {
		out.Rules = d.Rules
	}
	if out.Logger == nil {
		out.Logger = d.Logger
	}
	if out.Clock == nil {
		out.Clock = d.Clock
	}
	return &out
}
