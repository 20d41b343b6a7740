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
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Revealer makes more leaderboard rows visible.
type Revealer interface {
	// Reveal performs one reveal step. visible is the number of rows the
	// caller has seen so far. It returns false once nothing more will appear.
	Reveal(ctx context.Context, sess Session, visible int) (bool, error)
}

// ScrollRevealer scrolls to the end of the document and waits for its extent
// to grow. Scrolling stops after Threshold consecutive identical readings.
type ScrollRevealer struct {
	Settle    time.Duration
	Poll      time.Duration
	Threshold int
	// Limit stops revealing once this many rows are visible (0 = unlimited).
	Limit int
	Clock Clock

	started bool
	last    int
	stable  int
}

func (r *ScrollRevealer) readExtent(ctx context.Context, sess Session) (int, error) {
	var extent float64
	if err := sess.ExecuteScript(ctx, extentScript, &extent); err != nil {
		return 0, fmt.Errorf("reading document extent: %w", err)
	}
	return int(extent), nil
}

// Reveal implements Revealer.
func (r *ScrollRevealer) Reveal(ctx context.Context, sess Session, visible int) (bool, error) {
	if r.Limit > 0 && visible >= r.Limit {
		return false, nil
	}
	threshold := r.Threshold
	if threshold <= 0 {
		threshold = 3
	}
	clock := r.Clock
	if clock == nil {
		clock = RealClock
	}

	if !r.started {
		extent, err := r.readExtent(ctx, sess)
		if err != nil {
			return false, err
		}
		r.started = true
		r.last = extent
		r.stable = 1
	}
	if r.stable >= threshold {
		return false, nil
	}

	if err := sess.ExecuteScript(ctx, scrollScript, nil); err != nil {
		return false, fmt.Errorf("scrolling: %w", err)
	}

	extent, err := r.waitForGrowth(ctx, sess, clock)
	if err != nil {
		return false, err
	}
	if extent > r.last {
		r.last = extent
		r.stable = 1
	} else {
		r.stable++
	}
	return r.stable < threshold, nil
}

// waitForGrowth polls the extent until it exceeds the last reading or Settle
// elapses, and returns the final reading.
func (r *ScrollRevealer) waitForGrowth(ctx context.Context, sess Session, clock Clock) (int, error) {
	poll := r.Poll
	if poll <= 0 || (r.Settle > 0 && poll > r.Settle) {
		poll = r.Settle
	}
	deadline := clock.Now().Add(r.Settle)
	for {
		if err := clock.Sleep(ctx, poll); err != nil {
			return 0, err
		}
		extent, err := r.readExtent(ctx, sess)
		if err != nil {
			return 0, err
		}
		if extent > r.last || !clock.Now().Before(deadline) {
			return extent, nil
		}
	}
}

// PaginationRevealer activates a "next page" control until it is gone or
// disabled.
type PaginationRevealer struct {
	NextSelector string
	RowSelector  string
	Settle       time.Duration
	Timeout      time.Duration
	// MaxPages caps the number of page activations (0 = unlimited).
	MaxPages int
	Limit    int
	Clock    Clock

	pages int
}

// Reveal implements Revealer.
func (r *PaginationRevealer) Reveal(ctx context.Context, sess Session, visible int) (bool, error) {
	if r.Limit > 0 && visible >= r.Limit {
		return false, nil
	}
	if r.MaxPages > 0 && r.pages >= r.MaxPages {
		return false, nil
	}
	clock := r.Clock
	if clock == nil {
		clock = RealClock
	}

	controls, err := sess.FindAll(ctx, r.NextSelector)
	if err != nil {
		return false, fmt.Errorf("finding next control: %w", err)
	}
	if len(controls) == 0 {
		return false, nil
	}
	next := controls[0]
	if _, disabled, err := sess.Attribute(ctx, next, "disabled"); err != nil || disabled {
		return false, err
	}
	if v, ok, err := sess.Attribute(ctx, next, "aria-disabled"); err != nil || (ok && strings.EqualFold(v, "true")) {
		return false, err
	}

	var clicked bool
	if err := sess.ExecuteScript(ctx, clickScript(r.NextSelector), &clicked); err != nil {
		return false, fmt.Errorf("activating next control: %w", err)
	}
	if !clicked {
		return false, nil
	}
	r.pages++

	if err := clock.Sleep(ctx, r.Settle); err != nil {
		return false, err
	}
	if _, err := sess.WaitFor(ctx, r.RowSelector, r.Timeout); err != nil {
		if errors.Is(err, ErrWaitTimeout) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func newRevealer(cfg *Config, limit int) (Revealer, error) {
	switch cfg.Strategy {
	case StrategyScroll:
		return &ScrollRevealer{
			Settle:    cfg.Settle,
			Poll:      cfg.PollInterval,
			Threshold: cfg.StableThreshold,
			Limit:     limit,
			Clock:     cfg.Clock,
		}, nil
	case StrategyPaginate:
		return &PaginationRevealer{
			NextSelector: cfg.Selectors.Next,
			RowSelector:  cfg.Selectors.Row,
			Settle:       cfg.Settle,
			Timeout:      cfg.ListingTimeout,
			MaxPages:     cfg.MaxPages,
			Limit:        limit,
			Clock:        cfg.Clock,
		}, nil
	}
	return nil, fmt.Errorf("unknown reveal strategy %q", cfg.Strategy)
}
