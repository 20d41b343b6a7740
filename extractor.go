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
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var streakPattern = regexp.MustCompile(`(?i)(\d+)\s*day streak`)

// ExtractStreakDays returns the number in the first "<n> day streak" phrase
// of text, or 0 when there is none.
func ExtractStreakDays(text string) int {
	m := streakPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// EntryExtractor turns a leaderboard row into a LeaderboardEntry.
type EntryExtractor struct {
	Selectors Selectors
	// Origin resolves relative profile references.
	Origin string
	Logger *zap.Logger
}

func (x *EntryExtractor) logger() *zap.Logger {
	if x.Logger == nil {
		return zap.NewNop()
	}
	return x.Logger
}

// Extract reads one row. A row without a name or profile reference yields a
// parse error; a missing streak is 0.
func (x *EntryExtractor) Extract(ctx context.Context, sess Session, row Handle) (LeaderboardEntry, error) {
	var entry LeaderboardEntry

	name, err := x.firstText(ctx, sess, row, x.Selectors.Name)
	if err != nil {
		return entry, wrapError(KindParse, "", err, "reading name")
	}
	if name == "" {
		return entry, newError(KindParse, "", "row has no name")
	}
	entry.Name = name

	href, err := x.firstAttr(ctx, sess, row, x.Selectors.Link, "href")
	if err != nil {
		return entry, wrapError(KindParse, "", err, "reading profile link of %q", name)
	}
	if href == "" {
		return entry, newError(KindParse, "", "row %q has no profile link", name)
	}
	profile, err := resolveReference(x.Origin, href)
	if err != nil {
		return entry, wrapError(KindParse, href, err, "invalid profile link of %q", name)
	}
	entry.ProfileURL = profile

	streakText, err := x.firstText(ctx, sess, row, x.Selectors.Streak)
	if err != nil || streakText == "" {
		streakText, err = sess.Text(ctx, row)
		if err != nil {
			x.logger().Warn("streak unreadable, recording 0",
				zap.String("name", name),
				zap.String("profile", profile),
				zap.Error(err))
		}
	}
	entry.StreakDays = ExtractStreakDays(streakText)

	return entry, nil
}

// RowKey identifies a row by its text and first link, for rows that cannot
// be extracted into an entry.
func (x *EntryExtractor) RowKey(ctx context.Context, sess Session, row Handle) string {
	text, _ := sess.Text(ctx, row)
	href, _ := x.firstAttr(ctx, sess, row, x.Selectors.Link, "href")
	return strings.Join(strings.Fields(text), " ") + "\x00" + href
}

func (x *EntryExtractor) firstText(ctx context.Context, sess Session, row Handle, selector string) (string, error) {
	if selector == "" {
		return "", nil
	}
	found, err := sess.FindWithin(ctx, row, selector)
	if err != nil || len(found) == 0 {
		return "", err
	}
	text, err := sess.Text(ctx, found[0])
	return strings.TrimSpace(text), err
}

func (x *EntryExtractor) firstAttr(ctx context.Context, sess Session, row Handle, selector, attr string) (string, error) {
	found, err := sess.FindWithin(ctx, row, selector)
	if err != nil || len(found) == 0 {
		return "", err
	}
	for _, h := range found {
		v, ok, err := sess.Attribute(ctx, h, attr)
		if err != nil {
			return "", err
		}
		if ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), nil
		}
	}
	return "", nil
}
