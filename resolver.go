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
	"time"
)

// SocialLinkResolver visits profile pages and classifies their outbound links.
type SocialLinkResolver struct {
	Classifier    *LinkClassifier
	LinkContainer string
	Timeout       time.Duration
}

// Resolve loads entry's profile page on sess. Failures are entry-scoped
// errors of kind KindNavigationTimeout or KindResolution.
func (r *SocialLinkResolver) Resolve(ctx context.Context, sess Session, entry LeaderboardEntry) (SocialLinks, error) {
	profile := entry.ProfileURL

	if err := sess.Navigate(ctx, profile); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrWaitTimeout) {
			return EmptySocialLinks(), wrapError(KindNavigationTimeout, profile, err, "loading profile of %q", entry.Name)
		}
		return EmptySocialLinks(), wrapError(KindResolution, profile, err, "loading profile of %q", entry.Name)
	}

	// A loaded profile without the links container is a resolution
	// failure, not a navigation timeout.
	container, err := sess.WaitFor(ctx, r.LinkContainer, r.Timeout)
	if err != nil {
		if errors.Is(err, ErrWaitTimeout) {
			return EmptySocialLinks(), wrapError(KindResolution, profile, err, "links of %q never appeared", entry.Name)
		}
		return EmptySocialLinks(), wrapError(KindResolution, profile, err, "waiting for links of %q", entry.Name)
	}

	anchors, err := sess.FindWithin(ctx, container, "a[href]")
	if err != nil {
		return EmptySocialLinks(), wrapError(KindResolution, profile, err, "collecting links of %q", entry.Name)
	}

	links := make([]string, 0, len(anchors))
	for _, a := range anchors {
		href, ok, err := sess.Attribute(ctx, a, "href")
		if err != nil {
			return EmptySocialLinks(), wrapError(KindResolution, profile, err, "reading link of %q", entry.Name)
		}
		if !ok || href == "" {
			continue
		}
		abs, err := resolveReference(profile, href)
		if err != nil {
			continue
		}
		links = append(links, abs)
	}

	return r.Classifier.Classify(links), nil
}
