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
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Category is the slot a link is classified into.
type Category string

const (
	CategoryTwitter  Category = "twitter"
	CategoryLinkedIn Category = "linkedin"
	CategoryFacebook Category = "facebook"
	CategoryWebsite  Category = "website"
	CategorySelf     Category = "self"
	CategoryIgnored  Category = "ignored"
)

// ClassifierRule maps host glob patterns to a platform category.
type ClassifierRule struct {
	Category Category
	Hosts    []string
}

// DefaultRules recognizes the platforms that get a dedicated slot.
func DefaultRules() []ClassifierRule {
	return []ClassifierRule{
		{Category: CategoryTwitter, Hosts: []string{"twitter.com", "*.twitter.com", "x.com", "*.x.com"}},
		{Category: CategoryLinkedIn, Hosts: []string{"linkedin.com", "*.linkedin.com"}},
		{Category: CategoryFacebook, Hosts: []string{"facebook.com", "*.facebook.com", "fb.com", "*.fb.com"}},
	}
}

type compiledRule struct {
	category Category
	globs    []glob.Glob
}

// LinkClassifier sorts the outbound links of a profile page into SocialLinks.
// It is stateless after construction and safe for concurrent use.
type LinkClassifier struct {
	siteDomain string
	rules      []compiledRule
}

// NewLinkClassifier builds a classifier for links found on siteURL.
// With no rules, DefaultRules are used.
func NewLinkClassifier(siteURL string, rules ...ClassifierRule) (*LinkClassifier, error) {
	site, err := urlParser.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site URL %q: %w", siteURL, err)
	}
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	lc := &LinkClassifier{siteDomain: registrableDomain(site.Hostname())}
	for _, r := range rules {
		cr := compiledRule{category: r.Category}
		for _, pattern := range r.Hosts {
			g, err := glob.Compile(strings.ToLower(pattern))
			if err != nil {
				return nil, fmt.Errorf("invalid host pattern %q: %w", pattern, err)
			}
			cr.globs = append(cr.globs, g)
		}
		lc.rules = append(lc.rules, cr)
	}
	return lc, nil
}

// Categorize returns the category of a single absolute link.
func (lc *LinkClassifier) Categorize(link string) Category {
	u, err := urlParser.Parse(strings.TrimSpace(link))
	if err != nil {
		return CategoryIgnored
	}
	if s := u.Scheme(); s != "http" && s != "https" {
		return CategoryIgnored
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return CategoryIgnored
	}
	if registrableDomain(host) == lc.siteDomain {
		return CategorySelf
	}
	for _, r := range lc.rules {
		for _, g := range r.globs {
			if g.Match(host) {
				return r.category
			}
		}
	}
	return CategoryWebsite
}

// Classify fills SocialLinks from links in page order. The first link of a
// platform wins its slot; the first external link is the website and later
// distinct external links go to OtherLinks.
func (lc *LinkClassifier) Classify(links []string) SocialLinks {
	out := EmptySocialLinks()
	seen := make(map[string]bool)

	for _, raw := range links {
		link := strings.TrimSpace(raw)
		switch lc.Categorize(link) {
		case CategoryTwitter:
			if out.Twitter == "" {
				out.Twitter = link
			}
		case CategoryLinkedIn:
			if out.LinkedIn == "" {
				out.LinkedIn = link
			}
		case CategoryFacebook:
			if out.Facebook == "" {
				out.Facebook = link
			}
		case CategoryWebsite:
			if seen[link] {
				continue
			}
			seen[link] = true
			if out.Website == "" {
				out.Website = link
			} else {
				out.OtherLinks = append(out.OtherLinks, link)
			}
		}
	}
	return out
}
