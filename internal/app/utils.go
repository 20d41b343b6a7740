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

package app

import (
	"fmt"
	"net/url"
	"strings"
)

// normalizedTarget is a leaderboard URL split into the parts the app keys on.
type normalizedTarget struct {
	URL    string // full target, fragment removed
	Origin string // scheme://host[:port]
	Domain string // project identifier, host[:port]
}

// normalizeTarget normalizes a leaderboard URL input. Unlike a site root,
// the path and query select the leaderboard and are kept.
func normalizeTarget(input string) (*normalizedTarget, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty URL")
	}

	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		input = "https://" + input
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	hostname := strings.ToLower(parsedURL.Hostname())
	if hostname == "" {
		return nil, fmt.Errorf("no hostname in URL")
	}
	if strings.ContainsAny(hostname, " \t") {
		return nil, fmt.Errorf("invalid hostname %q", hostname)
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	host := hostname
	if port := parsedURL.Port(); port != "" {
		// Default ports are dropped from both the URL and the domain identifier
		if !(scheme == "https" && port == "443") && !(scheme == "http" && port == "80") {
			host = hostname + ":" + port
		}
	}

	parsedURL.Scheme = scheme
	parsedURL.Host = host
	parsedURL.Fragment = ""
	parsedURL.RawFragment = ""

	return &normalizedTarget{
		URL:    parsedURL.String(),
		Origin: scheme + "://" + host,
		Domain: host,
	}, nil
}
