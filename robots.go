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
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker consults a site's robots.txt before a harvest starts.
type RobotsChecker struct {
	Client    *http.Client
	UserAgent string
}

// NewRobotsChecker returns a checker with a 10 second HTTP timeout.
func NewRobotsChecker(userAgent string) *RobotsChecker {
	return &RobotsChecker{
		Client:    &http.Client{Timeout: 10 * time.Second},
		UserAgent: userAgent,
	}
}

// Allowed reports whether target may be fetched. An unreachable robots.txt
// is returned as an error together with allowed=true.
func (rc *RobotsChecker) Allowed(ctx context.Context, target string) (bool, error) {
	u, err := urlParser.Parse(target)
	if err != nil {
		return false, fmt.Errorf("failed to parse URL: %w", err)
	}
	robotsURL := fmt.Sprintf("%s//%s/robots.txt", u.Protocol(), u.Host())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return true, err
	}
	if rc.UserAgent != "" {
		req.Header.Set("User-Agent", rc.UserAgent)
	}
	resp, err := rc.Client.Do(req)
	if err != nil {
		return true, fmt.Errorf("failed to fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return true, fmt.Errorf("failed to read robots.txt: %w", err)
	}

	robotsData, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return true, fmt.Errorf("failed to parse robots.txt: %w", err)
	}

	path := u.Pathname()
	if q := u.Search(); q != "" {
		path += q
	}
	if path == "" {
		path = "/"
	}
	return robotsData.TestAgent(path, rc.UserAgent), nil
}
