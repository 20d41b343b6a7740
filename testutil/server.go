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

// Package testutil provides shared fixtures for streaksnake tests: leaderboard
// and profile markup plus an HTTP test server that serves them.
package testutil

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Row describes one leaderboard row.
type Row struct {
	Name   string
	Href   string
	Streak int
	// Broken omits the name element, producing an unparsable row.
	Broken bool
}

// Rows returns n well-formed rows named "User 1".."User n" linking to /@user1.. .
func Rows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{
			Name:   fmt.Sprintf("User %d", i+1),
			Href:   fmt.Sprintf("/@user%d", i+1),
			Streak: 100 - i,
		}
	}
	return rows
}

// RowHTML renders a row using the visit-streak markup.
func RowHTML(r Row) string {
	var b strings.Builder
	b.WriteString(`<div data-sentry-component="VisitStreak" class="flex">`)
	fmt.Fprintf(&b, `<a href="%s">`, html.EscapeString(r.Href))
	if !r.Broken {
		fmt.Fprintf(&b, `<div class="text-16 font-semibold text-dark-gray">%s</div>`, html.EscapeString(r.Name))
	}
	b.WriteString(`</a>`)
	fmt.Fprintf(&b, `<div class="text-14 font-normal text-light-gray">%d day streak</div>`, r.Streak)
	b.WriteString(`</div>`)
	return b.String()
}

// LeaderboardHTML renders a full listing page. When next is non-empty a
// pagination link to it is included.
func LeaderboardHTML(rows []Row, next string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><title>Visit Streaks</title></head><body><main id=\"rows\">")
	for _, r := range rows {
		b.WriteString(RowHTML(r))
	}
	b.WriteString("</main>")
	if next != "" {
		fmt.Fprintf(&b, `<a rel="next" href="%s">Next</a>`, html.EscapeString(next))
	}
	b.WriteString("</body></html>")
	return b.String()
}

// ScrollStages renders the listing as it grows by batch rows per scroll.
func ScrollStages(rows []Row, batch int) []string {
	if batch <= 0 {
		batch = len(rows)
	}
	var stages []string
	for end := batch; ; end += batch {
		if end >= len(rows) {
			stages = append(stages, LeaderboardHTML(rows, ""))
			return stages
		}
		stages = append(stages, LeaderboardHTML(rows[:end], ""))
	}
}

// ProfileHTML renders a profile page whose link container holds links.
func ProfileHTML(name string, links []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html><head><title>%s</title></head><body>", html.EscapeString(name))
	b.WriteString(`<nav><a href="/">Home</a></nav>`)
	b.WriteString(`<div class="styles_links__a1B2c">`)
	for _, l := range links {
		fmt.Fprintf(&b, `<a href="%s" rel="noopener">%s</a>`, html.EscapeString(l), html.EscapeString(l))
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// ProfileLinks returns the outbound links used for a fixture user.
func ProfileLinks(i int) []string {
	return []string{
		fmt.Sprintf("https://twitter.com/user%d", i),
		fmt.Sprintf("https://www.linkedin.com/in/user%d", i),
		fmt.Sprintf("https://user%d.example.org", i),
		"/@user" + strconv.Itoa(i) + "/followers",
	}
}

const infiniteScrollJS = `
let offset = %d;
let loading = false;
window.addEventListener('scroll', async () => {
  if (loading || window.innerHeight + window.scrollY < document.body.scrollHeight - 50) return;
  loading = true;
  const resp = await fetch('/streaks/rows?offset=' + offset);
  const html = await resp.text();
  if (html.trim() !== '') {
    document.getElementById('rows').insertAdjacentHTML('beforeend', html);
    offset += %d;
  }
  loading = false;
});`

// RobotsFile disallows /private for every agent.
const RobotsFile = `
User-agent: *
Disallow: /private
`

// NewHandler serves total fixture users:
//   - /streaks: infinite-scroll listing loading batch rows at a time
//   - /streaks/rows?offset=N: the next batch of row markup
//   - /leaderboard?page=N: paginated listing with batch rows per page
//   - /@userN: profile pages
//   - /robots.txt
func NewHandler(total, batch int) http.Handler {
	rows := Rows(total)
	mux := http.NewServeMux()

	mux.HandleFunc("/streaks", func(w http.ResponseWriter, r *http.Request) {
		first := rows
		if batch < len(rows) {
			first = rows[:batch]
		}
		page := LeaderboardHTML(first, "")
		page = strings.Replace(page, "</body>", "<div style=\"height:2000px\"></div><script>"+fmt.Sprintf(infiniteScrollJS, len(first), batch)+"</script></body>", 1)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	})

	mux.HandleFunc("/streaks/rows", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		w.Header().Set("Content-Type", "text/html")
		for i := offset; i < offset+batch && i < len(rows); i++ {
			w.Write([]byte(RowHTML(rows[i])))
		}
	})

	mux.HandleFunc("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		start := (page - 1) * batch
		if start > len(rows) {
			start = len(rows)
		}
		end := start + batch
		next := ""
		if end < len(rows) {
			next = fmt.Sprintf("/leaderboard?page=%d", page+1)
		} else {
			end = len(rows)
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(LeaderboardHTML(rows[start:end], next)))
	})

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(RobotsFile))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		var n int
		if _, err := fmt.Sscanf(r.URL.Path, "/@user%d", &n); err != nil || n < 1 || n > len(rows) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(ProfileHTML(rows[n-1].Name, ProfileLinks(n))))
	})

	return mux
}

// NewUnstartedTestServer wraps NewHandler in an unstarted httptest server.
func NewUnstartedTestServer(total, batch int) *httptest.Server {
	return httptest.NewUnstartedServer(NewHandler(total, batch))
}

// NewTestServer starts a fixture server.
func NewTestServer(total, batch int) *httptest.Server {
	srv := NewUnstartedTestServer(total, batch)
	srv.Start()
	return srv
}

// ChromePath returns a usable Chrome or Chromium binary, or "" when none is
// installed. $CHROME_PATH wins when it exists.
func ChromePath() string {
	if p := os.Getenv("CHROME_PATH"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}
