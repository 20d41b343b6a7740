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
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// MockPage is a scripted page served by MockBrowser.
type MockPage struct {
	// Stages are successive versions of the document. A scroll or a click on
	// an existing element advances to the next stage.
	Stages []string
	// Extents are the successive document extents reported to scripts; the
	// last value repeats. When empty the length of the current stage is used.
	Extents []int
	// NavigateErr is returned by Navigate when set.
	NavigateErr error
}

// MockBrowser implements Launcher for testing purposes. Pages are parsed with
// goquery, scripts the harvester issues are interpreted without a browser.
type MockBrowser struct {
	pages     map[string]*MockPage
	launchErr error
	// failAfter makes launches beyond the first n fail (0 = never).
	failAfter int
	launches  int
	closes    int
	sessions  []*MockSession
	mutex     sync.Mutex
}

// NewMockBrowser creates a new MockBrowser instance
func NewMockBrowser() *MockBrowser {
	return &MockBrowser{pages: make(map[string]*MockPage)}
}

// RegisterPage registers a scripted page for an exact URL.
func (m *MockBrowser) RegisterPage(url string, page *MockPage) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.pages[url] = page
}

// RegisterHTML registers a single-stage page.
func (m *MockBrowser) RegisterHTML(url, html string) {
	m.RegisterPage(url, &MockPage{Stages: []string{html}})
}

// RegisterError makes navigation to url fail with err.
func (m *MockBrowser) RegisterError(url string, err error) {
	m.RegisterPage(url, &MockPage{NavigateErr: err})
}

// SetLaunchError makes every NewSession call fail with err.
func (m *MockBrowser) SetLaunchError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.launchErr = err
}

// LimitSessions makes NewSession fail once n sessions have been launched.
func (m *MockBrowser) LimitSessions(n int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.failAfter = n
}

// Launches returns how many sessions were successfully opened.
func (m *MockBrowser) Launches() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.launches
}

// Closes returns how many Close calls sessions received in total.
func (m *MockBrowser) Closes() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.closes
}

// Sessions returns the sessions opened so far.
func (m *MockBrowser) Sessions() []*MockSession {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]*MockSession(nil), m.sessions...)
}

// NewSession implements Launcher.
func (m *MockBrowser) NewSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.launchErr != nil {
		return nil, m.launchErr
	}
	if m.failAfter > 0 && m.launches >= m.failAfter {
		return nil, errors.New("mock browser: session limit reached")
	}
	m.launches++
	s := &MockSession{browser: m}
	m.sessions = append(m.sessions, s)
	return s, nil
}

func (m *MockBrowser) page(url string) (*MockPage, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	p, ok := m.pages[url]
	return p, ok
}

// MockSession is a Session over goquery documents.
type MockSession struct {
	browser *MockBrowser

	url         string
	page        *MockPage
	stage       int
	extentIdx   int
	extentReads int
	scrolls     int
	clicks      int
	visited     []string
	closed      int
	doc         *goquery.Document
}

// Visited returns the URLs navigated to, in order.
func (s *MockSession) Visited() []string { return append([]string(nil), s.visited...) }

// ExtentReads returns how many times the document extent was read.
func (s *MockSession) ExtentReads() int { return s.extentReads }

// Scrolls returns how many scroll scripts were executed.
func (s *MockSession) Scrolls() int { return s.scrolls }

// Clicks returns how many pagination clicks were executed.
func (s *MockSession) Clicks() int { return s.clicks }

// CloseCount returns how many times Close was called on this session.
func (s *MockSession) CloseCount() int {
	s.browser.mutex.Lock()
	defer s.browser.mutex.Unlock()
	return s.closed
}

func (s *MockSession) load() error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.page.Stages[s.stage]))
	if err != nil {
		return fmt.Errorf("mock session: parsing %s: %w", s.url, err)
	}
	s.doc = doc
	return nil
}

func (s *MockSession) advance() error {
	if s.stage+1 >= len(s.page.Stages) {
		return nil
	}
	s.stage++
	return s.load()
}

func (s *MockSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.visited = append(s.visited, url)
	page, ok := s.browser.page(url)
	if !ok {
		return fmt.Errorf("mock session: no page registered for %s", url)
	}
	if page.NavigateErr != nil {
		return page.NavigateErr
	}
	if len(page.Stages) == 0 {
		return fmt.Errorf("mock session: page %s has no content", url)
	}
	s.url, s.page, s.stage, s.extentIdx = url, page, 0, 0
	return s.load()
}

func (s *MockSession) requireDoc() error {
	if s.doc == nil {
		return errors.New("mock session: no page loaded")
	}
	return nil
}

func selectionHandles(sel *goquery.Selection) []Handle {
	out := make([]Handle, 0, sel.Length())
	sel.Each(func(_ int, el *goquery.Selection) {
		out = append(out, el)
	})
	return out
}

func toSelection(h Handle) (*goquery.Selection, error) {
	sel, ok := h.(*goquery.Selection)
	if !ok || sel == nil {
		return nil, fmt.Errorf("mock session: foreign handle %T", h)
	}
	return sel, nil
}

func (s *MockSession) FindAll(ctx context.Context, selector string) ([]Handle, error) {
	if err := s.requireDoc(); err != nil {
		return nil, err
	}
	return selectionHandles(s.doc.Find(selector)), ctx.Err()
}

func (s *MockSession) FindWithin(ctx context.Context, scope Handle, selector string) ([]Handle, error) {
	sel, err := toSelection(scope)
	if err != nil {
		return nil, err
	}
	return selectionHandles(sel.Find(selector)), ctx.Err()
}

func (s *MockSession) Attribute(ctx context.Context, h Handle, name string) (string, bool, error) {
	sel, err := toSelection(h)
	if err != nil {
		return "", false, err
	}
	v, ok := sel.Attr(name)
	return v, ok, ctx.Err()
}

func (s *MockSession) Text(ctx context.Context, h Handle) (string, error) {
	sel, err := toSelection(h)
	if err != nil {
		return "", err
	}
	return sel.Text(), ctx.Err()
}

const clickPrefix = `(function(){var el=document.querySelector(`

func (s *MockSession) ExecuteScript(ctx context.Context, script string, res any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.requireDoc(); err != nil {
		return err
	}

	var value any
	switch {
	case script == scrollScript:
		s.scrolls++
		if err := s.advance(); err != nil {
			return err
		}
	case script == extentScript:
		s.extentReads++
		if n := len(s.page.Extents); n > 0 {
			i := s.extentIdx
			if i >= n {
				i = n - 1
			}
			value = s.page.Extents[i]
			s.extentIdx++
		} else {
			value = len(s.page.Stages[s.stage])
		}
	case strings.HasPrefix(script, clickPrefix):
		rest := strings.TrimPrefix(script, clickPrefix)
		end := strings.Index(rest, `);if(el)`)
		if end < 0 {
			return fmt.Errorf("mock session: malformed click script")
		}
		var selector string
		if err := json.Unmarshal([]byte(rest[:end]), &selector); err != nil {
			return fmt.Errorf("mock session: click selector: %w", err)
		}
		found := s.doc.Find(selector).Length() > 0
		if found {
			s.clicks++
			if err := s.advance(); err != nil {
				return err
			}
		}
		value = found
	default:
		return fmt.Errorf("mock session: unsupported script %q", script)
	}

	if res == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, res)
}

func (s *MockSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.requireDoc(); err != nil {
		return nil, err
	}
	sel := s.doc.Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %q after %s", ErrWaitTimeout, selector, timeout)
	}
	return sel.First(), nil
}

func (s *MockSession) Close() error {
	s.browser.mutex.Lock()
	defer s.browser.mutex.Unlock()
	s.closed++
	s.browser.closes++
	return nil
}
