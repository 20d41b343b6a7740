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
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// ChromedpLauncher starts headless Chrome once and opens a new tab per session.
type ChromedpLauncher struct {
	// ExecPath overrides the browser binary (defaults to $CHROME_PATH, then
	// chromedp's lookup).
	ExecPath string
	Headless bool
	// UserAgent overrides the browser's user agent when set.
	UserAgent string
	// NavigationTimeout bounds each page load.
	NavigationTimeout time.Duration

	mutex         sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromedpLauncher returns a headless launcher with a 30 second page load timeout.
func NewChromedpLauncher() *ChromedpLauncher {
	return &ChromedpLauncher{
		Headless:          true,
		NavigationTimeout: 30 * time.Second,
	}
}

func (l *ChromedpLauncher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	execPath := l.ExecPath
	if execPath == "" {
		execPath = os.Getenv("CHROME_PATH")
	}
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}
	if l.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.UserAgent))
	}
	return opts
}

// browser returns the browser context, starting the process on first use.
// A failed start is not cached, the next call tries again.
func (l *ChromedpLauncher) browser() (context.Context, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.browserCtx != nil {
		if l.browserCtx.Err() == nil {
			return l.browserCtx, nil
		}
		l.shutdownLocked()
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), l.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	// The first Run starts the browser, which lives as long as browserCtx.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	l.allocCancel, l.browserCtx, l.browserCancel = allocCancel, browserCtx, browserCancel
	return browserCtx, nil
}

// NewSession opens a browser tab. The browser process is started on first use.
func (l *ChromedpLauncher) NewSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	browserCtx, err := l.browser()
	if err != nil {
		return nil, err
	}

	// A context derived from the browser context opens a tab in the
	// existing process; cancelling it closes only that tab.
	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("opening tab: %w", err)
	}

	timeout := l.NavigationTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &chromedpSession{ctx: tabCtx, cancel: tabCancel, navTimeout: timeout}, nil
}

// Close shuts down the browser process.
func (l *ChromedpLauncher) Close() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.shutdownLocked()
}

func (l *ChromedpLauncher) shutdownLocked() {
	if l.browserCancel != nil {
		l.browserCancel()
	}
	if l.allocCancel != nil {
		l.allocCancel()
	}
	l.allocCancel, l.browserCtx, l.browserCancel = nil, nil, nil
}

// runWith runs actions on the tab context while honoring cancellation of the
// caller's ctx. Cancelling the derived context aborts the actions without
// closing the tab.
func runWith(ctx, tabCtx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

type chromedpSession struct {
	ctx        context.Context
	cancel     context.CancelFunc
	navTimeout time.Duration
}

func toNode(h Handle) (*cdp.Node, error) {
	n, ok := h.(*cdp.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("handle %T does not belong to a chromedp session", h)
	}
	return n, nil
}

func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(s.ctx, s.navTimeout)
	defer cancel()
	err := runWith(ctx, navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %s", ErrWaitTimeout, url)
	}
	return err
}

func (s *chromedpSession) FindAll(ctx context.Context, selector string) ([]Handle, error) {
	var nodes []*cdp.Node
	if err := runWith(ctx, s.ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	return toHandles(nodes), nil
}

func (s *chromedpSession) FindWithin(ctx context.Context, scope Handle, selector string) ([]Handle, error) {
	node, err := toNode(scope)
	if err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	if err := runWith(ctx, s.ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0), chromedp.FromNode(node))); err != nil {
		return nil, err
	}
	return toHandles(nodes), nil
}

func (s *chromedpSession) Attribute(ctx context.Context, h Handle, name string) (string, bool, error) {
	node, err := toNode(h)
	if err != nil {
		return "", false, err
	}
	var value string
	var ok bool
	err = runWith(ctx, s.ctx, chromedp.AttributeValue([]cdp.NodeID{node.NodeID}, name, &value, &ok, chromedp.ByNodeID))
	return value, ok, err
}

func (s *chromedpSession) Text(ctx context.Context, h Handle) (string, error) {
	node, err := toNode(h)
	if err != nil {
		return "", err
	}
	var text string
	err = runWith(ctx, s.ctx, chromedp.Text([]cdp.NodeID{node.NodeID}, &text, chromedp.ByNodeID))
	return text, err
}

func (s *chromedpSession) ExecuteScript(ctx context.Context, script string, res any) error {
	return runWith(ctx, s.ctx, chromedp.Evaluate(script, res))
}

func (s *chromedpSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) (Handle, error) {
	waitCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	var nodes []*cdp.Node
	err := runWith(ctx, waitCtx, chromedp.Nodes(selector, &nodes, chromedp.ByQuery))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %q after %s", ErrWaitTimeout, selector, timeout)
		}
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrWaitTimeout, selector)
	}
	return nodes[0], nil
}

// Close closes the tab.
func (s *chromedpSession) Close() error {
	s.cancel()
	return nil
}

func toHandles(nodes []*cdp.Node) []Handle {
	out := make([]Handle, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out
}
