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
	"time"
)

// Handle is an opaque reference to an element inside a Session.
// Handles are only valid for the session that produced them.
type Handle any

// Session is the capability set the harvester needs from a browser tab.
// A Session is owned by a single goroutine at a time.
type Session interface {
	// Navigate loads url and returns once the document is ready.
	Navigate(ctx context.Context, url string) error
	// FindAll returns every element matching selector in document order.
	FindAll(ctx context.Context, selector string) ([]Handle, error)
	// FindWithin is FindAll scoped to the subtree of scope.
	FindWithin(ctx context.Context, scope Handle, selector string) ([]Handle, error)
	// Attribute returns the named attribute of h and whether it is present.
	Attribute(ctx context.Context, h Handle, name string) (string, bool, error)
	// Text returns the visible text content of h.
	Text(ctx context.Context, h Handle) (string, error)
	// ExecuteScript evaluates script in the page and decodes its result into res.
	// res may be nil when the result is not needed.
	ExecuteScript(ctx context.Context, script string, res any) error
	// WaitFor blocks until selector matches or timeout elapses, in which case
	// the returned error wraps ErrWaitTimeout.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) (Handle, error)
	// Close releases the session. It is called exactly once per session.
	Close() error
}

// Launcher acquires new sessions.
type Launcher interface {
	NewSession(ctx context.Context) (Session, error)
}

// Scripts evaluated in the page. Session backends that do not run JavaScript
// recognize them by value.
const (
	scrollScript = `window.scrollTo(0, document.body.scrollHeight)`
	extentScript = `document.body.scrollHeight`
)

func clickScript(selector string) string {
	return `(function(){var el=document.querySelector(` + jsString(selector) + `);if(el){el.click();return true}return false})()`
}

func jsString(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		default:
			out = append(out, c)
		}
	}
	return string(append(out, '"'))
}
