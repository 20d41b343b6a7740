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
	"errors"
	"fmt"
)

// Kind classifies a harvest failure.
type Kind string

const (
	// KindSetup is a failure to acquire or prepare the browsing session.
	KindSetup Kind = "setup"
	// KindNavigationTimeout is a page that did not become ready in time.
	KindNavigationTimeout Kind = "navigation_timeout"
	// KindParse is a row that is missing its name or profile reference.
	KindParse Kind = "parse"
	// KindResolution is a profile page whose links could not be gathered.
	KindResolution Kind = "resolution"
)

// Fatal reports whether a failure of this kind ends the whole run.
func (k Kind) Fatal() bool {
	return k == KindSetup
}

var (
	ErrSetup             = errors.New("session setup failed")
	ErrNavigationTimeout = errors.New("navigation timed out")
	ErrParse             = errors.New("entry could not be parsed")
	ErrResolution        = errors.New("social links could not be resolved")

	// ErrWaitTimeout is returned by Session.WaitFor when the selector never matched.
	ErrWaitTimeout = errors.New("wait timed out")

	// ErrRobotsDisallowed is returned when robots.txt forbids the target.
	ErrRobotsDisallowed = errors.New("target disallowed by robots.txt")
)

// HarvestError is the error type produced by every harvesting component.
type HarvestError struct {
	Kind    Kind
	URL     string
	Message string
	Cause   error
}

func (e *HarvestError) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.URL != "" {
		msg += " (" + e.URL + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *HarvestError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel belonging to the error's kind.
func (e *HarvestError) Is(target error) bool {
	switch target {
	case ErrSetup:
		return e.Kind == KindSetup
	case ErrNavigationTimeout:
		return e.Kind == KindNavigationTimeout
	case ErrParse:
		return e.Kind == KindParse
	case ErrResolution:
		return e.Kind == KindResolution
	}
	return false
}

func newError(kind Kind, url, format string, args ...any) *HarvestError {
	return &HarvestError{Kind: kind, URL: url, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, url string, cause error, format string, args ...any) *HarvestError {
	e := newError(kind, url, format, args...)
	e.Cause = cause
	return e
}

// KindOf returns the kind of err, or "" when err is not a HarvestError.
func KindOf(err error) Kind {
	var he *HarvestError
	if errors.As(err, &he) {
		return he.Kind
	}
	return ""
}

func diagnosticFrom(err error, name string) Diagnostic {
	d := Diagnostic{Name: name, Message: err.Error(), Kind: KindResolution}
	var he *HarvestError
	if errors.As(err, &he) {
		d.Kind = he.Kind
		d.URL = he.URL
		d.Message = he.Message
		if he.Cause != nil {
			d.Message += ": " + he.Cause.Error()
		}
	}
	return d
}
