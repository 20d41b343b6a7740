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
	"net"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
	"golang.org/x/net/publicsuffix"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// resolveReference resolves ref against base and drops the fragment.
func resolveReference(base, ref string) (string, error) {
	u, err := urlParser.ParseRef(base, strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return u.Href(true), nil
}

// NormalizeProfileURL canonicalizes an absolute profile URL so equivalent
// spellings share one identity.
func NormalizeProfileURL(raw string) (string, error) {
	u, err := urlParser.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return u.Href(true), nil
}

// registrableDomain returns the eTLD+1 of host, or host itself when it has
// none (IP addresses, localhost).
func registrableDomain(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if net.ParseIP(strings.Trim(host, "[]")) != nil {
		return host
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}
