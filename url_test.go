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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveReference(t *testing.T) {
	base := testSite + "/@user1"

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"absolute", "https://twitter.com/user1", "https://twitter.com/user1"},
		{"root relative", "/@user1/followers", testSite + "/@user1/followers"},
		{"document relative", "collections", testSite + "/collections"},
		{"protocol relative", "//example.org/a", "https://example.org/a"},
		{"fragment dropped", "/about#team", testSite + "/about"},
		{"surrounding space", "  https://example.org/x  ", "https://example.org/x"},
		// tabs and newlines inside a URL are stripped by the WHATWG parser
		{"tabs and newlines", "/foo\tbar/\nxy", testSite + "/foobar/xy"},
		{"lone percent", "/100%", testSite + "/100%25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveReference(base, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeProfileURL(t *testing.T) {
	t.Run("equivalent spellings collapse", func(t *testing.T) {
		variants := []string{
			"https://www.producthunt.com/@user1",
			"HTTPS://WWW.PRODUCTHUNT.COM/@user1",
			"https://www.producthunt.com:443/@user1",
			"https://www.producthunt.com/./@user1#about",
		}
		for _, v := range variants {
			got, err := NormalizeProfileURL(v)
			require.NoError(t, err, v)
			assert.Equal(t, "https://www.producthunt.com/@user1", got, v)
		}
	})

	t.Run("path case is significant", func(t *testing.T) {
		a, err := NormalizeProfileURL("https://www.producthunt.com/@User1")
		require.NoError(t, err)
		b, err := NormalizeProfileURL("https://www.producthunt.com/@user1")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("relative input is rejected", func(t *testing.T) {
		_, err := NormalizeProfileURL("/@user1")
		assert.Error(t, err)
	})
}

func TestRegistrableDomain(t *testing.T) {
	assert.Equal(t, "producthunt.com", registrableDomain("www.producthunt.com"))
	assert.Equal(t, "example.co.uk", registrableDomain("a.b.example.co.uk"))
	assert.Equal(t, "producthunt.com", registrableDomain("WWW.ProductHunt.com."))
	assert.Equal(t, "127.0.0.1", registrableDomain("127.0.0.1"))
	assert.Equal(t, "localhost", registrableDomain("localhost"))
}
