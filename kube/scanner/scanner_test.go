// Copyright 2018 The CUE Authors
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

package scanner

import (
	"testing"

	"bramble.dev/kube/kube/token"
)

func scan(t *testing.T, src string) *Scanner {
	t.Helper()
	s := &Scanner{}
	s.Init([]byte(Normalize(src)), func(pos token.Position, msg string) {
		t.Fatalf("scanner error at %d: %s", pos.Offset, msg)
	})
	return s
}

// TestMaximalMunch checks that ":" after a verb rune is classified as
// ASSIGN rather than VERB followed by COLON, even though VERB's pattern
// is a strict prefix of ASSIGN's and sits earlier in the table
// (spec.md §4.2).
func TestMaximalMunch(t *testing.T) {
	s := scan(t, "+:")
	kind, text := s.Peek()
	if kind != token.ASSIGN || text != "+:" {
		t.Errorf("Peek() = (%v, %q), want (ASSIGN, \"+:\")", kind, text)
	}
}

func TestDictKeyVsOpenB(t *testing.T) {
	s := scan(t, "[a:1]")
	if kind, _ := s.Peek(); kind != token.DICTKEY {
		t.Errorf("Peek() kind = %v, want DICTKEY", kind)
	}

	s2 := scan(t, "[1]")
	if kind, _ := s2.Peek(); kind != token.OPENB {
		t.Errorf("Peek() kind = %v, want OPENB", kind)
	}
}

func TestQuitToken(t *testing.T) {
	s := scan(t, `\\`)
	if kind, _ := s.Peek(); kind != token.QUIT {
		t.Errorf("Peek() kind = %v, want QUIT", kind)
	}
}

func TestViewVsColon(t *testing.T) {
	s := scan(t, "x::1")
	s.Expect(token.NAME)
	if kind, _ := s.Peek(); kind != token.VIEW {
		t.Errorf("Peek() after name = %v, want VIEW", kind)
	}

	s2 := scan(t, "x:1")
	s2.Expect(token.NAME)
	if kind, _ := s2.Peek(); kind != token.COLON {
		t.Errorf("Peek() after name = %v, want COLON", kind)
	}
}

func TestAtNounCoversExpectedStarts(t *testing.T) {
	starts := []string{"1", "a", "`sym", `"s"`, "$[", "(", "{"}
	for _, src := range starts {
		s := scan(t, src)
		if !s.AtNoun() {
			t.Errorf("AtNoun() for %q = false, want true", src)
		}
	}

	s := scan(t, ";")
	if s.AtNoun() {
		t.Errorf("AtNoun() for %q = true, want false", ";")
	}
}
