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

package parser

import (
	"testing"

	"bramble.dev/kube/kube/arena"
	"bramble.dev/kube/kube/ast"
	"bramble.dev/kube/kube/errors"
	"bramble.dev/kube/kube/printer"
)

func mustParse(t *testing.T, src string) (ast.NodeID, *arena.Arena) {
	t.Helper()
	a := arena.New()
	id, err := Parse(src, a)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return id, a
}

// TestRoundTrip checks that parsing and re-printing a source line
// recovers its canonical form, for the literal and verb forms spec.md
// §4.6 specifies. The printer spaces binary verbs ("left kind right",
// per §4.6) even when the source did not, so expectations are given
// separately from input rather than asserting byte-for-byte identity.
func TestRoundTrip(t *testing.T) {
	tests := []struct{ src, want string }{
		{"2+3", "2 + 3"},
		{"1+1 2 3", "1 + 1 2 3"},
		{"1 2 3+10 20 30", "1 2 3 + 10 20 30"},
		{"$[1=1;42;0]", "$[1 = 1;42;0]"},
	}
	for _, tt := range tests {
		id, a := mustParse(t, tt.src)
		if got := printer.Sprint(a, id); got != tt.want {
			t.Errorf("Sprint(Parse(%q)) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

// TestBracketArgsAreCurryFalse checks that a semicolon-separated bracket
// argument list parses to a two-element List whose Curry flag is false.
// The space-juxtaposed form is covered by TestBracketVectorArgIsCurryTrue.
func TestBracketArgsAreCurryFalse(t *testing.T) {
	id, a := mustParse(t, "f[3;4]")
	n := a.Deref(id)
	if n.Kind != ast.KVerb || n.VerbKind != '.' {
		t.Fatalf("Parse(%q) root = %+v, want Verb{'.'}", "f[3;4]", n)
	}
	args := a.ToPtr(n.Args)
	if len(args) != 2 {
		t.Fatalf("application Args has %d elements, want 2", len(args))
	}
	argsNode := a.Deref(args[1])
	if argsNode.Kind != ast.KList || argsNode.Curry {
		t.Errorf("f[3;4]'s argument node = %+v, want List{curry:false}", argsNode)
	}
	if got := a.ToPtr(argsNode.Values); len(got) != 2 {
		t.Errorf("f[3;4]'s argument list has %d elements, want 2", len(got))
	}
}

func TestBracketVectorArgIsCurryTrue(t *testing.T) {
	id, a := mustParse(t, "f[3 4]")
	n := a.Deref(id)
	args := a.ToPtr(n.Args)
	argsNode := a.Deref(args[1])
	if argsNode.Kind != ast.KList || !argsNode.Curry {
		t.Errorf("f[3 4]'s argument node = %+v, want List{curry:true}", argsNode)
	}
}

func TestDuplicateDictKeyIsRank(t *testing.T) {
	a := arena.New()
	_, err := Parse("[a:1;a:2]", a)
	if err == nil {
		t.Fatal("Parse of a dict with a duplicate key succeeded, want a Rank error")
	}
	if err.Kind() != errors.Rank {
		t.Errorf("err.Kind() = %v, want %v", err.Kind(), errors.Rank)
	}
}

func TestDictNoDuplicateKeyOK(t *testing.T) {
	a := arena.New()
	id, err := Parse("[a:1;b:2]", a)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	n := a.Deref(id)
	if n.Kind != ast.KDict {
		t.Fatalf("root kind = %v, want Dict", n.Kind)
	}
	if got := len(a.ToPtr(n.Keys)); got != 2 {
		t.Errorf("dict has %d keys, want 2", got)
	}
}

func TestQuitToken(t *testing.T) {
	id, a := mustParse(t, `\\`)
	if got := a.Deref(id).Kind; got != ast.KQuit {
		t.Errorf("Parse(%q) kind = %v, want Quit", `\\`, got)
	}
}

func TestStringSizeError(t *testing.T) {
	a := arena.New()
	long := make([]byte, ast.MaxStringBytes+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := Parse(`"`+string(long)+`"`, a)
	if err == nil {
		t.Fatal("Parse of an over-long string literal succeeded, want a StringSize error")
	}
	if err.Kind() != errors.StringSize {
		t.Errorf("err.Kind() = %v, want %v", err.Kind(), errors.StringSize)
	}
}
