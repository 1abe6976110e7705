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

package eval

import (
	"testing"

	"bramble.dev/kube/kube/errors"
	"bramble.dev/kube/kube/interp"
	"bramble.dev/kube/kube/parser"
	"bramble.dev/kube/kube/printer"
)

// run parses and evaluates one line against a fresh interpreter,
// returning the canonical printed form of the result.
func run(t *testing.T, ip *interp.Interp, src string) string {
	t.Helper()
	root, perr := parser.Parse(src, ip.Arena)
	if perr != nil {
		t.Fatalf("Parse(%q) failed: %v", src, perr)
	}
	result, eerr := Run(ip, root)
	if eerr != nil {
		t.Fatalf("Run(%q) failed: %v", src, eerr)
	}
	out := printer.Sprint(ip.Arena, result)
	ip.Env.Clean()
	return out
}

func runErr(t *testing.T, ip *interp.Interp, src string) errors.Error {
	t.Helper()
	root, perr := parser.Parse(src, ip.Arena)
	if perr != nil {
		return perr
	}
	_, eerr := Run(ip, root)
	ip.Env.Clean()
	return eerr
}

// TestScenarioTable checks every row of spec.md §8's end-to-end
// scenario table, in order, against a single REPL-like session so that
// the fac definition persists into the next line exactly as the root
// scope does between REPL lines.
func TestScenarioTable(t *testing.T) {
	ip := interp.New()
	tests := []struct{ src, want string }{
		{"2+3", "5"},
		{"1+1 2 3", "2 3 4"},
		{"1 2 3+10 20 30", "11 22 33"},
		{"$[1=1;42;0]", "42"},
		{"fac:{$[x=1;1;x*fac[x-1]]};fac[5]", "120"},
		{"{x+y}[3;4]", "7"},
	}
	for _, tt := range tests {
		got := run(t, ip, tt.src)
		if got != tt.want {
			t.Errorf("eval(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestFacBaseCase(t *testing.T) {
	ip := interp.New()
	run(t, ip, "fac:{$[x=1;1;x*fac[x-1]]}")
	if got := run(t, ip, "fac[1]"); got != "1" {
		t.Errorf("fac[1] = %q, want %q", got, "1")
	}
}

// TestErrorScenarioTable checks every row of spec.md §8's error table.
func TestErrorScenarioTable(t *testing.T) {
	ip := interp.New()
	tests := []struct {
		src  string
		kind errors.Kind
	}{
		{"a+1", errors.Undefined},
		{"1 2+1 2 3", errors.Length},
		{"1+`a", errors.Type},
	}
	for _, tt := range tests {
		err := runErr(t, ip, tt.src)
		if err == nil {
			t.Errorf("eval(%q) succeeded, want a %v error", tt.src, tt.kind)
			continue
		}
		if err.Kind() != tt.kind {
			t.Errorf("eval(%q) kind = %v, want %v", tt.src, err.Kind(), tt.kind)
		}
	}
}

func TestQuitExitsWithoutError(t *testing.T) {
	ip := interp.New()
	root, perr := parser.Parse(`\\`, ip.Arena)
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}
	result, eerr := Run(ip, root)
	if eerr != nil {
		t.Fatalf("Run failed: %v", eerr)
	}
	if ip.Arena.Deref(result).Kind.String() != "Quit" {
		t.Errorf("result kind = %v, want Quit", ip.Arena.Deref(result).Kind)
	}
}

// TestMissingLambdaArgsAreLazy exercises spec.md §9's open-question
// resolution: a lambda applied to fewer arguments than it declares
// succeeds, binding only the supplied prefix, and only fails once the
// body references an unbound parameter.
func TestMissingLambdaArgsAreLazy(t *testing.T) {
	ip := interp.New()
	if got := run(t, ip, "{x+1}[41]"); got != "42" {
		t.Errorf("{x+1}[41] = %q, want %q", got, "42")
	}

	err := runErr(t, ip, "{x+y}[3]")
	if err == nil {
		t.Fatal("{x+y}[3] succeeded, want Undefined once y is referenced")
	}
	if err.Kind() != errors.Undefined {
		t.Errorf("{x+y}[3] kind = %v, want %v", err.Kind(), errors.Undefined)
	}
}

// TestExtraLambdaArgsAreIgnored exercises the same open question's other
// half: more arguments than parameters is not an error.
func TestExtraLambdaArgsAreIgnored(t *testing.T) {
	ip := interp.New()
	if got := run(t, ip, "{x+1}[41;99]"); got != "42" {
		t.Errorf("{x+1}[41;99] = %q, want %q", got, "42")
	}
}

// TestCurriedBracketArgsUnpackPositionally exercises spec.md §4.5.2
// rule (a): a space-juxtaposed bracket argument list is a curried list
// in argument position, and its children bind positionally just like a
// ';'-separated list's, not as one vector-valued argument.
func TestCurriedBracketArgsUnpackPositionally(t *testing.T) {
	ip := interp.New()
	if got := run(t, ip, "{x+y}[3 4]"); got != "7" {
		t.Errorf("{x+y}[3 4] = %q, want %q", got, "7")
	}
	if got := run(t, ip, "{x+y}[3;4]"); got != "7" {
		t.Errorf("{x+y}[3;4] = %q, want %q", got, "7")
	}
}

func TestNativeTypeTags(t *testing.T) {
	ip := interp.New()
	tests := []struct{ src, want string }{
		{"type[1]", "-7"},
		{"type[1.5]", "-8"},
		{"type[`a]", "-9"},
		{"type[\"s\"]", "127"},
	}
	for _, tt := range tests {
		if got := run(t, ip, tt.src); got != tt.want {
			t.Errorf("eval(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestConcatTuples(t *testing.T) {
	ip := interp.New()
	if got := run(t, ip, "1,2"); got != "(1;2)" {
		t.Errorf(`eval("1,2") = %q, want %q`, got, "(1;2)")
	}
}

func TestNullaryVerbReturnedUnchanged(t *testing.T) {
	ip := interp.New()
	if got := run(t, ip, "+"); got != "+" {
		t.Errorf(`eval("+") = %q, want %q`, got, "+")
	}
}
