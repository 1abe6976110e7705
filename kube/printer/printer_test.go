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

package printer

import (
	"testing"

	"bramble.dev/kube/kube/arena"
	"bramble.dev/kube/kube/ast"
)

func TestAtoms(t *testing.T) {
	a := arena.New()
	str := ast.Node{Kind: ast.KString}
	str.SetString("hi")

	tests := []struct {
		name string
		node ast.Node
		want string
	}{
		{"Int", ast.Node{Kind: ast.KInt, Int: -7}, "-7"},
		{"Float", ast.Node{Kind: ast.KFloat, Float: 1.5}, "1.5"},
		{"BoolTrue", ast.Node{Kind: ast.KBool, Bool: true}, "1b"},
		{"BoolFalse", ast.Node{Kind: ast.KBool, Bool: false}, "0b"},
		{"String", str, `"hi"`},
		{"Nil", ast.Node{Kind: ast.KNil}, ""},
	}
	for _, tt := range tests {
		id := a.Push(tt.node)
		if got := Sprint(a, id); got != tt.want {
			t.Errorf("%s: Sprint = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSymbol(t *testing.T) {
	a := arena.New()
	id := a.Push(ast.Node{Kind: ast.KSymbol, Symbol: a.InternSymbolID("foo")})
	if got, want := Sprint(a, id), "`foo"; got != want {
		t.Errorf("Sprint(Symbol) = %q, want %q", got, want)
	}
}

func TestCurryFalseList(t *testing.T) {
	a := arena.New()

	one := a.Push(ast.Node{Kind: ast.KInt, Int: 9})
	singleton := a.AllocVec(1)
	copy(a.ToPtr(singleton), []ast.NodeID{one})
	id := a.Push(ast.Node{Kind: ast.KList, Curry: false, Values: singleton})
	if got, want := Sprint(a, id), ",9"; got != want {
		t.Errorf("singleton curry:false list: Sprint = %q, want %q", got, want)
	}

	x := a.Push(ast.Node{Kind: ast.KInt, Int: 1})
	y := a.Push(ast.Node{Kind: ast.KInt, Int: 2})
	pair := a.AllocVec(2)
	copy(a.ToPtr(pair), []ast.NodeID{x, y})
	id2 := a.Push(ast.Node{Kind: ast.KList, Curry: false, Values: pair})
	if got, want := Sprint(a, id2), "(1;2)"; got != want {
		t.Errorf("pair curry:false list: Sprint = %q, want %q", got, want)
	}
}

func TestCurryTrueUnifiedList(t *testing.T) {
	a := arena.New()
	ids := []ast.NodeID{
		a.Push(ast.Node{Kind: ast.KInt, Int: 1}),
		a.Push(ast.Node{Kind: ast.KInt, Int: 2}),
		a.Push(ast.Node{Kind: ast.KInt, Int: 3}),
	}
	v := a.AllocVec(len(ids))
	copy(a.ToPtr(v), ids)
	id := a.Push(ast.Node{Kind: ast.KList, Curry: true, Values: v})
	if got, want := Sprint(a, id), "1 2 3"; got != want {
		t.Errorf("unified curry:true list: Sprint = %q, want %q", got, want)
	}
}

func TestDict(t *testing.T) {
	a := arena.New()
	keyA := a.Push(a.InternName("a"))
	keyB := a.Push(a.InternName("b"))
	valA := a.Push(ast.Node{Kind: ast.KInt, Int: 1})
	valB := a.Push(ast.Node{Kind: ast.KInt, Int: 2})

	keys := a.AllocVec(2)
	copy(a.ToPtr(keys), []ast.NodeID{keyA, keyB})
	vals := a.AllocVec(2)
	copy(a.ToPtr(vals), []ast.NodeID{valA, valB})

	id := a.Push(ast.Node{Kind: ast.KDict, Keys: keys, Values: vals})
	if got, want := Sprint(a, id), "[a:1;b:2]"; got != want {
		t.Errorf("Sprint(Dict) = %q, want %q", got, want)
	}
}

func TestLambda(t *testing.T) {
	a := arena.New()
	x := a.InternNameID("x")
	y := a.InternNameID("y")
	xNode := a.Push(ast.Node{Kind: ast.KName, Name: x})
	yNode := a.Push(ast.Node{Kind: ast.KName, Name: y})
	sum := a.AllocVec(2)
	copy(a.ToPtr(sum), []ast.NodeID{xNode, yNode})
	body := a.Push(ast.Node{Kind: ast.KVerb, VerbKind: '+', Args: sum})

	n := ast.Node{Kind: ast.KLambda, Body: body}
	n.SetParams([]ast.NameID{x, y})
	id := a.Push(n)

	if got, want := Sprint(a, id), "{[x;y] x + y}"; got != want {
		t.Errorf("Sprint(Lambda) = %q, want %q", got, want)
	}
}

func TestQuit(t *testing.T) {
	a := arena.New()
	id := a.Push(ast.Node{Kind: ast.KQuit})
	if got, want := Sprint(a, id), `\\`; got != want {
		t.Errorf("Sprint(Quit) = %q, want %q", got, want)
	}
}
