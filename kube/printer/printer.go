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

// Package printer emits the canonical textual form of an expression
// tree (spec.md §4.6), walking the arena by id the way cue/ast's
// print.go walks an *ast.File. The List{curry:true} one-per-line layout
// measures column width with golang.org/x/text/width instead of a bare
// len(), matching how CUE's own formatter accounts for East-Asian wide
// runes; ASCII input degrades to the same result plain byte-length
// would give.
package printer

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"bramble.dev/kube/kube/arena"
	"bramble.dev/kube/kube/ast"
	"bramble.dev/kube/kube/native"
)

// Sprint renders id's canonical form, dereferencing through a.
func Sprint(a *arena.Arena, id ast.NodeID) string {
	var b strings.Builder
	write(&b, a, id)
	return b.String()
}

func write(b *strings.Builder, a *arena.Arena, id ast.NodeID) {
	n := a.Deref(id)
	switch n.Kind {
	case ast.KNil:
		// nothing

	case ast.KBool:
		if n.Bool {
			b.WriteString("1b")
		} else {
			b.WriteString("0b")
		}

	case ast.KInt:
		b.WriteString(strconv.FormatInt(n.Int, 10))

	case ast.KFloat:
		b.WriteString(strconv.FormatFloat(n.Float, 'g', -1, 64))

	case ast.KSymbol:
		b.WriteByte('`')
		b.WriteString(a.SymbolString(n.Symbol))

	case ast.KString:
		b.WriteByte('"')
		b.WriteString(n.String())
		b.WriteByte('"')

	case ast.KName:
		b.WriteString(a.NameString(n.Name))

	case ast.KIoverb:
		b.WriteByte(n.Fd + '0')
		b.WriteByte(':')

	case ast.KVerb:
		writeVerb(b, a, n)

	case ast.KAdverb:
		write(b, a, n.Left)
		b.WriteByte(' ')
		write(b, a, n.Verb)
		b.WriteByte(' ')
		b.WriteString(adverbText(n.AdverbKind))
		b.WriteByte(' ')
		write(b, a, n.Right)

	case ast.KList:
		writeList(b, a, n)

	case ast.KSequence:
		writeJoined(b, a, a.ToPtr(n.Values), ";")

	case ast.KDict:
		writeDict(b, a, n)

	case ast.KLambda:
		writeLambda(b, a, n)

	case ast.KNative:
		b.WriteString(native.Names[n.Native])

	case ast.KNameref:
		b.WriteString(a.NameString(n.Name))
		b.WriteByte(':')
		write(b, a, n.Value)

	case ast.KCondition:
		b.WriteString("$[")
		writeJoined(b, a, a.ToPtr(n.Values), ";")
		b.WriteByte(']')

	case ast.KDebug:
		b.WriteString(native.Dump(a.Deref(n.Value)))

	case ast.KQuit:
		b.WriteString(`\\`)

	default:
		b.WriteString("?")
	}
}

func writeVerb(b *strings.Builder, a *arena.Arena, n *ast.Node) {
	args := a.ToPtr(n.Args)
	switch len(args) {
	case 0:
		b.WriteByte(n.VerbKind)
	case 1:
		b.WriteByte(n.VerbKind)
		write(b, a, args[0])
	default:
		write(b, a, args[0])
		b.WriteByte(' ')
		b.WriteByte(n.VerbKind)
		b.WriteByte(' ')
		write(b, a, args[1])
	}
}

func writeJoined(b *strings.Builder, a *arena.Arena, ids []ast.NodeID, sep string) {
	for i, id := range ids {
		if i > 0 {
			b.WriteString(sep)
		}
		write(b, a, id)
	}
}

func writeLambda(b *strings.Builder, a *arena.Arena, n *ast.Node) {
	b.WriteString("{[")
	for i, p := range n.Params() {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(a.NameString(p))
	}
	b.WriteString("] ")
	write(b, a, n.Body)
	b.WriteByte('}')
}

func writeDict(b *strings.Builder, a *arena.Arena, n *ast.Node) {
	keys := a.ToPtr(n.Keys)
	vals := a.ToPtr(n.Values)
	b.WriteByte('[')
	for i := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(a.NameString(a.Deref(keys[i]).Name))
		b.WriteByte(':')
		write(b, a, vals[i])
	}
	b.WriteByte(']')
}

// writeList implements spec.md §4.6's List formatting rules: curried
// (curry:true) lists are "unified" (all elements the same printable
// atom kind) when they print space-separated with no delimiters, "flat"
// (all atoms, mixed kinds) when they print "(a;b;c)", and otherwise
// one-per-line; non-curried lists print ",x" for a singleton or
// "(x;y;z)" otherwise.
func writeList(b *strings.Builder, a *arena.Arena, n *ast.Node) {
	ids := a.ToPtr(n.Values)
	if !n.Curry {
		if len(ids) == 1 {
			b.WriteByte(',')
			write(b, a, ids[0])
			return
		}
		b.WriteByte('(')
		writeJoined(b, a, ids, ";")
		b.WriteByte(')')
		return
	}

	switch classifyList(a, ids) {
	case listUnified:
		writeJoined(b, a, ids, " ")
	case listFlat:
		b.WriteByte('(')
		writeJoined(b, a, ids, ";")
		b.WriteByte(')')
	default:
		writeOnePerLine(b, a, ids)
	}
}

type listShape int

const (
	listOnePerLine listShape = iota
	listFlat
	listUnified
)

// classifyList inspects ids to decide which of the three curried-list
// layouts applies: unified requires every element to be an atom of the
// same Kind; flat requires every element to be an atom (any mix of
// kinds); anything containing a non-atom (List, Dict, Lambda, ...)
// forces one-per-line.
func classifyList(a *arena.Arena, ids []ast.NodeID) listShape {
	if len(ids) == 0 {
		return listUnified
	}
	allAtoms := true
	sameKind := true
	first := a.Deref(ids[0]).Kind
	for _, id := range ids {
		k := a.Deref(id).Kind
		if !isAtomKind(k) {
			allAtoms = false
		}
		if k != first {
			sameKind = false
		}
	}
	switch {
	case allAtoms && sameKind:
		return listUnified
	case allAtoms:
		return listFlat
	default:
		return listOnePerLine
	}
}

func isAtomKind(k ast.Kind) bool {
	switch k {
	case ast.KBool, ast.KInt, ast.KFloat, ast.KSymbol, ast.KString, ast.KName:
		return true
	default:
		return false
	}
}

// writeOnePerLine lays out one element per line, right-padding each
// rendered element to the widest element's display width before the
// newline so a terminal showing the output keeps a ragged-but-aligned
// left edge; display width accounts for East-Asian wide runes via
// golang.org/x/text/width instead of counting bytes or runes.
func writeOnePerLine(b *strings.Builder, a *arena.Arena, ids []ast.NodeID) {
	rendered := make([]string, len(ids))
	widest := 0
	for i, id := range ids {
		rendered[i] = Sprint(a, id)
		if w := displayWidth(rendered[i]); w > widest {
			widest = w
		}
	}
	for i, s := range rendered {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s)
		if pad := widest - displayWidth(s); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
	}
}

func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w++
		}
	}
	return w
}

func adverbText(k ast.AdverbKind) string {
	switch k {
	case ast.AEach:
		return "'"
	case ast.AOverJoin:
		return "/"
	case ast.AScanSplit:
		return `\`
	case ast.AEachPrior:
		return "':"
	case ast.AEachRight:
		return "/:"
	case ast.AEachLeft:
		return `\:`
	default:
		return "?"
	}
}
