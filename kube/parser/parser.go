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

// Package parser implements the recursive-descent parser described in
// spec.md §4.3: three mutually recursive entry points, parseList,
// parseEx, and parseNoun, that lower a single line of source into the
// tagged expression tree of kube/ast, pushing nodes directly into a
// kube/arena.Arena as they are produced. The overall parser-around-a-
// scanner shape, and the convention of returning a single node per
// production, is grounded on cue/parser.Parser; the productions
// themselves implement this language's grammar, not CUE's.
package parser

import (
	"math"
	"strconv"

	"github.com/mpvl/unique"

	"bramble.dev/kube/kube/arena"
	"bramble.dev/kube/kube/ast"
	"bramble.dev/kube/kube/errors"
	"bramble.dev/kube/kube/scanner"
	"bramble.dev/kube/kube/token"
)

type parser struct {
	s   scanner.Scanner
	a   *arena.Arena
	err errors.Error
}

// Parse lowers one line of source text into a single expression-tree
// node, pushing every node it creates into a. It returns the root node
// id, or a non-nil error if the line is malformed.
func Parse(src string, a *arena.Arena) (ast.NodeID, errors.Error) {
	p := &parser{a: a}
	norm := scanner.Normalize(src)
	p.s.Init([]byte(norm), func(pos token.Position, msg string) {
		if p.err == nil {
			p.err = errors.Newf(token.Pos(pos.Offset), errors.ParseError, "%s", msg)
		}
	})
	root := p.parseList(token.EOF, false)
	if p.err != nil {
		return 0, p.err
	}
	return root, nil
}

func (p *parser) ok() bool { return p.err == nil }

func (p *parser) push(n ast.Node) ast.NodeID {
	return p.a.Push(n)
}

func (p *parser) fail(kind errors.Kind, format string, args ...interface{}) ast.NodeID {
	if p.err == nil {
		p.err = errors.Newf(p.s.Pos(), kind, format, args...)
	}
	return p.push(ast.Node{Kind: ast.KNil})
}

func (p *parser) allocVec(ids ...ast.NodeID) ast.ChildVec {
	v := p.a.AllocVec(len(ids))
	copy(p.a.ToPtr(v), ids)
	return v
}

func (p *parser) curriedList(ids []ast.NodeID) ast.NodeID {
	if len(ids) == 1 {
		return ids[0]
	}
	return p.push(ast.Node{Kind: ast.KList, Curry: true, Values: p.allocVec(ids...)})
}

// parseList parses a ';'-separated sequence. When hasTerminal is true,
// it stops at (and consumes) terminal; otherwise it runs to end of
// input. Zero elements yield Nil; one yields that element; more yield a
// Sequence (spec.md §4.3).
func (p *parser) parseList(terminal token.Token, hasTerminal bool) ast.NodeID {
	var elems []ast.NodeID
	for {
		if !p.ok() {
			break
		}
		if hasTerminal {
			if _, got := p.s.Matches(terminal); got {
				break
			}
		}
		if p.s.Done() {
			if hasTerminal {
				p.fail(errors.ParseError, "missing closing bracket")
			}
			break
		}
		if _, got := p.s.Matches(token.SEMI); got {
			elems = append(elems, p.push(ast.Node{Kind: ast.KNil}))
			continue
		}
		if !p.startsNoun() {
			if hasTerminal {
				p.fail(errors.UnexpectedToken, "unexpected token")
			}
			break
		}
		n := p.parseNoun()
		n = p.parseEx(n)
		elems = append(elems, n)
		if !p.ok() {
			break
		}
		if _, got := p.s.Matches(token.SEMI); got {
			continue
		}
	}
	switch len(elems) {
	case 0:
		return p.push(ast.Node{Kind: ast.KNil})
	case 1:
		return elems[0]
	default:
		return p.push(ast.Node{Kind: ast.KSequence, Values: p.allocVec(elems...)})
	}
}

// startsNoun reports whether the current token can begin a parseNoun
// production. This is the broad set (every branch parseNoun's switch
// handles), used only to decide whether parseList should keep trying
// elements; it is distinct from the narrower at_noun() check spec.md
// §4.2/§4.3 uses inside parseEx to decide on noun-juxtaposition.
func (p *parser) startsNoun() bool {
	if p.s.Done() {
		return false
	}
	switch k, _ := p.s.Peek(); k {
	case token.QUIT, token.COLON, token.IOVERB, token.BOOL, token.HEXLIT,
		token.COND, token.NUMBER, token.VERB, token.SYMBOL, token.STRING,
		token.NAME, token.DICTKEY, token.OPENB, token.OPENC, token.OPENP:
		return true
	default:
		return false
	}
}

// narrowAtNoun is at_noun() from spec.md §4.2: the set parseEx consults
// to decide whether the current position starts a juxtaposed noun
// application.
func (p *parser) narrowAtNoun() bool {
	if p.s.Done() {
		return false
	}
	switch k, _ := p.s.Peek(); k {
	case token.NUMBER, token.NAME, token.SYMBOL, token.STRING,
		token.COND, token.OPENP, token.OPENC:
		return true
	default:
		return false
	}
}

func (p *parser) isNullaryVerb(id ast.NodeID) bool {
	n := p.a.Deref(id)
	return n.Kind == ast.KVerb && n.Args.Len == 0
}

// parseEx implements spec.md §4.3's parse_ex(left).
func (p *parser) parseEx(left ast.NodeID) ast.NodeID {
	if !p.ok() {
		return left
	}
	if p.a.Deref(left).Kind == ast.KNil {
		return left
	}

	if text, got := p.s.Matches(token.ADVERB); got {
		kind := adverbKind(text)
		rhs := p.parseEx(p.parseNoun())
		return p.push(ast.Node{Kind: ast.KAdverb, AdverbKind: kind, Verb: left, Right: rhs})
	}

	if !p.s.At(token.IOVERB) && p.narrowAtNoun() {
		rhs := p.parseEx(p.parseNoun())
		if p.isNullaryVerb(left) {
			kind := p.a.Deref(left).VerbKind
			return p.push(ast.Node{Kind: ast.KVerb, VerbKind: kind, Args: p.allocVec(rhs)})
		}
		// Either an already-complete verb value or a general callable:
		// both apply as '@' (spec.md §4.3).
		return p.push(ast.Node{Kind: ast.KVerb, VerbKind: '@', Args: p.allocVec(left, rhs)})
	}

	if text, got := p.s.Matches(token.VERB); got {
		kind := text[0]
		if atext, got := p.s.Matches(token.ADVERB); got {
			akind := adverbKind(atext)
			verbNode := p.push(ast.Node{Kind: ast.KVerb, VerbKind: kind})
			rhs := p.parseEx(p.parseNoun())
			return p.push(ast.Node{Kind: ast.KAdverb, AdverbKind: akind, Left: left, Verb: verbNode, Right: rhs})
		}
		rhs := p.parseEx(p.parseNoun())
		return p.push(ast.Node{Kind: ast.KVerb, VerbKind: kind, Args: p.allocVec(left, rhs)})
	}

	return left
}

var adverbKinds = map[string]ast.AdverbKind{
	"'":  ast.AEach,
	"/":  ast.AOverJoin,
	"\\": ast.AScanSplit,
	"':": ast.AEachPrior,
	"/:": ast.AEachRight,
	"\\:": ast.AEachLeft,
}

func adverbKind(text string) ast.AdverbKind {
	if k, ok := adverbKinds[text]; ok {
		return k
	}
	return ast.AEach
}

// parseNoun implements spec.md §4.3's parse_noun().
func (p *parser) parseNoun() ast.NodeID {
	if !p.ok() {
		return p.push(ast.Node{Kind: ast.KNil})
	}

	var base ast.NodeID
	switch {
	case p.s.At(token.QUIT):
		p.s.Expect(token.QUIT)
		return p.push(ast.Node{Kind: ast.KQuit})

	case p.s.At(token.COLON):
		p.s.Expect(token.COLON)
		x := p.a.InternNameID("x")
		y := p.a.InternNameID("y")
		yNode := p.push(ast.Node{Kind: ast.KName, Name: y})
		n := ast.Node{Kind: ast.KLambda, Body: yNode}
		n.SetParams([]ast.NameID{x, y})
		return p.push(n)

	case p.s.At(token.IOVERB):
		text := p.s.Expect(token.IOVERB)
		base = p.push(ast.Node{Kind: ast.KIoverb, Fd: text[0] - '0'})

	case p.s.At(token.BOOL):
		text := p.s.Expect(token.BOOL)
		digits := text[:len(text)-1]
		ids := make([]ast.NodeID, len(digits))
		for i := 0; i < len(digits); i++ {
			v := int64(0)
			if digits[i] == '1' {
				v = 1
			}
			ids[i] = p.push(ast.Node{Kind: ast.KInt, Int: v})
		}
		base = p.curriedList(ids)

	case p.s.At(token.HEXLIT):
		text := p.s.Expect(token.HEXLIT)
		v, err := strconv.ParseInt(text[2:], 16, 64)
		if err != nil {
			return p.fail(errors.ParseError, "malformed hex literal %q", text)
		}
		base = p.push(ast.Node{Kind: ast.KInt, Int: v})

	case p.s.At(token.COND):
		p.s.Expect(token.COND)
		list := p.parseList(token.CLOSEB, true)
		if p.a.Deref(list).Kind != ast.KSequence {
			return p.fail(errors.InvalidCondition, "$[...] did not produce a sequence")
		}
		base = p.push(ast.Node{Kind: ast.KCondition, Values: p.a.Deref(list).Values})

	case p.s.At(token.NUMBER):
		var ids []ast.NodeID
		for p.s.At(token.NUMBER) {
			ids = append(ids, p.parseOneNumber())
		}
		base = p.curriedList(ids)

	case p.s.At(token.VERB):
		base = p.parseVerb()

	case p.s.At(token.SYMBOL):
		var ids []ast.NodeID
		for p.s.At(token.SYMBOL) {
			text := p.s.Expect(token.SYMBOL)
			ids = append(ids, p.push(ast.Node{Kind: ast.KSymbol, Symbol: p.a.InternSymbolID(text[1:])}))
		}
		base = p.curriedList(ids)

	case p.s.At(token.STRING):
		base = p.parseString()

	case p.s.At(token.NAME):
		base = p.parseName()

	case p.s.At(token.DICTKEY), p.s.At(token.OPENB):
		base = p.parseDict()

	case p.s.At(token.OPENC):
		base = p.parseLambda()

	case p.s.At(token.OPENP):
		base = p.parseParen()

	default:
		base = p.push(ast.Node{Kind: ast.KNil})
	}

	return p.applyPostfixBrackets(base)
}

func (p *parser) parseOneNumber() ast.NodeID {
	text := p.s.Expect(token.NUMBER)
	switch text {
	case "0N":
		return p.push(ast.Node{Kind: ast.KInt, Int: math.MinInt64})
	case "0w":
		return p.push(ast.Node{Kind: ast.KFloat, Float: math.Inf(1)})
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return p.push(ast.Node{Kind: ast.KInt, Int: i})
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return p.fail(errors.ParseError, "malformed number %q", text)
	}
	return p.push(ast.Node{Kind: ast.KFloat, Float: f})
}

func (p *parser) parseVerb() ast.NodeID {
	text := p.s.Expect(token.VERB)
	kind := text[0]
	if _, got := p.s.Matches(token.OPENB); got {
		arg := p.toArgNode(p.parseList(token.CLOSEB, true))
		return p.push(ast.Node{Kind: ast.KVerb, VerbKind: kind, Args: p.allocVec(arg)})
	}
	return p.push(ast.Node{Kind: ast.KVerb, VerbKind: kind})
}

// toArgNode converts a ';'-joined Sequence into a List{curry:false} so
// that a bracket argument list always reaches kube/eval as a List node
// — whether it came from "f[3;4]" (curry:false) or the space-juxtaposed
// "f[3 4]" (curry:true, produced directly by parseList) — and Args'
// element count, not the Curry flag, decides how many positional
// arguments a call receives (spec.md §4.5.2's rule (a)/(b)). A single
// element passes through unchanged, since a lone argument needs no List
// wrapper.
func (p *parser) toArgNode(id ast.NodeID) ast.NodeID {
	n := *p.a.Deref(id)
	if n.Kind != ast.KSequence {
		return id
	}
	n.Kind = ast.KList
	n.Curry = false
	return p.push(n)
}

func (p *parser) parseString() ast.NodeID {
	text := p.s.Expect(token.STRING)
	if len(text) < 2 {
		return p.fail(errors.ParseError, "malformed string literal")
	}
	content := unescapeString(text[1 : len(text)-1])
	if len(content) > ast.MaxStringBytes {
		return p.fail(errors.StringSize, "string literal exceeds %d bytes", ast.MaxStringBytes)
	}
	n := ast.Node{Kind: ast.KString}
	n.SetString(content)
	return p.push(n)
}

func unescapeString(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			out = append(out, c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '"':
			out = append(out, '"')
		case '\\':
			out = append(out, '\\')
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

func (p *parser) parseName() ast.NodeID {
	text := p.s.Expect(token.NAME)
	id := p.a.InternNameID(text)
	if op, ok := p.a.Native(id); ok {
		return p.push(ast.Node{Kind: ast.KNative, Native: op})
	}
	if _, got := p.s.Matches(token.COLON); got {
		rhs := p.parseEx(p.parseNoun())
		return p.push(ast.Node{Kind: ast.KNameref, Name: id, Value: rhs})
	}
	return p.push(ast.Node{Kind: ast.KName, Name: id})
}

// applyPostfixBrackets implements the right-fold of [...] applications
// that follows any indexable noun (spec.md §4.3): each bracketed list
// desugars into Verb{'.', [prev, index_list]}.
func (p *parser) applyPostfixBrackets(base ast.NodeID) ast.NodeID {
	for p.ok() && p.s.At(token.OPENB) {
		p.s.Expect(token.OPENB)
		idx := p.toArgNode(p.parseList(token.CLOSEB, true))
		base = p.push(ast.Node{Kind: ast.KVerb, VerbKind: '.', Args: p.allocVec(base, idx)})
	}
	return base
}

// parseDict parses a "[name:expr;...]" dictionary literal, or the empty
// "[]" form (spec.md §4.3). Duplicate keys are rejected: the parser
// collects (NameID, value) pairs and runs them through unique.Sort the
// same way CUE's sorted-feature-list plumbing dedups field names,
// surfacing a Rank error the first time two entries remain equal.
func (p *parser) parseDict() ast.NodeID {
	var keys, vals []ast.NodeID

	if text, got := p.s.Matches(token.DICTKEY); got {
		keyName := text[1 : len(text)-1]
		keys = append(keys, p.push(ast.Node{Kind: ast.KName, Name: p.a.InternNameID(keyName)}))
		vals = append(vals, p.parseEx(p.parseNoun()))
		for {
			if _, got := p.s.Matches(token.SEMI); !got {
				break
			}
			if p.s.At(token.CLOSEB) {
				break
			}
			kname := p.s.Expect(token.NAME)
			p.s.Expect(token.COLON)
			keys = append(keys, p.push(ast.Node{Kind: ast.KName, Name: p.a.InternNameID(kname)}))
			vals = append(vals, p.parseEx(p.parseNoun()))
		}
		p.s.Expect(token.CLOSEB)
	} else {
		p.s.Expect(token.OPENB)
		p.s.Expect(token.CLOSEB)
	}

	if p.hasDuplicateKey(keys) {
		return p.fail(errors.Rank, "duplicate dict key")
	}

	return p.push(ast.Node{Kind: ast.KDict, Keys: p.allocVec(keys...), Values: p.allocVec(vals...)})
}

// sortedNames adapts a []ast.NameID to unique.Interface so unique.Sort
// can sort it and report how many distinct elements remain.
type sortedNames []ast.NameID

func (s sortedNames) Len() int           { return len(s) }
func (s sortedNames) Less(i, j int) bool { return s[i] < s[j] }
func (s sortedNames) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s sortedNames) Equal(i, j int) bool { return s[i] == s[j] }

func (s *sortedNames) Truncate(n int) { *s = (*s)[:n] }

func (p *parser) hasDuplicateKey(keys []ast.NodeID) bool {
	if len(keys) < 2 {
		return false
	}
	names := make(sortedNames, len(keys))
	for i, k := range keys {
		names[i] = p.a.Deref(k).Name
	}
	before := len(names)
	unique.Sort(&names)
	return len(names) < before
}

// parseLambda parses "{ [params] body }". If no parameter header is
// given, params are synthesized by scanning the body for the implicit
// names x, y, z: the first of those that occurs implies all preceding
// ones (spec.md §4.3). The scan treats nested lambda bodies as opaque:
// a lambda nested inside an implicit-param lambda does not contribute its own
// x/y/z uses to the outer parameter list.
func (p *parser) parseLambda() ast.NodeID {
	p.s.Expect(token.OPENC)

	var params []ast.NameID
	explicit := false
	if _, got := p.s.Matches(token.OPENB); got {
		explicit = true
		for !p.s.At(token.CLOSEB) {
			name := p.s.Expect(token.NAME)
			params = append(params, p.a.InternNameID(name))
			if _, got := p.s.Matches(token.SEMI); !got {
				break
			}
		}
		p.s.Expect(token.CLOSEB)
		if len(params) > ast.MaxLambdaParams {
			return p.fail(errors.ParseError, "lambda header takes at most %d parameters", ast.MaxLambdaParams)
		}
	}

	body := p.parseList(token.CLOSEC, true)

	if !explicit {
		x := p.a.InternNameID("x")
		y := p.a.InternNameID("y")
		z := p.a.InternNameID("z")
		switch {
		case p.scanFreeVar(body, z):
			params = []ast.NameID{x, y, z}
		case p.scanFreeVar(body, y):
			params = []ast.NameID{x, y}
		case p.scanFreeVar(body, x):
			params = []ast.NameID{x}
		default:
			params = nil
		}
	}

	n := ast.Node{Kind: ast.KLambda, Body: body}
	n.SetParams(params)
	return p.push(n)
}

func (p *parser) scanFreeVar(id ast.NodeID, target ast.NameID) bool {
	n := p.a.Deref(id)
	switch n.Kind {
	case ast.KName:
		return n.Name == target
	case ast.KNameref:
		return p.scanFreeVar(n.Value, target)
	case ast.KVerb:
		for _, c := range p.a.ToPtr(n.Args) {
			if p.scanFreeVar(c, target) {
				return true
			}
		}
		return false
	case ast.KAdverb:
		for _, c := range [3]ast.NodeID{n.Left, n.Verb, n.Right} {
			if c != 0 && p.scanFreeVar(c, target) {
				return true
			}
		}
		return false
	case ast.KList, ast.KSequence, ast.KCondition:
		for _, c := range p.a.ToPtr(n.Values) {
			if p.scanFreeVar(c, target) {
				return true
			}
		}
		return false
	case ast.KDict:
		for _, c := range p.a.ToPtr(n.Values) {
			if p.scanFreeVar(c, target) {
				return true
			}
		}
		return false
	case ast.KDebug:
		return p.scanFreeVar(n.Value, target)
	default:
		return false
	}
}

// parseParen parses "(...)": a grouped expression, or, when it contains
// more than one ';'-separated element, a heterogeneous List (spec.md
// §4.3).
func (p *parser) parseParen() ast.NodeID {
	p.s.Expect(token.OPENP)
	inner := p.parseList(token.CLOSEP, true)
	if p.a.Deref(inner).Kind == ast.KSequence {
		n := *p.a.Deref(inner)
		n.Kind = ast.KList
		n.Curry = false
		return p.push(n)
	}
	return inner
}
