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

// Package eval implements the tree-walking evaluator (spec.md §4.5):
// exec dispatches on a node's Kind, call applies a Lambda or Native to
// arguments, and a small broadcasting-arithmetic helper implements the
// scalar/vector rules the three arithmetic verbs (+, -, *) share. The shape of
// exec/call as a pair of mutually recursive functions closing over a
// shared evaluation context is grounded on internal/core/adt/eval.go's
// Evaluate/Unify pair; the broadcasting table itself is grounded on
// internal/core/adt/binop.go's per-kind binary-op dispatch, generalized
// from CUE's lattice of bottoms/disjunctions down to this language's
// much smaller scalar/vector/type-error space.
package eval

import (
	"math"

	"bramble.dev/kube/kube/arena"
	"bramble.dev/kube/kube/ast"
	"bramble.dev/kube/kube/env"
	"bramble.dev/kube/kube/errors"
	"bramble.dev/kube/kube/interp"
	"bramble.dev/kube/kube/native"
	"bramble.dev/kube/kube/parser"
	"bramble.dev/kube/kube/token"
)

// depthMargin bounds how many nested Lambda calls a single goroutine
// stack handles before eval hands the rest of the call chain to a fresh
// goroutine, whose stack starts small and grows independently
// (runtime-managed, up to debug.SetMaxStack's limit). This mirrors the
// "probe remaining stack, spill to a new goroutine" technique
// golang.org/x/tools' deeply-recursive passes use instead of trying to
// read the real machine stack pointer, which Go's runtime does not
// expose. maxSegments caps total spillovers so runaway recursion still
// terminates with a Stack error instead of exhausting memory.
const (
	depthMargin = 4000
	maxSegments = 8
)

// ctx is the mutable state threaded through one top-level evaluation.
type ctx struct {
	a        *arena.Arena
	e        *env.Env
	depth    int
	segments int
}

// Run evaluates root starting from the environment's root scope: every
// top-level REPL line begins there, since Clean resets Last to the root
// once the previous line finishes (kube/env's design note).
func Run(ip *interp.Interp, root ast.NodeID) (ast.NodeID, errors.Error) {
	c := &ctx{a: ip.Arena, e: ip.Env}
	return c.exec(root, ip.Env.Root())
}

// Exec evaluates id in the given scope of ip's environment, for callers
// (natives, tests) that need to pick a specific starting scope.
func Exec(ip *interp.Interp, id ast.NodeID, scope env.ScopeID) (ast.NodeID, errors.Error) {
	c := &ctx{a: ip.Arena, e: ip.Env}
	return c.exec(id, scope)
}

func (c *ctx) fail(kind errors.Kind, format string, args ...interface{}) (ast.NodeID, errors.Error) {
	return 0, errors.Newf(token.NoPos, kind, format, args...)
}

// exec implements spec.md §4.5's exec(node, scope).
func (c *ctx) exec(id ast.NodeID, scope env.ScopeID) (ast.NodeID, errors.Error) {
	n := c.a.Deref(id)
	switch n.Kind {
	case ast.KNil, ast.KBool, ast.KInt, ast.KFloat, ast.KSymbol, ast.KString,
		ast.KIoverb, ast.KLambda, ast.KNative, ast.KQuit:
		return id, nil

	case ast.KDict:
		// Dict values are not forced: a dict is a passive bag of
		// (name, unevaluated-expression) pairs until something indexes
		// into it (Open Question, resolved: opaque pass-through).
		return id, nil

	case ast.KName:
		v, _, ok := c.e.Get(scope, n.Name)
		if !ok {
			return c.fail(errors.Undefined, "undefined name %q", c.a.NameString(n.Name))
		}
		return c.exec(v, scope)

	case ast.KNameref:
		v, err := c.exec(n.Value, scope)
		if err != nil {
			return 0, err
		}
		c.e.Define(scope, n.Name, v)
		return v, nil

	case ast.KCondition:
		return c.execCondition(n, scope)

	case ast.KSequence:
		return c.execSequence(id, n, scope)

	case ast.KList:
		return c.execList(id, n, scope)

	case ast.KAdverb:
		return c.fail(errors.Call, "adverbs are not implemented")

	case ast.KVerb:
		return c.execVerb(id, n, scope)

	case ast.KDebug:
		v, err := c.exec(n.Value, scope)
		if err != nil {
			return 0, err
		}
		rendered := native.Dump(c.a.Deref(v))
		if len(rendered) > ast.MaxStringBytes {
			rendered = rendered[:ast.MaxStringBytes]
		}
		s := ast.Node{Kind: ast.KString}
		s.SetString(rendered)
		return c.a.Push(s), nil

	default:
		return c.fail(errors.Type, "cannot evaluate node of kind %s", n.Kind)
	}
}

// execCondition evaluates $[test;then;else] (spec.md §4.5): exactly
// three elements; test must evaluate to a Bool — Bool{true} takes the
// then branch, Bool{false} the else branch, anything else a Condition
// error.
func (c *ctx) execCondition(n *ast.Node, scope env.ScopeID) (ast.NodeID, errors.Error) {
	elems := c.a.ToPtr(n.Values)
	if len(elems) != 3 {
		return c.fail(errors.InvalidCondition, "$[...] requires exactly 3 elements, got %d", len(elems))
	}
	test, err := c.exec(elems[0], scope)
	if err != nil {
		return 0, err
	}
	tn := c.a.Deref(test)
	if tn.Kind != ast.KBool {
		return c.fail(errors.Condition, "condition test did not evaluate to a bool")
	}
	if tn.Bool {
		return c.exec(elems[1], scope)
	}
	return c.exec(elems[2], scope)
}

// execSequence evaluates a ';'-joined sequence for side effects,
// rewriting each cell in place with its evaluated value and returning
// the last one (spec.md §4.5.3): a later Nameref in the sequence can
// observe an earlier one's binding, but the printed result is only the
// final element.
func (c *ctx) execSequence(id ast.NodeID, n *ast.Node, scope env.ScopeID) (ast.NodeID, errors.Error) {
	cells := c.a.ToPtr(n.Values)
	var last ast.NodeID
	for i, child := range cells {
		v, err := c.exec(child, scope)
		if err != nil {
			return 0, err
		}
		// Re-slice: evaluating child may have grown the arena's cells.
		c.a.ToPtr(n.Values)[i] = v
		last = v
	}
	if last == 0 {
		return c.a.Push(ast.Node{Kind: ast.KNil}), nil
	}
	return last, nil
}

// execList evaluates a curried-noun list in place, element by element,
// the same way execSequence does, but preserves the List/curry tagging
// on the node itself so the printer still recognizes it as a list
// rather than a bare scalar.
func (c *ctx) execList(id ast.NodeID, n *ast.Node, scope env.ScopeID) (ast.NodeID, errors.Error) {
	cells := c.a.ToPtr(n.Values)
	for i, child := range cells {
		v, err := c.exec(child, scope)
		if err != nil {
			return 0, err
		}
		// Re-slice: evaluating child may have grown the arena's cells.
		c.a.ToPtr(n.Values)[i] = v
	}
	return id, nil
}

// execVerb evaluates a Verb application (spec.md §4.5.1, §4.5.2): a
// verb with no arguments is a first-class nullary value and is
// returned unchanged regardless of kind; otherwise arithmetic verbs
// broadcast, '=' compares, ',' tuples, '.'/'@' apply a callable, and
// any other kind is Undefined.
func (c *ctx) execVerb(id ast.NodeID, n *ast.Node, scope env.ScopeID) (ast.NodeID, errors.Error) {
	args := c.a.ToPtr(n.Args)
	if len(args) == 0 {
		return id, nil
	}

	vals := make([]ast.NodeID, len(args))
	for i, a := range args {
		v, err := c.exec(a, scope)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}

	switch n.VerbKind {
	case '+', '-', '*':
		if len(vals) != 2 {
			return c.fail(errors.Rank, "verb %q requires 2 arguments, got %d", string(n.VerbKind), len(vals))
		}
		return c.broadcast(n.VerbKind, vals[0], vals[1])

	case '=':
		if len(vals) != 2 {
			return c.fail(errors.Rank, "verb %q requires 2 arguments, got %d", string(n.VerbKind), len(vals))
		}
		return c.compareEq(vals[0], vals[1])

	case ',':
		return c.concat(vals)

	case '.', '@':
		if len(vals) != 2 {
			return c.fail(errors.Rank, "verb %q requires 2 arguments, got %d", string(n.VerbKind), len(vals))
		}
		return c.call(vals[0], vals[1], scope)

	default:
		return c.fail(errors.Undefined, "verb %q is not implemented", string(n.VerbKind))
	}
}

// asInts returns id's elements as a flat []int64 and whether id is a
// List/curry node (vector) or a bare Int (scalar), or ok=false if id is
// neither.
func (c *ctx) asInts(id ast.NodeID) (vals []int64, isVector, ok bool) {
	n := c.a.Deref(id)
	switch n.Kind {
	case ast.KInt:
		return []int64{n.Int}, false, true
	case ast.KList:
		cells := c.a.ToPtr(n.Values)
		out := make([]int64, len(cells))
		for i, cell := range cells {
			cn := c.a.Deref(cell)
			if cn.Kind != ast.KInt {
				return nil, false, false
			}
			out[i] = cn.Int
		}
		return out, true, true
	default:
		return nil, false, false
	}
}

// broadcast implements the scalar/vector arithmetic table of spec.md
// §4.5.1 for '+', '-', '*': scalar-scalar yields a scalar, scalar-
// vector and vector-scalar broadcast the scalar across every element,
// and vector-vector requires equal length or raises Length.
func (c *ctx) broadcast(verb byte, l, r ast.NodeID) (ast.NodeID, errors.Error) {
	lv, lIsVec, lok := c.asInts(l)
	rv, rIsVec, rok := c.asInts(r)
	if !lok || !rok {
		return c.fail(errors.Type, "verb %q requires int operands", string(verb))
	}

	op := func(a, b int64) int64 {
		switch verb {
		case '+':
			return a + b
		case '-':
			return a - b
		default:
			return a * b
		}
	}

	switch {
	case !lIsVec && !rIsVec:
		return c.a.Push(ast.Node{Kind: ast.KInt, Int: op(lv[0], rv[0])}), nil
	case lIsVec && !rIsVec:
		return c.pushIntVec(mapScalar(lv, rv[0], op, true)), nil
	case !lIsVec && rIsVec:
		return c.pushIntVec(mapScalar(rv, lv[0], op, false)), nil
	default:
		if len(lv) != len(rv) {
			return c.fail(errors.Length, "mismatched vector lengths %d and %d", len(lv), len(rv))
		}
		out := make([]int64, len(lv))
		for i := range lv {
			out[i] = op(lv[i], rv[i])
		}
		return c.pushIntVec(out), nil
	}
}

// mapScalar applies op element-wise between a vector and a scalar.
// vecFirst controls argument order so subtraction broadcasts correctly
// in both directions (vec-scalar vs. scalar-vec).
func mapScalar(vec []int64, scalar int64, op func(a, b int64) int64, vecFirst bool) []int64 {
	out := make([]int64, len(vec))
	for i, v := range vec {
		if vecFirst {
			out[i] = op(v, scalar)
		} else {
			out[i] = op(scalar, v)
		}
	}
	return out
}

func (c *ctx) pushIntVec(vals []int64) ast.NodeID {
	ids := make([]ast.NodeID, len(vals))
	for i, v := range vals {
		ids[i] = c.a.Push(ast.Node{Kind: ast.KInt, Int: v})
	}
	vec := c.a.AllocVec(len(ids))
	copy(c.a.ToPtr(vec), ids)
	return c.a.Push(ast.Node{Kind: ast.KList, Curry: true, Values: vec})
}

// compareEq implements '=' (spec.md §4.5.1 line 199): defined only for
// two Int operands; anything else is a Type error. There is no
// broadcasting form of '=' in this evaluator.
func (c *ctx) compareEq(l, r ast.NodeID) (ast.NodeID, errors.Error) {
	ln, rn := c.a.Deref(l), c.a.Deref(r)
	if ln.Kind != ast.KInt || rn.Kind != ast.KInt {
		return c.fail(errors.Type, "verb %q requires int operands", "=")
	}
	return c.a.Push(ast.Node{Kind: ast.KBool, Bool: ln.Int == rn.Int}), nil
}

// concat implements ',' (spec.md §4.5.1, §9 open question): 1 argument
// yields List{curry:false, values:[x]}; 2 arguments yield
// List{curry:false, values:[x,y]} (the arguments become the list's
// elements as-is, with no flattening of list-valued arguments); a
// zero-argument call never reaches here (execVerb returns the verb
// node unchanged before dispatching); more than 2 arguments is a Rank
// error.
func (c *ctx) concat(vals []ast.NodeID) (ast.NodeID, errors.Error) {
	if len(vals) > 2 {
		return c.fail(errors.Rank, "verb %q takes at most 2 arguments, got %d", ",", len(vals))
	}
	v := c.a.AllocVec(len(vals))
	copy(c.a.ToPtr(v), vals)
	return c.a.Push(ast.Node{Kind: ast.KList, Curry: false, Values: v}), nil
}

// call applies callable to a single argument node args (spec.md
// §4.5.2): a Lambda binds args positionally in a fresh child scope and
// evaluates its body; a Native dispatches to type/parse/exec/debug; any
// other callable kind is a Call error.
func (c *ctx) call(callable, args ast.NodeID, scope env.ScopeID) (ast.NodeID, errors.Error) {
	cn := c.a.Deref(callable)
	switch cn.Kind {
	case ast.KLambda:
		return c.callLambda(cn, args, scope)
	case ast.KNative:
		return c.callNative(cn.Native, args, scope)
	default:
		return c.fail(errors.Call, "cannot call a value of kind %s", cn.Kind)
	}
}

// argList returns args as a flat slice of positional arguments
// (spec.md §4.5.2's rule (a)/(b)): an empty bracket list parses to Nil
// and supplies zero arguments; a ';'-separated bracket list parses to
// List{curry:false} and a space-juxtaposed one to List{curry:true} —
// both supply one argument per element, since either is a List in
// argument position and the children of a curried list there are
// positional arguments too (rule (a)), not one vector-valued argument.
// _examples/original_source/src/exec/i10.rs's "."/"@" dispatch grounds
// this: it matches K::List{curry:true,...} in call position and
// spreads its elements as separate cargs via as_slice, the same way it
// spreads a curry:false list's elements. Anything else is a lone
// argument.
func (c *ctx) argList(args ast.NodeID) []ast.NodeID {
	n := c.a.Deref(args)
	switch {
	case n.Kind == ast.KNil:
		return nil
	case n.Kind == ast.KList:
		return c.a.ToPtr(n.Values)
	default:
		return []ast.NodeID{args}
	}
}

// callLambda binds arguments positionally (spec.md §4.5.2). Extra
// arguments beyond the lambda's parameter count are ignored. Missing
// trailing arguments are bound lazily: spec.md §9 fixes "{x+y}[3]" to
// succeed, binding x=3 and leaving y unbound, failing with Undefined
// only if the body actually references y.
func (c *ctx) callLambda(fn *ast.Node, args ast.NodeID, scope env.ScopeID) (ast.NodeID, errors.Error) {
	params := fn.Params()
	vals := c.argList(args)
	if len(vals) > len(params) {
		vals = vals[:len(params)]
	}

	c.depth++
	defer func() { c.depth-- }()

	if c.depth > depthMargin {
		if c.segments >= maxSegments {
			return c.fail(errors.Stack, "recursion too deep")
		}
		return c.callLambdaOnNewStack(fn, vals, scope)
	}

	child := c.e.NewChild(scope)
	for i := 0; i < len(vals); i++ {
		v, err := c.exec(vals[i], scope)
		if err != nil {
			return 0, err
		}
		c.e.Define(child, params[i], v)
	}
	return c.exec(fn.Body, child)
}

// callLambdaOnNewStack continues a deep recursive call chain on a fresh
// goroutine, whose stack starts small and is grown independently by the
// runtime, instead of growing the calling goroutine's stack further.
// This is the spill described in depthMargin's doc comment.
func (c *ctx) callLambdaOnNewStack(fn *ast.Node, vals []ast.NodeID, scope env.ScopeID) (ast.NodeID, errors.Error) {
	type result struct {
		id  ast.NodeID
		err errors.Error
	}
	done := make(chan result, 1)
	go func() {
		sub := &ctx{a: c.a, e: c.e, depth: 0, segments: c.segments + 1}
		params := fn.Params()
		child := sub.e.NewChild(scope)
		for i := 0; i < len(vals); i++ {
			v, err := sub.exec(vals[i], scope)
			if err != nil {
				done <- result{0, err}
				return
			}
			sub.e.Define(child, params[i], v)
		}
		id, err := sub.exec(fn.Body, child)
		done <- result{id, err}
	}()
	r := <-done
	return r.id, r.err
}

func (c *ctx) callNative(op ast.NativeOp, args ast.NodeID, scope env.ScopeID) (ast.NodeID, errors.Error) {
	switch op {
	case ast.NativeType:
		return c.nativeType(args, scope)
	case ast.NativeParse:
		return c.nativeParse(args, scope)
	case ast.NativeExec:
		return c.nativeExec(args, scope)
	case ast.NativeDebug:
		return c.nativeDebug(args, scope)
	default:
		return c.fail(errors.InvalidNativeCall, "unknown native op")
	}
}

// typeTag maps a Kind to the literal integer tag "type" reports for it
// (spec.md §4.5.2): Int is -7, Float is -8, Symbol is -9, everything
// else shares the single "other" tag, math.MaxInt8.
func typeTag(k ast.Kind) int64 {
	switch k {
	case ast.KInt:
		return -7
	case ast.KFloat:
		return -8
	case ast.KSymbol:
		return -9
	default:
		return math.MaxInt8
	}
}

// nativeType implements "type" (spec.md §4.5.2): applied to zero
// arguments it returns itself (the native value); applied to one
// argument it returns an Int tag identifying the argument's Kind.
func (c *ctx) nativeType(args ast.NodeID, scope env.ScopeID) (ast.NodeID, errors.Error) {
	vals := c.argList(args)
	if len(vals) == 0 {
		return c.a.Push(ast.Node{Kind: ast.KNative, Native: ast.NativeType}), nil
	}
	if len(vals) != 1 {
		return c.fail(errors.InvalidNativeCall, "type takes 0 or 1 arguments, got %d", len(vals))
	}
	v, err := c.exec(vals[0], scope)
	if err != nil {
		return 0, err
	}
	kind := c.a.Deref(v).Kind
	return c.a.Push(ast.Node{Kind: ast.KInt, Int: typeTag(kind)}), nil
}

// nativeParse implements "parse" (spec.md §4.5.2): its single argument
// must evaluate to a String, which is parsed as a fresh line of source
// into the same arena and returned unevaluated.
func (c *ctx) nativeParse(args ast.NodeID, scope env.ScopeID) (ast.NodeID, errors.Error) {
	vals := c.argList(args)
	if len(vals) != 1 {
		return c.fail(errors.InvalidNativeCall, "parse takes exactly 1 argument, got %d", len(vals))
	}
	v, err := c.exec(vals[0], scope)
	if err != nil {
		return 0, err
	}
	sn := c.a.Deref(v)
	if sn.Kind != ast.KString {
		return c.fail(errors.Type, "parse requires a string argument")
	}
	root, perr := parser.Parse(sn.String(), c.a)
	if perr != nil {
		return 0, perr
	}
	return root, nil
}

// nativeExec implements "exec" (spec.md §4.5.2): evaluates its argument
// twice — once to resolve it to a value, once more to run that value as
// a fresh expression — so "exec parse x" round-trips a string through
// the parser and then runs it.
func (c *ctx) nativeExec(args ast.NodeID, scope env.ScopeID) (ast.NodeID, errors.Error) {
	vals := c.argList(args)
	if len(vals) != 1 {
		return c.fail(errors.InvalidNativeCall, "exec takes exactly 1 argument, got %d", len(vals))
	}
	v, err := c.exec(vals[0], scope)
	if err != nil {
		return 0, err
	}
	return c.exec(v, scope)
}

// nativeDebug implements "debug" (spec.md §4.5.2): wraps its argument
// in a Debug node and evaluates that, producing a String holding the
// kr/pretty structural dump of the evaluated value, cut to the first
// ast.MaxStringBytes bytes since a String node holds no more than that.
func (c *ctx) nativeDebug(args ast.NodeID, scope env.ScopeID) (ast.NodeID, errors.Error) {
	vals := c.argList(args)
	if len(vals) != 1 {
		return c.fail(errors.InvalidNativeCall, "debug takes exactly 1 argument, got %d", len(vals))
	}
	wrapped := c.a.Push(ast.Node{Kind: ast.KDebug, Value: vals[0]})
	return c.exec(wrapped, scope)
}
