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

// Package interp glues one interpreter instance's arena and scope tree
// together and defines two narrow views of the arena: Reader, for
// dereferencing existing nodes, and Allocator, for allocating new ones.
// Both are implemented by *arena.Arena. kube/eval does not use them: it
// holds the *arena.Arena itself and both reads and allocates through it.
// The two views mirror the read-only Vertex dereferencing vs. mutating
// OpContext split in internal/core/adt/context.go, simplified down to
// two narrow interfaces since this evaluator has no unification engine
// to synchronize.
package interp

import (
	"bramble.dev/kube/kube/arena"
	"bramble.dev/kube/kube/ast"
	"bramble.dev/kube/kube/env"
	"bramble.dev/kube/kube/native"
)

// Reader grants read-only access to arena contents.
type Reader interface {
	Deref(id ast.NodeID) *ast.Node
	ToPtr(v ast.ChildVec) []ast.NodeID
	NameString(id ast.NameID) string
	SymbolString(id ast.SymbolID) string
	Native(id ast.NameID) (ast.NativeOp, bool)
}

// Allocator grants mutable access to the allocation cursor.
type Allocator interface {
	Push(n ast.Node) ast.NodeID
	AllocVec(n int) ast.ChildVec
}

var (
	_ Reader    = (*arena.Arena)(nil)
	_ Allocator = (*arena.Arena)(nil)
)

// Interp owns one interpreter instance's storage: the arena (every
// node, every child vector, every interned name/symbol) and the scope
// tree used for lexical lookup.
type Interp struct {
	Arena *arena.Arena
	Env   *env.Env
}

// New creates a fresh interpreter: natives registered, one root scope.
func New() *Interp {
	a := arena.New()
	native.Register(a)
	return &Interp{Arena: a, Env: env.NewRoot()}
}

// Reader returns ip's read-only view.
func (ip *Interp) Reader() Reader { return ip.Arena }

// Allocator returns ip's mutable view.
func (ip *Interp) Allocator() Allocator { return ip.Arena }
