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

// Package arena implements the bump allocator that owns every expression
// tree node, every child-vector cell, and every interned name/symbol for
// one interpreter instance (spec.md §3.1, §4.1). Nodes are referenced by
// small integer ids rather than pointers so that copying a node value is
// cheap and storage stays contiguous and cache-friendly (spec.md §9).
package arena

import "bramble.dev/kube/kube/ast"

// Arena is a typed bump allocator: ids are assigned in allocation order
// and are never reused or invalidated except by a full Clear.
type Arena struct {
	nodes    []ast.Node
	children []ast.NodeID

	names   *internTable
	symbols *internTable

	natives map[ast.NameID]ast.NativeOp
}

// New creates an empty arena with no nodes allocated yet. Id 0 is
// reserved so that a zero-value NodeID reliably means "absent".
func New() *Arena {
	a := &Arena{
		nodes:   make([]ast.Node, 1, 256),
		names:   newInternTable(),
		symbols: newInternTable(),
		natives: make(map[ast.NameID]ast.NativeOp, 8),
	}
	return a
}

// Push allocates a new node cell, copies cell into it, and returns its id.
// Amortized O(1): storage grows geometrically.
func (a *Arena) Push(cell ast.Node) ast.NodeID {
	id := ast.NodeID(len(a.nodes))
	a.nodes = append(a.nodes, cell)
	return id
}

// Deref returns a pointer to the node at id, valid until the next Clear.
func (a *Arena) Deref(id ast.NodeID) *ast.Node {
	return &a.nodes[id]
}

// AllocVec reserves n contiguous, zero-valued child cells and returns a
// handle to them. The caller fills the cells via ToPtr.
func (a *Arena) AllocVec(n int) ast.ChildVec {
	first := uint32(len(a.children))
	for i := 0; i < n; i++ {
		a.children = append(a.children, 0)
	}
	return ast.ChildVec{First: first, Len: uint32(n)}
}

// ToPtr returns the slice of child cells backing v, for bulk fill or
// in-place mutation during evaluation (spec.md §4.5: List/Sequence
// rewrite their own cells).
func (a *Arena) ToPtr(v ast.ChildVec) []ast.NodeID {
	return a.children[v.First : v.First+v.Len]
}

// Clear resets the arena to empty. Individual cells cannot be freed;
// only a full reset is supported (spec.md §3.1). The REPL never calls
// this between lines because interned names and lambda bodies must
// persist across lines (spec.md §5); it exists for tests and for a
// fresh interpreter instance.
func (a *Arena) Clear() {
	a.nodes = a.nodes[:1]
	a.children = a.children[:0]
	a.names = newInternTable()
	a.symbols = newInternTable()
	a.natives = make(map[ast.NameID]ast.NativeOp, 8)
}

// InternName interns s in the names table and returns a Name node
// carrying its id.
func (a *Arena) InternName(s string) ast.Node {
	return ast.Node{Kind: ast.KName, Name: a.InternNameID(s)}
}

// InternNameID interns s in the names table, returning its NameID. The
// first use of a given string allocates a new id equal to the current
// table size (spec.md §3.2).
func (a *Arena) InternNameID(s string) ast.NameID {
	return ast.NameID(a.names.intern(s))
}

// InternSymbol interns s in the symbols table and returns a Symbol node
// carrying its id.
func (a *Arena) InternSymbol(s string) ast.Node {
	return ast.Node{Kind: ast.KSymbol, Symbol: a.InternSymbolID(s)}
}

// InternSymbolID interns s in the symbols table, returning its SymbolID.
func (a *Arena) InternSymbolID(s string) ast.SymbolID {
	return ast.SymbolID(a.symbols.intern(s))
}

// NameID returns the id s would get from InternName, without inserting
// it: either the existing id, or the next-to-be-allocated one. Used by
// the parser to answer "might this name already be a native?" without
// growing the table (spec.md §4.1).
func (a *Arena) NameID(s string) ast.NameID {
	return ast.NameID(a.names.lookup(s))
}

// NameString reverse-looks-up a NameID. O(1) via the dense reverse
// table; used by the printer and by eval's undefined-name message.
func (a *Arena) NameString(id ast.NameID) string {
	return a.names.string(uint16(id))
}

// SymbolString reverse-looks-up a SymbolID.
func (a *Arena) SymbolString(id ast.SymbolID) string {
	return a.symbols.string(uint16(id))
}

// AddNative interns name and registers it as a native function carrying
// opcode op (spec.md §3.2, §4.1).
func (a *Arena) AddNative(name string, op ast.NativeOp) ast.NameID {
	id := a.InternNameID(name)
	a.natives[id] = op
	return id
}

// Native reports whether id names a registered native, and if so, which
// opcode.
func (a *Arena) Native(id ast.NameID) (ast.NativeOp, bool) {
	op, ok := a.natives[id]
	return op, ok
}
