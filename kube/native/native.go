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

// Package native holds the registration metadata for the interpreter's
// four built-in functions (type, parse, exec, debug — spec.md §4.5.2).
// Their call semantics live in kube/eval next to the rest of call(),
// since three of the four (parse, exec, debug) are themselves tiny
// evaluator or parser invocations; this package only owns the name-to-
// opcode binding, grounded on the builtin-registration shape of
// internal/core/adt's (now-removed) builtin table, and the kr/pretty
// dump helper debug shares with kube/printer.
package native

import (
	"github.com/kr/pretty"

	"bramble.dev/kube/kube/arena"
	"bramble.dev/kube/kube/ast"
)

// Names lists the native identifiers in registration order.
var Names = [...]string{
	ast.NativeType:  "type",
	ast.NativeParse: "parse",
	ast.NativeExec:  "exec",
	ast.NativeDebug: "debug",
}

// Register interns and binds every native function name in a, so the
// parser resolves a bare use of e.g. "type" to a Native node instead of
// a Name lookup (spec.md §4.1).
func Register(a *arena.Arena) {
	for op, name := range Names {
		a.AddNative(name, ast.NativeOp(op))
	}
}

// Dump renders a node's structure for the debug native, using
// kr/pretty the way cue/ast's debug-printing test helpers do for
// structural diffs.
func Dump(v interface{}) string {
	return pretty.Sprint(v)
}
