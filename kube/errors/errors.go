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

// Package errors defines the closed error enumeration shared by the
// parser and evaluator, and the single-character diagnostic form the
// REPL prints for each kind.
package errors

import (
	"errors"
	"fmt"

	"bramble.dev/kube/kube/token"
)

// Handler is called for each lexical error the scanner detects outside
// of its normal Expect/error-returning paths (e.g. via Scanner.error).
type Handler func(pos token.Position, msg string)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Kind is the closed set of error categories from spec.md §7. The REPL
// prints a kind as "'" + strings.ToLower(kind.String()).
type Kind int

const (
	ParseError Kind = iota
	UnexpectedToken
	InvalidCondition
	StringSize
	Type
	Length
	Rank
	Condition
	Call
	Undefined
	Stack
	InvalidNativeCall
	InvalidType
)

var kindNames = [...]string{
	ParseError:        "parseerror",
	UnexpectedToken:   "unexpectedtoken",
	InvalidCondition:  "condition",
	StringSize:        "stringsize",
	Type:              "type",
	Length:            "length",
	Rank:              "rank",
	Condition:         "condition",
	Call:              "call",
	Undefined:         "undefined",
	Stack:             "stack",
	InvalidNativeCall: "invalidnativecall",
	InvalidType:       "invalidtype",
}

// String returns the lowercase diagnostic tag for the kind, e.g. "type".
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "error"
}

// Error is the interface satisfied by every error the parser and
// evaluator produce. It carries a Kind, for the REPL's one-character
// diagnostic, and an optional source Pos.
type Error interface {
	error
	Kind() Kind
	Position() token.Pos
}

type posError struct {
	pos  token.Pos
	kind Kind
	msg  string
}

func (e *posError) Error() string {
	if e.pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.kind, e.msg)
	}
	return e.msg
}

func (e *posError) Kind() Kind        { return e.kind }
func (e *posError) Position() token.Pos { return e.pos }

var _ Error = &posError{}

// Newf creates an Error of the given kind at position p.
func Newf(p token.Pos, kind Kind, format string, args ...interface{}) Error {
	return &posError{pos: p, kind: kind, msg: fmt.Sprintf(format, args...)}
}

// New creates an Error of the given kind with no formatting.
func New(kind Kind, msg string) Error {
	return &posError{pos: token.NoPos, kind: kind, msg: msg}
}

// Diagnostic renders err the way the REPL prints it to stdout: a single
// line consisting of a quote mark followed by the lowercase kind name.
// Non-Error inputs fall back to a generic "'error" line, matching the
// teacher's Promote-to-Error fallback in cue/errors.
func Diagnostic(err error) string {
	var e Error
	if As(err, &e) {
		return "'" + e.Kind().String()
	}
	return "'error"
}
