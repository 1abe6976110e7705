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

// Package ast declares the single tagged-variant node type used to
// represent a parsed expression tree. Unlike cue/ast's interface-per-
// production design, every node here is the same fixed-size struct: the
// spec requires nodes be stored in a dense arena and referenced by
// small integer ids rather than owned by pointers, so there is no
// benefit to an interface hierarchy and a real cost (pointer chasing,
// per-kind heap allocation) to paying for one.
package ast

// NodeID addresses a Node within an arena. The zero value is not a
// valid id; arenas start allocating at 1 so a bare NodeID can double as
// "absent".
type NodeID uint32

// NameID is an interned identifier (lowercase name) id.
type NameID uint16

// SymbolID is an interned `symbol id.
type SymbolID uint16

// ChildVec is a handle to a contiguous run of NodeIDs stored in the
// arena's child-cell vector: {first cell index, length}.
type ChildVec struct {
	First uint32
	Len   uint32
}

// Kind tags which variant a Node holds.
type Kind uint8

const (
	KNil Kind = iota
	KBool
	KInt
	KFloat
	KSymbol
	KString
	KName
	KIoverb
	KVerb
	KAdverb
	KList
	KSequence
	KDict
	KLambda
	KNative
	KNameref
	KCondition
	KDebug
	KQuit
)

var kindNames = [...]string{
	KNil: "Nil", KBool: "Bool", KInt: "Int", KFloat: "Float",
	KSymbol: "Symbol", KString: "String", KName: "Name", KIoverb: "Ioverb",
	KVerb: "Verb", KAdverb: "Adverb", KList: "List", KSequence: "Sequence",
	KDict: "Dict", KLambda: "Lambda", KNative: "Native", KNameref: "Nameref",
	KCondition: "Condition", KDebug: "Debug", KQuit: "Quit",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}

// AdverbKind enumerates the six K adverbs the parser recognizes.
// Adverb nodes parse and print; evaluating one is rejected with a Call
// error (kube/errors has no separate not-implemented kind).
type AdverbKind uint8

const (
	AEach AdverbKind = iota
	AOverJoin
	AScanSplit
	AEachPrior
	AEachRight
	AEachLeft
)

// maxStringBytes is the fixed capacity of a String node's inline buffer.
const maxStringBytes = 64

// maxLambdaParams is the fixed capacity of a Lambda's parameter list.
const maxLambdaParams = 8

// NativeOp identifies one of the interpreter's built-in functions.
type NativeOp uint8

const (
	NativeType NativeOp = iota
	NativeParse
	NativeExec
	NativeDebug
)

// Node is the single fixed-size tagged variant described in spec.md §3.3.
// Only the fields relevant to Kind are meaningful; the rest are zero.
// Children (ChildVec-referenced ids, Left/Right/Verb ids) resolve
// through the owning arena.
type Node struct {
	Kind Kind

	Bool  bool
	Int   int64
	Float float64

	Name   NameID // Name.value, Nameref.name
	Symbol SymbolID // Symbol.value

	strBuf [maxStringBytes]byte
	strLen uint8

	Fd uint8 // Ioverb.fd

	VerbKind byte // Verb.kind: one ASCII byte

	AdverbKind           AdverbKind
	Left, Verb, Right    NodeID // Adverb fields

	Curry  bool     // List.curry
	Values ChildVec // List.values, Sequence.values, Condition.list

	Keys ChildVec // Dict.keys (parallel to Values for Dict)

	params    [maxLambdaParams]NameID
	paramsLen uint8
	Body      NodeID // Lambda.body

	Native NativeOp // Native.name is reused as NativeOp id via arena lookup

	Value NodeID // Nameref.value, Debug.value

	Args ChildVec // Verb.args
}

// SetString stores s into the node's fixed inline buffer. It reports
// false if s exceeds maxStringBytes, mirroring the StringSize error the
// parser raises for over-long literals.
func (n *Node) SetString(s string) bool {
	if len(s) > maxStringBytes {
		return false
	}
	n.strLen = uint8(copy(n.strBuf[:], s))
	return true
}

// String returns the String node's inline content.
func (n *Node) String() string {
	return string(n.strBuf[:n.strLen])
}

// SetParams stores up to maxLambdaParams parameter NameIDs. It reports
// false if there are more than that many.
func (n *Node) SetParams(ps []NameID) bool {
	if len(ps) > maxLambdaParams {
		return false
	}
	n.paramsLen = uint8(copy(n.params[:], ps))
	return true
}

// Params returns the Lambda node's parameter NameIDs.
func (n *Node) Params() []NameID {
	return n.params[:n.paramsLen]
}

// MaxStringBytes is the string-literal byte-length bound (spec.md §7: StringSize).
const MaxStringBytes = maxStringBytes

// MaxLambdaParams is the lambda-header parameter-count bound.
const MaxLambdaParams = maxLambdaParams
