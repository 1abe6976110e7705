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

// Package scanner implements a scanner for one line of interpreter
// input. Unlike cue/scanner's hand-written rune-at-a-time reader, the
// surface syntax here (spec.md §4.2) is irregular enough across adverbs,
// dict-vs-index brackets, and hex/bool/decimal numbers that the spec
// mandates a fixed, ordered table of regular expressions matched at the
// head of the buffer; that table is this package's table. The
// Scanner type, its Init/error-counting contract, and the
// errors.Handler callback convention are carried over from cue/scanner.
package scanner

import (
	"regexp"

	"bramble.dev/kube/kube/errors"
	"bramble.dev/kube/kube/token"
)

// rule pairs a token kind with the anchored regex that recognizes it.
// Order matters only as a tie-break: classify takes the longest match
// across the table and, among equally long matches, the earlier rule
// (e.g. Bool before Number).
type rule struct {
	kind token.Token
	re   *regexp.Regexp
}

// table lists the rules in the literal order spec.md §4.2 gives them.
// Read alone, that order would make ASSIGN unreachable (VERB's pattern
// is a strict prefix of ASSIGN's and sits earlier in the list), so
// classify does not do simple first-match-wins: it picks the longest
// match across the whole table (maximal munch), breaking ties by table
// order. That resolves ASSIGN vs VERB, DICTKEY vs OPENB, and VIEW vs
// COLON the way the grammar intends while keeping the table itself a
// literal transcription of the spec. One overlap survives maximal munch
// with a table-order tie-break: ADVERB's `['\/]+:?` and QUIT's `\\\\`
// both match a leading "\\" with length 2, and ADVERB sits earlier in
// the table. classify special-cases QUIT ahead of the table scan so the
// two-backslash quit token never loses to ADVERB.
var table = []rule{
	{token.BOOL, regexp.MustCompile(`^[01]+b`)},
	{token.HEXLIT, regexp.MustCompile(`^0x[0-9a-zA-Z]+`)},
	{token.NUMBER, regexp.MustCompile(`^-?(0w|0N|\d+\.\d*|\d*\.?\d+)`)},
	{token.NAME, regexp.MustCompile("^[a-z][a-z0-9]*")},
	{token.SYMBOL, regexp.MustCompile("^`([A-Za-z0-9.]*)?")},
	{token.STRING, regexp.MustCompile(`^"(\\.|[^\\"])*"`)},
	{token.VERB, regexp.MustCompile(`^[+\-*%!&|<>=~,^#_$?@.]`)},
	{token.ASSIGN, regexp.MustCompile(`^[+\-*%!&|<>=~,^#_$?@.]:`)},
	{token.IOVERB, regexp.MustCompile(`^\d:`)},
	{token.ADVERB, regexp.MustCompile(`^['\\/]+:?`)},
	{token.SEMI, regexp.MustCompile(`^;`)},
	{token.COLON, regexp.MustCompile(`^:`)},
	{token.VIEW, regexp.MustCompile(`^::`)},
	{token.COND, regexp.MustCompile(`^\$\[`)},
	{token.DICTKEY, regexp.MustCompile(`^\[[a-z]+:`)},
	{token.OPENB, regexp.MustCompile(`^\[`)},
	{token.OPENP, regexp.MustCompile(`^\(`)},
	{token.OPENC, regexp.MustCompile(`^\{`)},
	{token.CLOSEB, regexp.MustCompile(`^\]`)},
	{token.CLOSEP, regexp.MustCompile(`^\)`)},
	{token.CLOSEC, regexp.MustCompile(`^\}`)},
	{token.QUIT, regexp.MustCompile(`^\\\\`)},
}

var wsRE = regexp.MustCompile(`^[ \t]+`)

// Scanner holds the mutable input buffer and reports errors through the
// errors.Handler callback, mirroring cue/scanner.Scanner's Init/err/
// ErrorCount contract.
type Scanner struct {
	src        []byte
	offset     int // byte offset of the start of src within the original line
	err        errors.Handler
	ErrorCount int
}

// Init prepares s to tokenize src, which must already have been passed
// through Normalize.
func (s *Scanner) Init(src []byte, err errors.Handler) {
	s.src = src
	s.offset = 0
	s.err = err
	s.ErrorCount = 0
}

func (s *Scanner) error(msg string) {
	if s.err != nil {
		s.err(token.Position{Offset: s.offset, Column: s.offset + 1}, msg)
	}
	s.ErrorCount++
}

func (s *Scanner) skipSpace() {
	if m := wsRE.FindIndex(s.src); m != nil {
		s.advance(m[1])
	}
}

func (s *Scanner) advance(n int) {
	s.src = s.src[n:]
	s.offset += n
}

// Done reports whether the buffer is exhausted (ignoring trailing
// whitespace).
func (s *Scanner) Done() bool {
	s.skipSpace()
	return len(s.src) == 0
}

// quitIndex is table's index for token.QUIT, used by classify's
// ahead-of-the-table special case.
var quitIndex = func() int {
	for i, r := range table {
		if r.kind == token.QUIT {
			return i
		}
	}
	panic("scanner: QUIT missing from table")
}()

// classify returns the table entry with the longest match at the head
// of the buffer (after skipping leading space), ties broken by table
// order; or -1 with a nil match if nothing in the table matches. QUIT
// is checked first: its "\\\\" pattern ties in length with ADVERB's
// "\\"-matching "['\/]+:?" on a bare two-backslash input, and table
// order would otherwise let ADVERB (the earlier rule) win that tie.
func (s *Scanner) classify() (int, []int) {
	s.skipSpace()
	if m := table[quitIndex].re.FindIndex(s.src); m != nil {
		return quitIndex, m
	}
	best := -1
	var bestMatch []int
	for i, r := range table {
		m := r.re.FindIndex(s.src)
		if m == nil {
			continue
		}
		if bestMatch == nil || m[1] > bestMatch[1] {
			best, bestMatch = i, m
		}
	}
	return best, bestMatch
}

// At reports whether the next lexeme is of kind without consuming it.
func (s *Scanner) At(kind token.Token) bool {
	i, _ := s.classify()
	return i >= 0 && table[i].kind == kind
}

// Expect matches kind at the head of the buffer, advances past the
// match, and returns the raw matched text. It reports an error and
// returns "" if the head does not match.
func (s *Scanner) Expect(kind token.Token) string {
	i, m := s.classify()
	if i < 0 || table[i].kind != kind {
		s.error("expected " + kind.String())
		return ""
	}
	text := string(s.src[m[0]:m[1]])
	s.advance(m[1])
	return text
}

// Matches tries to consume kind at the head of the buffer, returning the
// matched text and true on success, or "", false if it doesn't match
// (no error is raised in that case).
func (s *Scanner) Matches(kind token.Token) (string, bool) {
	i, m := s.classify()
	if i < 0 || table[i].kind != kind {
		return "", false
	}
	text := string(s.src[m[0]:m[1]])
	s.advance(m[1])
	return text, true
}

// Peek returns the kind of the next lexeme and its raw text without
// consuming it, or (ILLEGAL, "") at end of input.
func (s *Scanner) Peek() (token.Token, string) {
	i, m := s.classify()
	if i < 0 {
		return token.ILLEGAL, ""
	}
	return table[i].kind, string(s.src[m[0]:m[1]])
}

// AtNoun reports whether the next lexeme can start a noun production:
// Number, Name, Symbol, String, Cond, OpenP, or OpenC (spec.md §4.2).
func (s *Scanner) AtNoun() bool {
	if s.Done() {
		return false
	}
	switch k, _ := s.Peek(); k {
	case token.NUMBER, token.NAME, token.SYMBOL, token.STRING,
		token.COND, token.OPENP, token.OPENC:
		return true
	default:
		return false
	}
}

// Pos returns the current byte offset as a token.Pos.
func (s *Scanner) Pos() token.Pos {
	return token.Pos(s.offset)
}
