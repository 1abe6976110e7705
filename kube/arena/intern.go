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

package arena

// internTable is a string<->uint16 table, the same role
// cuelang.org/go/internal/core/adt.Feature's string-to-index mapping
// plays for CUE struct labels, pared down to the two plain maps
// spec.md §3.2 asks for (names, symbols): no typed-label encoding is
// needed here since a name and a symbol never share a table.
type internTable struct {
	byString map[string]uint16
	byID     []string
}

func newInternTable() *internTable {
	return &internTable{byString: make(map[string]uint16, 32)}
}

// intern returns s's id, allocating a new one if s is unseen.
func (t *internTable) intern(s string) uint16 {
	if id, ok := t.byString[s]; ok {
		return id
	}
	id := uint16(len(t.byID))
	t.byString[s] = id
	t.byID = append(t.byID, s)
	return id
}

// lookup returns s's id without inserting it: the existing id, or the
// id it would get if interned next.
func (t *internTable) lookup(s string) uint16 {
	if id, ok := t.byString[s]; ok {
		return id
	}
	return uint16(len(t.byID))
}

// string reverse-looks-up id. O(1) here since byID is dense, but callers
// must treat this as the "acceptable, printer-only" operation spec.md
// §3.2 describes: it is not kept in sync with byString beyond append
// order.
func (t *internTable) string(id uint16) string {
	if int(id) < len(t.byID) {
		return t.byID[id]
	}
	return ""
}
