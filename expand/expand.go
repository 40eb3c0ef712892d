// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"strconv"
	"strings"

	"gosh.dev/gosh/syntax"
)

// ExpandWord substitutes every SegParam and SegExitStatus segment of w,
// leaving SegLiteral segments (and anything written inside single
// quotes) untouched, then concatenates the result (spec.md §4.6).
func ExpandWord(w *syntax.Word, env *Store, lastStatus int) string {
	var b strings.Builder
	for _, seg := range w.Segments {
		switch seg.Kind {
		case syntax.SegLiteral:
			b.WriteString(seg.Text)
		case syntax.SegParam:
			if seg.Quote == syntax.Single {
				// Unreachable: the lexer never emits SegParam inside a
				// single-quoted span.
				b.WriteByte('$')
				b.WriteString(seg.Name)
				continue
			}
			if v, ok := env.Get(seg.Name); ok {
				b.WriteString(v)
			}
		case syntax.SegExitStatus:
			b.WriteString(strconv.Itoa(lastStatus))
		}
	}
	return b.String()
}

// ExpandLine substitutes $name and $? references in raw text, used by
// the here-doc engine to expand a body line that was read as a plain
// string rather than tokenized into a Word (spec.md §4.7).
func ExpandLine(s string, env *Store, lastStatus int) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c != '$' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(s) {
			b.WriteByte('$')
			i++
			continue
		}
		next := s[i+1]
		switch {
		case next == '?':
			b.WriteString(strconv.Itoa(lastStatus))
			i += 2
		case isNameStart(next):
			j := i + 1
			for j < len(s) && isNameCont(s[j]) {
				j++
			}
			name := s[i+1 : j]
			if v, ok := env.Get(name); ok {
				b.WriteString(v)
			}
			i = j
		default:
			b.WriteByte('$')
			i++
		}
	}
	return b.String()
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameCont(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9')
}
