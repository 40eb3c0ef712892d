// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package syntax implements the lexer, input-completion loop, syntax
// validator and parser that turn a raw shell input line into a Pipeline
// (spec.md §2, components C2-C5).
package syntax

import (
	"strings"

	"gosh.dev/gosh/token"
)

// QuoteClass is the quoting context a word segment was lexed under. It
// governs whether the expander substitutes variables in that segment
// (spec.md §3, "quote class").
type QuoteClass int

const (
	Bare QuoteClass = iota
	Single
	Double
)

// Token is one lexical item, as produced by Lex (spec.md §3, Token).
type Token struct {
	Kind     token.Kind
	Lexeme   string
	Quote    QuoteClass
	Adjacent bool
}

// SegKind distinguishes the three things a Word segment can hold.
type SegKind int

const (
	SegLiteral SegKind = iota
	SegParam
	SegExitStatus
)

// Segment is one piece of a Word, carrying its own quote class so the
// expander (expand.ExpandWord) knows whether to substitute it.
type Segment struct {
	Quote QuoteClass
	Kind  SegKind
	Text  string // literal text, for SegLiteral
	Name  string // variable name, for SegParam
}

// Word is a logical command argument built from one or more adjacent
// tokens (spec.md §3, Word).
type Word struct {
	Segments []Segment
}

// AnyQuoted reports whether any segment of the word was written inside
// single or double quotes. Used by Parse (§4.5 tie-break) to set a
// here-doc Redirection's ExpandBody, which decides whether a <<delim body
// is expanded.
func (w *Word) AnyQuoted() bool {
	for _, s := range w.Segments {
		if s.Quote != Bare {
			return true
		}
	}
	return false
}

// RawText reconstructs the word's literal source text, without
// re-introducing quote characters. It is used for here-doc delimiter
// comparison, which matches against quote-removed text, never expanded
// text (POSIX semantics carried over unchanged by spec.md §4.7).
func (w *Word) RawText() string {
	var b strings.Builder
	for _, s := range w.Segments {
		switch s.Kind {
		case SegLiteral:
			b.WriteString(s.Text)
		case SegParam:
			b.WriteByte('$')
			b.WriteString(s.Name)
		case SegExitStatus:
			b.WriteString("$?")
		}
	}
	return b.String()
}

// Redirection is a (direction, target) pair attached to a Command
// (spec.md §3, Redirection).
type Redirection struct {
	Op   token.Kind // RedirIn, RedirOut, RedirAppend or HereDoc
	Target *Word
	// ExpandBody is meaningful only when Op == token.HereDoc: true iff
	// the delimiter word appeared unquoted in the source.
	ExpandBody bool
}

// Command is a program name plus its arguments and redirections
// (spec.md §3, Command node). A Command never owns child commands.
type Command struct {
	Words  []*Word // Words[0] is the program name, the rest are arguments
	Redirs []*Redirection
}

// Name returns the command's program-name word.
func (c *Command) Name() *Word { return c.Words[0] }

// Args returns the command's argument words, excluding the program name.
func (c *Command) Args() []*Word { return c.Words[1:] }

// Pipeline is a non-empty ordered list of command stages whose
// stdout/stdin are wired end to end (spec.md §3, Pipeline). It is the
// sole AST value produced by Parse, since operators other than | are
// out of scope (spec.md §1).
type Pipeline struct {
	Stages []*Command
}
