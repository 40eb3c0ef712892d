// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import (
	"fmt"

	"gosh.dev/gosh/token"
)

// SyntaxError is returned by Validate and Parse when the token stream is
// structurally invalid (spec.md §4.4). The caller is responsible for
// mapping it to exit code 258 (spec.md §7).
type SyntaxError struct {
	ShellName string
	Lexeme    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error near unexpected token '%s'", e.ShellName, e.Lexeme)
}

// Validate rejects structurally invalid token sequences: a leading pipe,
// two adjacent pipes, a trailing pipe, or a redirection operator with no
// word immediately after it (spec.md §4.4).
func Validate(tokens []Token, shellName string) error {
	if len(tokens) == 0 {
		return nil
	}
	if tokens[0].Kind == token.Pipe {
		return &SyntaxError{shellName, tokens[0].Lexeme}
	}
	for i, t := range tokens {
		if t.Kind == token.Pipe {
			if i == len(tokens)-1 {
				// A trailing pipe should have been caught by the
				// input-completion loop; if it survives to here it
				// is a hard error (spec.md §4.4).
				return &SyntaxError{shellName, t.Lexeme}
			}
			if tokens[i+1].Kind == token.Pipe {
				return &SyntaxError{shellName, tokens[i+1].Lexeme}
			}
		}
		if t.Kind.IsRedirOp() {
			if i == len(tokens)-1 || !tokens[i+1].Kind.IsWordPart() {
				return &SyntaxError{shellName, t.Lexeme}
			}
		}
	}
	return nil
}

// Parse folds a validated token sequence into a Pipeline (spec.md §4.5).
// It returns (nil, nil) for an empty token sequence, matching the
// "empty line is a no-op" boundary behavior of spec.md §8.
func Parse(tokens []Token, shellName string) (*Pipeline, error) {
	if err := Validate(tokens, shellName); err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	var stages [][]Token
	start := 0
	for i, t := range tokens {
		if t.Kind == token.Pipe {
			stages = append(stages, tokens[start:i])
			start = i + 1
		}
	}
	stages = append(stages, tokens[start:])

	p := &Pipeline{}
	for _, stageToks := range stages {
		cmd, err := parseStage(stageToks, shellName)
		if err != nil {
			return nil, err
		}
		p.Stages = append(p.Stages, cmd)
	}
	return p, nil
}

func parseStage(tokens []Token, shellName string) (*Command, error) {
	cmd := &Command{}
	i := 0
	for i < len(tokens) {
		t := tokens[i]
		switch {
		case t.Kind.IsRedirOp():
			word, next := collectWord(tokens, i+1)
			redir := &Redirection{Op: t.Kind, Target: word}
			if t.Kind == token.HereDoc {
				redir.ExpandBody = !word.AnyQuoted()
			}
			cmd.Redirs = append(cmd.Redirs, redir)
			i = next
		case t.Kind.IsWordPart():
			word, next := collectWord(tokens, i)
			cmd.Words = append(cmd.Words, word)
			i = next
		default:
			// Unreachable given Validate, kept as a defensive check.
			return nil, &SyntaxError{shellName, t.Lexeme}
		}
	}
	if len(cmd.Words) == 0 {
		// A stage made only of redirections never resolves to an
		// executable target (spec.md §3, Pipeline invariant).
		return nil, &SyntaxError{shellName, "|"}
	}
	return cmd, nil
}

// collectWord glues tokens[i] and every following adjacency=true,
// word-part token into one Word (spec.md §4.5, step 2).
func collectWord(tokens []Token, i int) (*Word, int) {
	w := &Word{Segments: []Segment{toSegment(tokens[i])}}
	j := i + 1
	for j < len(tokens) && tokens[j].Adjacent && tokens[j].Kind.IsWordPart() {
		w.Segments = append(w.Segments, toSegment(tokens[j]))
		j++
	}
	return w, j
}

func toSegment(t Token) Segment {
	switch t.Kind {
	case token.Expansion:
		return Segment{Quote: t.Quote, Kind: SegParam, Name: t.Lexeme}
	case token.ExitStatus:
		return Segment{Quote: t.Quote, Kind: SegExitStatus}
	default: // Word, SingleQuoted, DoubleQuoted
		return Segment{Quote: t.Quote, Kind: SegLiteral, Text: t.Lexeme}
	}
}
