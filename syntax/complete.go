// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import "errors"

// ErrInterrupted is returned by ReadStatement when the user signals
// end-of-input (or cancels) while a continuation is still pending
// (spec.md §4.3, step 4).
var ErrInterrupted = errors.New("syntax: input abandoned before completion")

// Prompter reads one more line of input, displaying prompt. ok is false
// when the user signals end-of-input; err is reserved for I/O failures.
type Prompter func(prompt string) (line string, ok bool, err error)

// Statement is one fully-lexed, structurally complete input line, which
// may have been assembled from several lines of user input by the
// completion loop.
type Statement struct {
	Raw    string
	Tokens []Token
}

// ReadStatement implements the input-completion loop (spec.md §4.3): it
// re-prompts the user whenever the just-lexed buffer ends with an
// unclosed quote or a trailing pipe, re-lexing the whole buffer from
// scratch each time rather than resuming lexer state, exactly as the
// source does (spec.md §9, design notes).
//
// firstLine is the line already read at the primary prompt; read is
// used only for continuation lines.
func ReadStatement(shellName, firstLine string, read Prompter) (*Statement, error) {
	buf := firstLine
	for {
		res := Lex(buf)
		if res.QuoteDepth == 0 && !res.EndsWithPipe {
			return &Statement{Raw: buf, Tokens: res.Tokens}, nil
		}

		prompt := "PIPE> "
		if res.QuoteDepth > 0 {
			switch res.QuoteChar {
			case '\'':
				prompt = "SQUOTE> "
			default:
				prompt = "DQUOTE> "
			}
		}

		more, ok, err := read(prompt)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInterrupted
		}
		if res.QuoteDepth > 0 {
			buf = buf + "\n" + more
		} else {
			buf = buf + " " + more
		}
	}
}
