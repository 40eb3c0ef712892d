// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"errors"
	"strings"

	"gosh.dev/gosh/expand"
)

// errHeredocEOF is returned when the here-doc's delimiter is never
// reached before the prompter runs out of input (spec.md §4.7, "no
// closing delimiter").
var errHeredocEOF = errors.New("interp: unexpected EOF while looking for here-doc delimiter")

// readHeredoc collects lines until one equals delim exactly, expanding
// each line first unless the delimiter word was quoted (spec.md §4.7).
// Lines come from r.HeredocLine, never from the stage's own stdin, since
// a here-doc body always comes from the terminal/script, never from a
// preceding pipeline stage.
func (r *Runner) readHeredoc(delim string, expandBody bool, env *expand.Store, lastStatus int) (*strings.Reader, error) {
	var body strings.Builder
	for {
		line, ok, err := r.readHeredocLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errHeredocEOF
		}
		if line == delim {
			break
		}
		if expandBody {
			line = expand.ExpandLine(line, env, lastStatus)
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	return strings.NewReader(body.String()), nil
}

// readHeredocLine reads one raw line from r.HeredocLine. When no line
// source is wired up it returns errHeredocEOF; it does not fall back to
// r.Stdin.
func (r *Runner) readHeredocLine() (string, bool, error) {
	if r.HeredocLine == nil {
		return "", false, errHeredocEOF
	}
	return r.HeredocLine()
}
