// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"bufio"
	"os"
	"strings"

	"github.com/google/renameio/v2"
)

// History owns the in-session and on-disk command history, loaded once
// at startup and rewritten atomically as entries are trimmed, per the
// original source's history_load.c/history_save.c split (spec.md §6,
// Supplemented features).
type History struct {
	path     string
	maxLines int // in-memory/session cap (spec.md §6, --history-max)
	maxFile  int // on-disk cap (spec.md §6, --history-file-max)

	entries []string
}

// NewHistory builds a History bound to path, with the given in-memory
// and on-disk size caps.
func NewHistory(path string, maxLines, maxFile int) *History {
	return &History{path: path, maxLines: maxLines, maxFile: maxFile}
}

// Load reads every line from the history file, if any. A missing file
// is not an error: a session's first run has no history yet.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return err
	}
	h.entries = trimTo(lines, h.maxLines)
	return sc.Err()
}

// Add appends one line to the in-memory history, trimming to maxLines.
func (h *History) Add(line string) {
	if line == "" {
		return
	}
	h.entries = trimTo(append(h.entries, line), h.maxLines)
}

// Entries returns every in-memory history line, oldest first.
func (h *History) Entries() []string {
	return h.entries
}

// Save rewrites the history file atomically with the in-memory
// entries, trimmed to maxFile, using renameio so a crash mid-write
// never leaves a truncated file (spec.md §6).
func (h *History) Save() error {
	if h.path == "" {
		return nil
	}
	lines := trimTo(h.entries, h.maxFile)
	return renameio.WriteFile(h.path, []byte(strings.Join(lines, "\n")+"\n"), 0o600)
}

func trimTo(lines []string, max int) []string {
	if max <= 0 || len(lines) <= max {
		return lines
	}
	return append([]string(nil), lines[len(lines)-max:]...)
}
