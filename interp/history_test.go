// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestHistoryLoadMissingFileIsNotError(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "missing"), 100, 100)
	qt.Assert(t, h.Load(), qt.IsNil)
	qt.Assert(t, h.Entries(), qt.HasLen, 0)
}

func TestHistoryAddTrimsToMax(t *testing.T) {
	h := NewHistory("", 2, 100)
	h.Add("one")
	h.Add("two")
	h.Add("three")
	qt.Assert(t, h.Entries(), qt.DeepEquals, []string{"two", "three"})
}

func TestHistorySaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	h := NewHistory(path, 100, 100)
	h.Add("first")
	h.Add("second")
	qt.Assert(t, h.Save(), qt.IsNil)

	h2 := NewHistory(path, 100, 100)
	qt.Assert(t, h2.Load(), qt.IsNil)
	qt.Assert(t, h2.Entries(), qt.DeepEquals, []string{"first", "second"})
}

func TestHistorySaveTrimsToFileMax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	h := NewHistory(path, 100, 2)
	h.Add("one")
	h.Add("two")
	h.Add("three")
	qt.Assert(t, h.Save(), qt.IsNil)

	data, err := os.ReadFile(path)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, string(data), qt.Equals, "two\nthree\n")
}
