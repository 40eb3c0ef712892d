// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestStoreSetGetOrder(t *testing.T) {
	s := NewStore()
	qt.Assert(t, s.Set("B", "2"), qt.IsNil)
	qt.Assert(t, s.Set("A", "1"), qt.IsNil)
	qt.Assert(t, s.Set("B", "20"), qt.IsNil) // update keeps original position

	entries := s.Entries()
	qt.Assert(t, entries, qt.DeepEquals, []Entry{{"B", "20"}, {"A", "1"}})

	exported := s.Exported()
	qt.Assert(t, exported, qt.DeepEquals, []Entry{{"A", "1"}, {"B", "20"}})
}

func TestStoreSetInvalidIdentifier(t *testing.T) {
	s := NewStore()
	err := s.Set("1abc", "x")
	qt.Assert(t, err, qt.ErrorMatches, `not a valid identifier: "1abc"`)
}

func TestStoreUnset(t *testing.T) {
	s := NewStore()
	s.Set("A", "1")
	s.Set("B", "2")
	s.Unset("A")
	qt.Assert(t, s.Entries(), qt.DeepEquals, []Entry{{"B", "2"}})

	s.Unset("nope") // no-op, doesn't error
	qt.Assert(t, s.Entries(), qt.HasLen, 1)
}

func TestStoreClone(t *testing.T) {
	s := NewStore()
	s.Set("A", "1")
	clone := s.Clone()
	clone.Set("A", "2")
	clone.Set("B", "3")

	v, _ := s.Get("A")
	qt.Assert(t, v, qt.Equals, "1")
	_, ok := s.Get("B")
	qt.Assert(t, ok, qt.IsFalse)
}

func TestValidIdentifier(t *testing.T) {
	qt.Assert(t, ValidIdentifier("_foo9"), qt.IsTrue)
	qt.Assert(t, ValidIdentifier("9foo"), qt.IsFalse)
	qt.Assert(t, ValidIdentifier("foo bar"), qt.IsFalse)
}
