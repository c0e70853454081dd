package types

import (
	"strings"
)

// NotSet is the string form of a selection without a chosen entry.
const NotSet = "<<NOT_SET>>"

// Selection is an enumeration over a fixed, case-insensitive list of names.
// Entries are numbered from 1; 0 means "nothing selected".
type Selection struct {
	entries []string
	set     int
}

// NewSelection builds a selection from a comma separated list of entries and
// optionally selects init. Duplicate entries (ignoring case) are skipped.
func NewSelection(entries string, init ...string) Selection {
	s := Selection{}
	for _, e := range strings.Split(entries, ",") {
		e = strings.TrimSpace(e)
		if e == "" || s.index(e) > 0 {
			continue
		}
		s.entries = append(s.entries, e)
	}
	if len(init) > 0 && init[0] != "" {
		s.Set(init[0])
	}
	return s
}

func (s Selection) index(name string) int {
	for i, e := range s.entries {
		if strings.EqualFold(e, name) {
			return i + 1
		}
	}
	return 0
}

// Set selects the entry called name. It returns false if there is no such
// entry and leaves the selection unchanged.
func (s *Selection) Set(name string) bool {
	idx := s.index(strings.TrimSpace(name))
	if idx == 0 {
		return false
	}
	s.set = idx
	return true
}

// SetIndex selects an entry by its 1-based index; 0 clears the selection.
func (s *Selection) SetIndex(idx int) bool {
	if idx < 0 || idx > len(s.entries) {
		return false
	}
	s.set = idx
	return true
}

// Index is the 1-based index of the selected entry, 0 if unset.
func (s Selection) Index() int { return s.set }

// IsSet reports whether an entry is selected.
func (s Selection) IsSet() bool { return s.set > 0 }

// Entries returns the entry names in index order.
func (s Selection) Entries() []string {
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// SameEntries reports whether both selections enumerate the same names.
func (s Selection) SameEntries(o Selection) bool {
	if len(s.entries) != len(o.entries) {
		return false
	}
	for i := range s.entries {
		if !strings.EqualFold(s.entries[i], o.entries[i]) {
			return false
		}
	}
	return true
}

func (s Selection) String() string {
	if s.set == 0 {
		return NotSet
	}
	return s.entries[s.set-1]
}

// Compare orders two selections by index. ok is false when either side is
// unset or the entry lists differ.
func (s Selection) Compare(o Selection) (cmp int, ok bool) {
	if !s.IsSet() || !o.IsSet() || !s.SameEntries(o) {
		return 0, false
	}
	switch {
	case s.set < o.set:
		return -1, true
	case s.set > o.set:
		return 1, true
	}
	return 0, true
}
