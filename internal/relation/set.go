package relation

// handleSet is an insertion-ordered set of handles. Membership uses
// Equal scans instead of a hash keyed on the identity, so a transient
// member that later gets an identity bound stays a member. Lookup is
// O(n); collections on one side of a relationship are small enough that
// correctness wins over bucket performance here.
type handleSet struct {
	members []*Handle
}

func (s *handleSet) contains(h *Handle) bool {
	for _, m := range s.members {
		if m.Equal(h) {
			return true
		}
	}
	return false
}

// add appends h unless an equal handle is already present. Reports
// whether the set changed.
func (s *handleSet) add(h *Handle) bool {
	if s.contains(h) {
		return false
	}
	s.members = append(s.members, h)
	return true
}

// remove deletes the handle equal to h, preserving order. Reports
// whether the set changed.
func (s *handleSet) remove(h *Handle) bool {
	for i, m := range s.members {
		if m.Equal(h) {
			s.members = append(s.members[:i], s.members[i+1:]...)
			return true
		}
	}
	return false
}

func (s *handleSet) len() int {
	return len(s.members)
}

func (s *handleSet) clear() {
	s.members = nil
}

// snapshot returns a copy of the members in insertion order.
func (s *handleSet) snapshot() []*Handle {
	out := make([]*Handle, len(s.members))
	copy(out, s.members)
	return out
}

// replace resets the set to the given members, dropping duplicates.
func (s *handleSet) replace(members []*Handle) {
	s.members = s.members[:0]
	for _, m := range members {
		s.add(m)
	}
}
