package relation

import "fmt"

// Kind is a fixed type discriminator for handles. Equality between
// handles compares kinds rather than runtime types, so entity wrappers
// and proxies of the same kind compare equal.
type Kind string

// Handle is an identity-bearing reference to an entity. A handle whose
// identity has not been assigned yet (a new, unsaved entity) is
// transient: it equals only itself by reference.
type Handle struct {
	kind Kind
	id   int64
}

// NewHandle creates a handle for a persistent entity with an assigned
// identity key.
func NewHandle(kind Kind, id int64) *Handle {
	return &Handle{kind: kind, id: id}
}

// NewTransientHandle creates a handle for an entity that has not been
// assigned an identity yet.
func NewTransientHandle(kind Kind) *Handle {
	return &Handle{kind: kind}
}

// Kind returns the handle's type discriminator.
func (h *Handle) Kind() Kind {
	return h.kind
}

// ID returns the identity key, or 0 if unassigned.
func (h *Handle) ID() int64 {
	return h.id
}

// Resolved reports whether an identity key has been assigned.
func (h *Handle) Resolved() bool {
	return h != nil && h.id != 0
}

// Bind assigns a persistence-generated identity to a transient handle.
// Binding is one-shot; rebinding an already resolved handle is an error.
// Set membership is unaffected because membership checks use Equal scans
// keyed on the fixed kind, never a hash of the identity.
func (h *Handle) Bind(id int64) error {
	if h.id != 0 {
		return fmt.Errorf("handle %s already bound", h)
	}
	if id == 0 {
		return fmt.Errorf("cannot bind zero identity to %s handle", h.kind)
	}
	h.id = id
	return nil
}

// Equal reports whether two handles reference the same entity. Both must
// carry an assigned identity of the same kind, or be the same in-memory
// instance. Two distinct transient handles are never equal.
func (h *Handle) Equal(o *Handle) bool {
	if h == o {
		return h != nil
	}
	if h == nil || o == nil {
		return false
	}
	return h.kind == o.kind && h.id != 0 && o.id != 0 && h.id == o.id
}

// String formats the handle as kind(id) or kind(transient).
func (h *Handle) String() string {
	if h == nil {
		return "<nil handle>"
	}
	if h.id == 0 {
		return fmt.Sprintf("%s(transient)", h.kind)
	}
	return fmt.Sprintf("%s(%d)", h.kind, h.id)
}
