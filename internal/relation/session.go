package relation

import "context"

// Mutation is the flush-time summary of one owning collection's pending
// changes, handed to the persistence context for reconciliation.
type Mutation struct {
	Owner   *Handle
	Field   string
	Backing Backing

	// Added and Removed are the deduplicated pending logs. For
	// UnorderedSet backing they reconcile to minimal inserts and
	// deletes.
	Added   []*Handle
	Removed []*Handle

	// Members is the full membership in order, populated only for
	// OrderedList backing, whose contract permits a full delete and
	// reinsert of every edge for the owner.
	Members []*Handle
}

// Context is the persistence boundary the synchronizer core depends on.
// It alone touches the durable store.
type Context interface {
	Loader

	// Reconcile applies one collection's accumulated mutations to the
	// durable store. Invoked once per dirty owning collection per flush.
	Reconcile(ctx context.Context, m Mutation) error
}

// Session is an explicit unit of work over one in-memory entity graph.
// Collections attached to a session have their owning-side mutations
// reconciled exactly once, at Flush. Sessions are not safe for
// concurrent use.
type Session struct {
	pc      Context
	tracked []*Collection
}

// NewSession creates a unit of work backed by the given persistence
// context.
func NewSession(pc Context) *Session {
	return &Session{pc: pc}
}

// Attach registers collections with the session. Collections without a
// loader inherit the session's persistence context. Attaching the same
// collection twice is a no-op.
func (s *Session) Attach(cols ...*Collection) {
	for _, c := range cols {
		if c == nil {
			continue
		}
		if c.loader == nil {
			c.loader = s.pc
		}
		if s.attached(c) {
			continue
		}
		s.tracked = append(s.tracked, c)
	}
}

func (s *Session) attached(c *Collection) bool {
	for _, t := range s.tracked {
		if t == c {
			return true
		}
	}
	return false
}

// Flush reconciles every dirty owning collection to the persistence
// context. Non-owning collections never produce durable writes. On
// failure the failed collection's pending log is left intact so Flush
// can be retried; collections reconciled before the failure are already
// clean.
func (s *Session) Flush(ctx context.Context) error {
	for _, c := range s.tracked {
		if !c.Owning() || !c.dirty() {
			continue
		}

		m := Mutation{
			Owner:   c.Owner(),
			Field:   c.Field(),
			Backing: c.Backing(),
			Added:   c.pendingAdd.snapshot(),
			Removed: c.pendingRemove.snapshot(),
		}

		// Ordered backing reconciles by full rewrite, which needs the
		// complete membership and therefore a load. This is the one
		// place a write path reads, and only for OrderedList owners.
		if c.Backing() == OrderedList {
			members, err := c.Members(ctx)
			if err != nil {
				return err
			}
			m.Members = members
		}

		if err := s.pc.Reconcile(ctx, m); err != nil {
			return &ReconciliationError{Owner: c.Owner(), Field: c.Field(), Err: err}
		}
		c.clearPending()
	}
	return nil
}

// Discard drops all pending mutations with no durable effect and
// detaches every collection.
func (s *Session) Discard() {
	for _, c := range s.tracked {
		c.clearPending()
	}
	s.tracked = nil
}
