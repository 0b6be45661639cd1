package relation

import "context"

// State is the materialization state of a collection.
type State uint8

const (
	// Unloaded means the collection's durable contents have not been
	// read into memory yet.
	Unloaded State = iota
	// Loaded means the contents are in memory and reads are local.
	Loaded
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Backing selects the container semantics the durable layer must honor
// when reconciling a collection.
type Backing uint8

const (
	// UnorderedSet backing reconciles to minimal inserts and deletes.
	UnorderedSet Backing = iota
	// OrderedList backing carries member order as state, which forces
	// the durable layer to rewrite every edge for the owner on flush.
	// Cheap on the non-owning side, a known trap on the owning side.
	OrderedList
)

func (b Backing) String() string {
	switch b {
	case UnorderedSet:
		return "unordered_set"
	case OrderedList:
		return "ordered_list"
	default:
		return "unknown"
	}
}

// Loader reads the durable contents of one relation collection. Load is
// invoked exactly when a collection transitions Unloaded to Loaded and
// must be side-effect free on the durable store.
type Loader interface {
	Load(ctx context.Context, owner *Handle, field string) ([]*Handle, error)
}

// Collection is one side of a many-to-many edge set. Reads materialize
// the collection; writes never do. Add and Remove queue against the
// pending log regardless of state, so mutating an unloaded collection
// requires no priming read.
type Collection struct {
	owner   *Handle
	field   string
	backing Backing
	owning  bool
	loader  Loader

	state   State
	members handleSet

	// pending logs accumulate mutations until flush (owning side) and
	// are replayed on top of the loaded snapshot at materialization.
	pendingAdd    handleSet
	pendingRemove handleSet
}

// NewCollection creates an unloaded collection for a persistent entity.
func NewCollection(owner *Handle, field string, backing Backing, owning bool, loader Loader) *Collection {
	return &Collection{
		owner:   owner,
		field:   field,
		backing: backing,
		owning:  owning,
		loader:  loader,
	}
}

// NewLoadedCollection creates a collection whose contents are already
// known, e.g. an eagerly fetched relation or a brand new entity with no
// edges yet.
func NewLoadedCollection(owner *Handle, field string, backing Backing, owning bool, loader Loader, members []*Handle) *Collection {
	c := NewCollection(owner, field, backing, owning, loader)
	c.state = Loaded
	c.members.replace(members)
	return c
}

// Owner returns the handle of the entity this collection belongs to.
func (c *Collection) Owner() *Handle {
	return c.owner
}

// Field returns the relation field name used for loading.
func (c *Collection) Field() string {
	return c.field
}

// Backing returns the container semantics of the collection.
func (c *Collection) Backing() Backing {
	return c.backing
}

// Owning reports whether mutations on this collection translate into
// durable edge writes. Fixed at construction.
func (c *Collection) Owning() bool {
	return c.owning
}

// IsMaterialized reports whether the collection is loaded. It never
// triggers loading.
func (c *Collection) IsMaterialized() bool {
	return c.state == Loaded
}

// Contains reports membership, materializing the collection first if
// needed. This is the collection's only potential blocking point.
func (c *Collection) Contains(ctx context.Context, h *Handle) (bool, error) {
	if err := c.materialize(ctx); err != nil {
		return false, err
	}
	return c.members.contains(h), nil
}

// Members returns the current membership in insertion order,
// materializing the collection first if needed.
func (c *Collection) Members(ctx context.Context) ([]*Handle, error) {
	if err := c.materialize(ctx); err != nil {
		return nil, err
	}
	return c.members.snapshot(), nil
}

// Len returns the member count, materializing first if needed.
func (c *Collection) Len(ctx context.Context) (int, error) {
	if err := c.materialize(ctx); err != nil {
		return 0, err
	}
	return c.members.len(), nil
}

// Add queues h for membership. Never blocks and never loads: if the
// collection is unloaded the add is deferred to materialization and
// flush. Adding a present member is a no-op in the pending log, so
// repeated links stay a single durable insert.
func (c *Collection) Add(h *Handle) {
	c.pendingRemove.remove(h)
	if c.state == Loaded {
		if c.members.add(h) {
			c.pendingAdd.add(h)
		}
		return
	}
	// Durable membership is unknown; reconcile resolves the overlap.
	c.pendingAdd.add(h)
}

// Remove queues h for removal, with the same non-blocking guarantees as
// Add. Removing an absent member is a no-op, not an error.
func (c *Collection) Remove(h *Handle) {
	cancelled := c.pendingAdd.remove(h)
	if c.state == Loaded {
		if c.members.remove(h) && !cancelled {
			c.pendingRemove.add(h)
		}
		return
	}
	c.pendingRemove.add(h)
}

// materialize transitions Unloaded to Loaded, replaying the pending log
// on top of the loaded snapshot so deferred writes stay visible.
func (c *Collection) materialize(ctx context.Context) error {
	if c.state == Loaded {
		return nil
	}
	if c.loader == nil {
		return &MaterializationError{Owner: c.owner, Field: c.field, Err: errNoLoader}
	}
	loaded, err := c.loader.Load(ctx, c.owner, c.field)
	if err != nil {
		return &MaterializationError{Owner: c.owner, Field: c.field, Err: err}
	}
	c.members.replace(loaded)
	for _, h := range c.pendingAdd.snapshot() {
		if !c.members.add(h) {
			// The edge is already durable, so there is nothing pending
			// to insert. Pruning it keeps a later Remove from treating
			// the durable edge as a cancelled in-memory add.
			c.pendingAdd.remove(h)
		}
	}
	for _, h := range c.pendingRemove.snapshot() {
		if !c.members.remove(h) {
			// The edge never existed durably; nothing to delete.
			c.pendingRemove.remove(h)
		}
	}
	c.state = Loaded
	return nil
}

// dirty reports whether unflushed mutations exist.
func (c *Collection) dirty() bool {
	return c.pendingAdd.len() > 0 || c.pendingRemove.len() > 0
}

func (c *Collection) clearPending() {
	c.pendingAdd.clear()
	c.pendingRemove.clear()
}
