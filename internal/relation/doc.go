// Package relation implements a bidirectional many-to-many relationship
// synchronizer for identity-bearing entities whose collections may be
// lazily materialized.
//
// # Core Types
//
// Handle is an identity-bearing reference to an entity. Two handles are
// equal when both carry an assigned identity key of the same kind; a
// transient handle (no identity yet) is equal only to itself by reference.
//
// Collection represents one side of the edge set with an explicit
// materialization state (Unloaded or Loaded). Reads trigger loading;
// writes never do. Mutations against an unloaded collection are queued
// in a pending log and reconciled at load and flush time.
//
// Link and Unlink update both sides of an edge: the owning collection
// unconditionally, the non-owning collection only when it is already
// materialized. Neither performs durable I/O.
//
// # Unit of Work
//
// Session tracks collections for one in-memory entity graph and flushes
// accumulated owning-side mutations to a Context in a single explicit
// step. Discarding a session before flush has no durable effect. A failed
// flush leaves the pending logs intact so the flush can be retried.
//
// # Ownership
//
// Exactly one side of the relationship is owning; only mutations observed
// on the owning collection translate into durable edge writes. Ownership
// is fixed at collection construction and cannot change.
//
// # Concurrency
//
// A session and the collections it tracks belong to one logical thread of
// control. Concurrent mutation of the same entity graph is out of contract.
package relation
