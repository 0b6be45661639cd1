// Package repository defines the data access interface for relsync.
//
// The Store interface is the persistence context of the relationship
// synchronizer: it loads entities, resolves lazy relation collections
// (relation.Loader), and reconciles flushed collection mutations into
// junction-table writes (relation.Context). The actual implementation
// is in the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation persists posts, tags, and the post_tags
// junction table using SQLite with WAL mode. It handles:
//
// - CRUD operations and identity binding for posts and tags
// - Lazy and eager relation loading
// - Minimal insert/delete reconciliation for unordered-set collections
// - The permitted delete-all-and-reinsert path for ordered-list owners
// - Foreign key constraints and cascade deletes
// - Statement accounting for write-amplification assertions in tests
//
// # Schema Migration
//
// The sqlite store migrates the schema on startup.
package repository
