// Package domain defines the example blog entities the relationship
// synchronizer is exercised with: Post and Tag, joined by a symmetric
// many-to-many edge set.
//
// Post is the owning side. Its tag collection uses unordered-set
// semantics so the durable layer can reconcile mutations as minimal
// inserts and deletes. Tag is the non-owning side; its post collection
// uses ordered-list semantics, which is safe there and avoids priming
// reads.
//
// The mirror helpers (Post.AddTag/RemoveTag, Tag.AddPost/RemovePost)
// all route through the synchronizer so both in-memory sides stay
// consistent without forcing a lazy collection to load.
package domain
