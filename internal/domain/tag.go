package domain

import (
	"fmt"

	"relsync/internal/relation"
)

// Tag labels posts. It is the non-owning side of the relationship: its
// post collection is a mirror, and mutating it alone never touches
// durable storage. Ordered-list backing is safe here and spares the
// durable layer a priming read.
type Tag struct {
	handle *relation.Handle
	Name   string
	posts  *relation.Collection
}

// NewTag creates a transient tag with a loaded, empty post collection.
func NewTag(name string) *Tag {
	h := relation.NewTransientHandle(KindTag)
	return &Tag{
		handle: h,
		Name:   name,
		posts:  relation.NewLoadedCollection(h, FieldPosts, relation.OrderedList, false, nil, nil),
	}
}

// RestoreTag rehydrates a persistent tag with a lazy post collection.
func RestoreTag(id int64, name string, loader relation.Loader) *Tag {
	h := relation.NewHandle(KindTag, id)
	return &Tag{
		handle: h,
		Name:   name,
		posts:  relation.NewCollection(h, FieldPosts, relation.OrderedList, false, loader),
	}
}

// Handle returns the tag's identity handle.
func (t *Tag) Handle() *relation.Handle {
	return t.handle
}

// ID returns the identity key, or 0 for an unsaved tag.
func (t *Tag) ID() int64 {
	return t.handle.ID()
}

// Posts returns the non-owning relation collection.
func (t *Tag) Posts() *relation.Collection {
	return t.posts
}

// AddPost links this tag to the post. The write still goes through the
// owning side (the post's tag collection) so it becomes durable; the
// tag's own collection is only mirrored when materialized.
func (t *Tag) AddPost(p *Post) error {
	if p == nil {
		return relation.ErrUnresolvedHandle
	}
	return relation.Link(p.tags, t.handle, t.posts)
}

// RemovePost unlinks this tag from the post, symmetric to AddPost.
func (t *Tag) RemovePost(p *Post) error {
	if p == nil {
		return relation.ErrUnresolvedHandle
	}
	return relation.Unlink(p.tags, t.handle, t.posts)
}

func (t *Tag) String() string {
	return fmt.Sprintf("Tag(id = %d, name = %s)", t.ID(), t.Name)
}
