package domain

import (
	"fmt"

	"relsync/internal/relation"
)

// Entity kinds used as fixed type discriminators for handle equality.
const (
	KindPost relation.Kind = "post"
	KindTag  relation.Kind = "tag"
)

// Relation field names the persistence context resolves loads by.
const (
	FieldTags  = "tags"
	FieldPosts = "posts"
)

// Post is a blog post. It owns the post/tag relationship: only
// mutations of its tag collection become durable edge writes.
type Post struct {
	handle *relation.Handle
	Title  string
	tags   *relation.Collection
}

// NewPost creates a transient post. A new post has no edges, so its tag
// collection starts loaded and empty.
func NewPost(title string) *Post {
	h := relation.NewTransientHandle(KindPost)
	return &Post{
		handle: h,
		Title:  title,
		tags:   relation.NewLoadedCollection(h, FieldTags, relation.UnorderedSet, true, nil, nil),
	}
}

// RestorePost rehydrates a persistent post with a lazy tag collection.
func RestorePost(id int64, title string, loader relation.Loader) *Post {
	h := relation.NewHandle(KindPost, id)
	return &Post{
		handle: h,
		Title:  title,
		tags:   relation.NewCollection(h, FieldTags, relation.UnorderedSet, true, loader),
	}
}

// RestorePostWithTags rehydrates a persistent post whose tag collection
// was fetched eagerly.
func RestorePostWithTags(id int64, title string, loader relation.Loader, tags []*relation.Handle) *Post {
	h := relation.NewHandle(KindPost, id)
	return &Post{
		handle: h,
		Title:  title,
		tags:   relation.NewLoadedCollection(h, FieldTags, relation.UnorderedSet, true, loader, tags),
	}
}

// Handle returns the post's identity handle.
func (p *Post) Handle() *relation.Handle {
	return p.handle
}

// ID returns the identity key, or 0 for an unsaved post.
func (p *Post) ID() int64 {
	return p.handle.ID()
}

// Tags returns the owning relation collection.
func (p *Post) Tags() *relation.Collection {
	return p.tags
}

// AddTag links the tag to this post, mirroring onto the tag's post
// collection only if that side is already materialized.
func (p *Post) AddTag(t *Tag) error {
	if t == nil {
		return relation.ErrUnresolvedHandle
	}
	return relation.Link(p.tags, t.handle, t.posts)
}

// RemoveTag unlinks the tag from this post. Removing an absent tag is a
// no-op.
func (p *Post) RemoveTag(t *Tag) error {
	if t == nil {
		return relation.ErrUnresolvedHandle
	}
	return relation.Unlink(p.tags, t.handle, t.posts)
}

func (p *Post) String() string {
	return fmt.Sprintf("Post(id = %d, title = %s)", p.ID(), p.Title)
}
