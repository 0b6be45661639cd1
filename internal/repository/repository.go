package repository

import (
	"context"
	"errors"

	"relsync/internal/domain"
	"relsync/internal/relation"
)

// ErrNotFound marks lookups of entities that do not exist. Callers map
// it with errors.Is rather than matching message text.
var ErrNotFound = errors.New("not found")

// ErrDuplicate marks writes rejected by a uniqueness constraint, such
// as creating a second tag with the same name.
var ErrDuplicate = errors.New("already exists")

// Store defines the persistence boundary for the blog domain. It embeds
// relation.Context: the store is the only component that translates
// collection mutations into durable edge writes.
type Store interface {
	relation.Context

	// Post operations
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	GetPostWithTags(ctx context.Context, id int64) (*domain.Post, error)
	ListPosts(ctx context.Context) ([]*domain.Post, error)
	DeletePost(ctx context.Context, id int64) error

	// Tag operations
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, id int64) (*domain.Tag, error)
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	DeleteTag(ctx context.Context, id int64) error

	// Relation views (entity rows, not just handles)
	TagsOf(ctx context.Context, postID int64) ([]*domain.Tag, error)
	PostsOf(ctx context.Context, tagID int64) ([]*domain.Post, error)

	// Close releases resources
	Close() error
}
