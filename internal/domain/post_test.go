package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relsync/internal/relation"
)

// stubLoader counts loads and always returns no edges.
type stubLoader struct {
	calls int
}

func (l *stubLoader) Load(ctx context.Context, owner *relation.Handle, field string) ([]*relation.Handle, error) {
	l.calls++
	return nil, nil
}

func TestPostAddTag(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors onto a materialized tag", func(t *testing.T) {
		post := NewPost("go generics")
		tag := NewTag("golang")

		require.NoError(t, post.AddTag(tag))

		ok, err := post.Tags().Contains(ctx, tag.Handle())
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = tag.Posts().Contains(ctx, post.Handle())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("leaves an unmaterialized tag collection alone", func(t *testing.T) {
		loader := &stubLoader{}
		post := NewPost("go generics")
		tag := RestoreTag(3, "golang", loader)

		require.NoError(t, post.AddTag(tag))

		assert.False(t, tag.Posts().IsMaterialized())
		assert.Zero(t, loader.calls, "adding a tag must not load its posts")

		ok, err := post.Tags().Contains(ctx, tag.Handle())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("nil tag fails", func(t *testing.T) {
		post := NewPost("p")
		assert.ErrorIs(t, post.AddTag(nil), relation.ErrUnresolvedHandle)
		assert.ErrorIs(t, post.RemoveTag(nil), relation.ErrUnresolvedHandle)
	})
}

func TestPostRemoveTag(t *testing.T) {
	ctx := context.Background()

	post := NewPost("p")
	tag := NewTag("t")
	require.NoError(t, post.AddTag(tag))
	require.NoError(t, post.RemoveTag(tag))

	ok, err := post.Tags().Contains(ctx, tag.Handle())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = tag.Posts().Contains(ctx, post.Handle())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTagMirrorHelpers(t *testing.T) {
	ctx := context.Background()

	t.Run("AddPost writes through the owning side", func(t *testing.T) {
		post := NewPost("p")
		tag := NewTag("t")

		require.NoError(t, tag.AddPost(post))

		ok, err := post.Tags().Contains(ctx, tag.Handle())
		require.NoError(t, err)
		assert.True(t, ok, "owning side must carry the edge even when linked from the tag")

		ok, err = tag.Posts().Contains(ctx, post.Handle())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("RemovePost is symmetric", func(t *testing.T) {
		post := NewPost("p")
		tag := NewTag("t")
		require.NoError(t, tag.AddPost(post))
		require.NoError(t, tag.RemovePost(post))

		ok, err := post.Tags().Contains(ctx, tag.Handle())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("nil post fails", func(t *testing.T) {
		tag := NewTag("t")
		assert.ErrorIs(t, tag.AddPost(nil), relation.ErrUnresolvedHandle)
		assert.ErrorIs(t, tag.RemovePost(nil), relation.ErrUnresolvedHandle)
	})
}

func TestEntityConstruction(t *testing.T) {
	t.Run("new entities are transient with loaded collections", func(t *testing.T) {
		post := NewPost("p")
		assert.Zero(t, post.ID())
		assert.True(t, post.Tags().IsMaterialized())
		assert.True(t, post.Tags().Owning())

		tag := NewTag("t")
		assert.Zero(t, tag.ID())
		assert.True(t, tag.Posts().IsMaterialized())
		assert.False(t, tag.Posts().Owning())
	})

	t.Run("restored entities are lazy", func(t *testing.T) {
		loader := &stubLoader{}
		post := RestorePost(1, "p", loader)
		assert.Equal(t, int64(1), post.ID())
		assert.False(t, post.Tags().IsMaterialized())

		tag := RestoreTag(2, "t", loader)
		assert.False(t, tag.Posts().IsMaterialized())
		assert.Equal(t, relation.OrderedList, tag.Posts().Backing())
		assert.Equal(t, relation.UnorderedSet, post.Tags().Backing())
	})

	t.Run("eager restore carries members", func(t *testing.T) {
		tags := []*relation.Handle{relation.NewHandle(KindTag, 1), relation.NewHandle(KindTag, 2)}
		post := RestorePostWithTags(1, "p", nil, tags)
		assert.True(t, post.Tags().IsMaterialized())

		n, err := post.Tags().Len(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}
