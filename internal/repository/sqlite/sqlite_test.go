package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relsync/internal/domain"
	"relsync/internal/relation"
	"relsync/internal/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "relsync_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// seed creates the fixture the original sample ships as create-data.sql:
// one post linked to two tags, plus a third unlinked tag.
func seed(t *testing.T, s *Store) (post *domain.Post, tags []*domain.Tag) {
	t.Helper()
	ctx := context.Background()

	post = domain.NewPost("Synchronizing bidirectional collections")
	require.NoError(t, s.CreatePost(ctx, post))

	for _, name := range []string{"jpa", "hibernate", "spring"} {
		tag := domain.NewTag(name)
		require.NoError(t, s.CreateTag(ctx, tag))
		tags = append(tags, tag)
	}

	// Link the first two tags directly through the context.
	err := s.Reconcile(ctx, relation.Mutation{
		Owner:   post.Handle(),
		Field:   domain.FieldTags,
		Backing: relation.UnorderedSet,
		Added:   []*relation.Handle{tags[0].Handle(), tags[1].Handle()},
	})
	require.NoError(t, err)
	s.ResetStats()
	return post, tags
}

func edgeCount(t *testing.T, s *Store, postID int64) int {
	t.Helper()
	handles, err := s.loadTagHandles(context.Background(), postID)
	require.NoError(t, err)
	return len(handles)
}

func TestPostCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("create binds identity", func(t *testing.T) {
		post := domain.NewPost("hello")
		require.NoError(t, s.CreatePost(ctx, post))
		assert.NotZero(t, post.ID())
	})

	t.Run("get returns lazy post", func(t *testing.T) {
		post := domain.NewPost("lazy")
		require.NoError(t, s.CreatePost(ctx, post))

		got, err := s.GetPost(ctx, post.ID())
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "lazy", got.Title)
		assert.False(t, got.Tags().IsMaterialized())
	})

	t.Run("get missing returns nil", func(t *testing.T) {
		got, err := s.GetPost(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = s.GetPostWithTags(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("list and delete", func(t *testing.T) {
		posts, err := s.ListPosts(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, posts)

		require.NoError(t, s.DeletePost(ctx, posts[0].ID()))
		got, err := s.GetPost(ctx, posts[0].ID())
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestTagCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag := domain.NewTag("golang")
	require.NoError(t, s.CreateTag(ctx, tag))
	require.NotZero(t, tag.ID())

	got, err := s.GetTag(ctx, tag.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "golang", got.Name)
	assert.False(t, got.Posts().IsMaterialized())

	byName, err := s.GetTagByName(ctx, "golang")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, tag.ID(), byName.ID())

	dup := domain.NewTag("golang")
	err = s.CreateTag(ctx, dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	missing, err := s.GetTagByName(ctx, "rust")
	require.NoError(t, err)
	assert.Nil(t, missing)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	require.NoError(t, s.DeleteTag(ctx, tag.ID()))
	gone, err := s.GetTag(ctx, tag.ID())
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post, tags := seed(t, s)

	t.Run("post side", func(t *testing.T) {
		handles, err := s.Load(ctx, post.Handle(), domain.FieldTags)
		require.NoError(t, err)
		assert.Len(t, handles, 2)
	})

	t.Run("tag side", func(t *testing.T) {
		handles, err := s.Load(ctx, tags[0].Handle(), domain.FieldPosts)
		require.NoError(t, err)
		require.Len(t, handles, 1)
		assert.True(t, handles[0].Equal(post.Handle()))
	})

	t.Run("unlinked tag has no posts", func(t *testing.T) {
		handles, err := s.Load(ctx, tags[2].Handle(), domain.FieldPosts)
		require.NoError(t, err)
		assert.Empty(t, handles)
	})

	t.Run("unknown relation fails", func(t *testing.T) {
		_, err := s.Load(ctx, post.Handle(), "comments")
		assert.Error(t, err)
	})

	t.Run("transient owner fails", func(t *testing.T) {
		_, err := s.Load(ctx, relation.NewTransientHandle(domain.KindPost), domain.FieldTags)
		assert.Error(t, err)
	})
}

func TestReconcileMinimalWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post, tags := seed(t, s)

	t.Run("one new edge costs one insert and zero deletes", func(t *testing.T) {
		s.ResetStats()
		err := s.Reconcile(ctx, relation.Mutation{
			Owner:   post.Handle(),
			Field:   domain.FieldTags,
			Backing: relation.UnorderedSet,
			Added:   []*relation.Handle{tags[2].Handle()},
		})
		require.NoError(t, err)

		stats := s.Stats()
		assert.Equal(t, 1, stats.Inserts)
		assert.Zero(t, stats.Deletes)
		assert.Equal(t, 3, edgeCount(t, s, post.ID()))
	})

	t.Run("removal costs one targeted delete", func(t *testing.T) {
		s.ResetStats()
		err := s.Reconcile(ctx, relation.Mutation{
			Owner:   post.Handle(),
			Field:   domain.FieldTags,
			Backing: relation.UnorderedSet,
			Removed: []*relation.Handle{tags[2].Handle()},
		})
		require.NoError(t, err)

		stats := s.Stats()
		assert.Zero(t, stats.Inserts)
		assert.Equal(t, 1, stats.Deletes)
		assert.Equal(t, 2, edgeCount(t, s, post.ID()))
	})

	t.Run("re-adding an existing edge keeps the edge set", func(t *testing.T) {
		err := s.Reconcile(ctx, relation.Mutation{
			Owner:   post.Handle(),
			Field:   domain.FieldTags,
			Backing: relation.UnorderedSet,
			Added:   []*relation.Handle{tags[0].Handle()},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, edgeCount(t, s, post.ID()))
	})

	t.Run("transient member fails reconciliation", func(t *testing.T) {
		err := s.Reconcile(ctx, relation.Mutation{
			Owner:   post.Handle(),
			Field:   domain.FieldTags,
			Backing: relation.UnorderedSet,
			Added:   []*relation.Handle{relation.NewTransientHandle(domain.KindTag)},
		})
		assert.Error(t, err)
	})

	t.Run("non-owning relation fails reconciliation", func(t *testing.T) {
		err := s.Reconcile(ctx, relation.Mutation{
			Owner:   tags[0].Handle(),
			Field:   domain.FieldPosts,
			Backing: relation.OrderedList,
		})
		assert.Error(t, err)
	})
}

func TestReconcileOrderedListRewrite(t *testing.T) {
	// Ordered backing on the owning side is the documented write
	// amplification trap: every flush rewrites every edge for the
	// owner. The behavior works, and this test pins its cost.
	s := newTestStore(t)
	ctx := context.Background()
	post, tags := seed(t, s)

	s.ResetStats()
	err := s.Reconcile(ctx, relation.Mutation{
		Owner:   post.Handle(),
		Field:   domain.FieldTags,
		Backing: relation.OrderedList,
		Added:   []*relation.Handle{tags[2].Handle()},
		Members: []*relation.Handle{tags[0].Handle(), tags[1].Handle(), tags[2].Handle()},
	})
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 1, stats.Deletes, "ordered rewrite clears all edges for the owner")
	assert.Equal(t, 3, stats.Inserts, "ordered rewrite reinserts every member")
	assert.Equal(t, 3, edgeCount(t, s, post.ID()))
}

func TestSymmetryAfterFlush(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post, tags := seed(t, s)

	// Link the third tag while its post collection is unmaterialized.
	sess := relation.NewSession(s)
	fetched, err := s.GetPostWithTags(ctx, post.ID())
	require.NoError(t, err)
	tag, err := s.GetTag(ctx, tags[2].ID())
	require.NoError(t, err)
	sess.Attach(fetched.Tags(), tag.Posts())

	require.NoError(t, fetched.AddTag(tag))
	require.NoError(t, sess.Flush(ctx))

	// Full reload of both entities shows the edge on both sides.
	reloadedPost, err := s.GetPostWithTags(ctx, post.ID())
	require.NoError(t, err)
	ok, err := reloadedPost.Tags().Contains(ctx, tag.Handle())
	require.NoError(t, err)
	assert.True(t, ok)

	reloadedTag, err := s.GetTag(ctx, tag.ID())
	require.NoError(t, err)
	ok, err = reloadedTag.Posts().Contains(ctx, post.Handle())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLinkIdempotence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post, tags := seed(t, s)

	for i := 0; i < 2; i++ {
		sess := relation.NewSession(s)
		fetched, err := s.GetPostWithTags(ctx, post.ID())
		require.NoError(t, err)
		tag, err := s.GetTag(ctx, tags[2].ID())
		require.NoError(t, err)
		sess.Attach(fetched.Tags(), tag.Posts())

		require.NoError(t, fetched.AddTag(tag))
		require.NoError(t, fetched.AddTag(tag))
		require.NoError(t, sess.Flush(ctx))
	}

	assert.Equal(t, 3, edgeCount(t, s, post.ID()), "repeated links leave the same durable edge set")
}

func TestUnlinkAbsentIsNoOp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post, tags := seed(t, s)

	sess := relation.NewSession(s)
	fetched, err := s.GetPostWithTags(ctx, post.ID())
	require.NoError(t, err)
	unlinked, err := s.GetTag(ctx, tags[2].ID())
	require.NoError(t, err)
	sess.Attach(fetched.Tags(), unlinked.Posts())

	require.NoError(t, fetched.RemoveTag(unlinked))
	require.NoError(t, sess.Flush(ctx))

	assert.Equal(t, 2, edgeCount(t, s, post.ID()), "durable edge set unchanged")
}

// Re-link an already persisted edge on a lazy post, read the collection,
// then unlink: the reload must show the tag gone.
func TestUnlinkDurableEdgeAfterRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post, tags := seed(t, s)

	sess := relation.NewSession(s)
	fetched, err := s.GetPost(ctx, post.ID())
	require.NoError(t, err)
	tag, err := s.GetTag(ctx, tags[0].ID())
	require.NoError(t, err)
	sess.Attach(fetched.Tags(), tag.Posts())

	require.NoError(t, fetched.AddTag(tag))
	_, err = fetched.Tags().Members(ctx)
	require.NoError(t, err)

	require.NoError(t, fetched.RemoveTag(tag))
	require.NoError(t, sess.Flush(ctx))

	assert.Equal(t, 1, s.Stats().Deletes, "the unlink must execute a delete")

	reloaded, err := s.GetPostWithTags(ctx, post.ID())
	require.NoError(t, err)
	ok, err := reloaded.Tags().Contains(ctx, tag.Handle())
	require.NoError(t, err)
	assert.False(t, ok, "reload must show the unlinked tag absent")
}

// Unlink an existing tag from a post with a materialized collection,
// then verify both sides after a full reload.
func TestUnlinkMaterialized(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post, tags := seed(t, s)

	sess := relation.NewSession(s)
	fetched, err := s.GetPostWithTags(ctx, post.ID())
	require.NoError(t, err)
	tag, err := s.GetTag(ctx, tags[0].ID())
	require.NoError(t, err)
	sess.Attach(fetched.Tags(), tag.Posts())

	require.NoError(t, fetched.RemoveTag(tag))
	require.NoError(t, sess.Flush(ctx))

	reloaded, err := s.GetPostWithTags(ctx, post.ID())
	require.NoError(t, err)
	members, err := reloaded.Tags().Members(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.True(t, members[0].Equal(tags[1].Handle()))

	reloadedTag, err := s.GetTag(ctx, tag.ID())
	require.NoError(t, err)
	ok, err := reloadedTag.Posts().Contains(ctx, post.Handle())
	require.NoError(t, err)
	assert.False(t, ok)
}

// Link a separately fetched tag whose post collection is unloaded; the
// link must not trigger a load on the tag side.
func TestLinkUnloadedInverse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post, tags := seed(t, s)

	sess := relation.NewSession(s)
	fetched, err := s.GetPostWithTags(ctx, post.ID())
	require.NoError(t, err)
	tag, err := s.GetTag(ctx, tags[2].ID())
	require.NoError(t, err)
	sess.Attach(fetched.Tags(), tag.Posts())

	s.ResetStats()
	require.NoError(t, fetched.AddTag(tag))
	assert.Zero(t, s.Stats().Selects, "link must not load the tag's posts")
	assert.False(t, tag.Posts().IsMaterialized())

	require.NoError(t, sess.Flush(ctx))

	reloaded, err := s.GetPostWithTags(ctx, post.ID())
	require.NoError(t, err)
	ok, err := reloaded.Tags().Contains(ctx, tag.Handle())
	require.NoError(t, err)
	assert.True(t, ok)

	reloadedTag, err := s.GetTag(ctx, tag.ID())
	require.NoError(t, err)
	ok, err = reloadedTag.Posts().Contains(ctx, post.Handle())
	require.NoError(t, err)
	assert.True(t, ok)
}

// One unit of work tagging a post costs at most two selects (one per
// entity fetch), exactly one insert, and zero deletes.
func TestTagPostStatementCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post, tags := seed(t, s)

	s.ResetStats()
	sess := relation.NewSession(s)
	fetched, err := s.GetPostWithTags(ctx, post.ID())
	require.NoError(t, err)
	tag, err := s.GetTag(ctx, tags[2].ID())
	require.NoError(t, err)
	sess.Attach(fetched.Tags(), tag.Posts())

	require.NoError(t, fetched.AddTag(tag))
	require.NoError(t, sess.Flush(ctx))

	stats := s.Stats()
	assert.LessOrEqual(t, stats.Selects, 2, "there should be at most two selects")
	assert.Equal(t, 1, stats.Inserts, "there should be one insert")
	assert.Zero(t, stats.Deletes, "adding a tag must not execute deletes")
}

func TestCascadeDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post, tags := seed(t, s)

	t.Run("deleting a tag removes its edges", func(t *testing.T) {
		require.NoError(t, s.DeleteTag(ctx, tags[0].ID()))
		assert.Equal(t, 1, edgeCount(t, s, post.ID()))
	})

	t.Run("deleting the post removes the rest", func(t *testing.T) {
		require.NoError(t, s.DeletePost(ctx, post.ID()))
		handles, err := s.loadPostHandles(ctx, tags[1].ID())
		require.NoError(t, err)
		assert.Empty(t, handles)
	})
}

func TestRelationViews(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post, tags := seed(t, s)

	got, err := s.TagsOf(ctx, post.ID())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, tags[0].Name, got[0].Name)
	assert.Equal(t, tags[1].Name, got[1].Name)

	posts, err := s.PostsOf(ctx, tags[0].ID())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.Title, posts[0].Title)
}
