package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleEqual(t *testing.T) {
	t.Run("resolved handles of same kind and id are equal", func(t *testing.T) {
		a := NewHandle("post", 1)
		b := NewHandle("post", 1)
		assert.True(t, a.Equal(b))
		assert.True(t, b.Equal(a))
	})

	t.Run("different ids are not equal", func(t *testing.T) {
		a := NewHandle("post", 1)
		b := NewHandle("post", 2)
		assert.False(t, a.Equal(b))
	})

	t.Run("different kinds are not equal even with same id", func(t *testing.T) {
		a := NewHandle("post", 1)
		b := NewHandle("tag", 1)
		assert.False(t, a.Equal(b))
	})

	t.Run("transient handle equals only itself", func(t *testing.T) {
		a := NewTransientHandle("post")
		b := NewTransientHandle("post")
		assert.True(t, a.Equal(a))
		assert.False(t, a.Equal(b))
		assert.False(t, b.Equal(a))
	})

	t.Run("transient never equals resolved", func(t *testing.T) {
		a := NewTransientHandle("post")
		b := NewHandle("post", 1)
		assert.False(t, a.Equal(b))
		assert.False(t, b.Equal(a))
	})

	t.Run("nil comparisons", func(t *testing.T) {
		a := NewHandle("post", 1)
		assert.False(t, a.Equal(nil))
		var nilHandle *Handle
		assert.False(t, nilHandle.Equal(a))
		assert.False(t, nilHandle.Equal(nil))
	})
}

func TestHandleBind(t *testing.T) {
	t.Run("binding resolves a transient handle", func(t *testing.T) {
		h := NewTransientHandle("post")
		require.False(t, h.Resolved())

		require.NoError(t, h.Bind(7))
		assert.True(t, h.Resolved())
		assert.Equal(t, int64(7), h.ID())
	})

	t.Run("rebinding fails", func(t *testing.T) {
		h := NewHandle("post", 1)
		assert.Error(t, h.Bind(2))
		assert.Equal(t, int64(1), h.ID())
	})

	t.Run("binding zero fails", func(t *testing.T) {
		h := NewTransientHandle("post")
		assert.Error(t, h.Bind(0))
		assert.False(t, h.Resolved())
	})

	t.Run("binding preserves set membership", func(t *testing.T) {
		// A transient member added to a set must remain a member after
		// the persistence layer assigns its identity.
		h := NewTransientHandle("tag")
		var s handleSet
		s.add(h)

		require.NoError(t, h.Bind(42))
		assert.True(t, s.contains(h))
		assert.True(t, s.contains(NewHandle("tag", 42)))
	})
}

func TestHandleString(t *testing.T) {
	assert.Equal(t, "post(3)", NewHandle("post", 3).String())
	assert.Equal(t, "tag(transient)", NewTransientHandle("tag").String())
}

func TestHandleSet(t *testing.T) {
	t.Run("add deduplicates by identity", func(t *testing.T) {
		var s handleSet
		assert.True(t, s.add(NewHandle("tag", 1)))
		assert.False(t, s.add(NewHandle("tag", 1)))
		assert.Equal(t, 1, s.len())
	})

	t.Run("remove absent is a no-op", func(t *testing.T) {
		var s handleSet
		s.add(NewHandle("tag", 1))
		assert.False(t, s.remove(NewHandle("tag", 2)))
		assert.Equal(t, 1, s.len())
	})

	t.Run("preserves insertion order", func(t *testing.T) {
		var s handleSet
		s.add(NewHandle("tag", 2))
		s.add(NewHandle("tag", 1))
		s.add(NewHandle("tag", 3))
		s.remove(NewHandle("tag", 1))

		got := s.snapshot()
		require.Len(t, got, 2)
		assert.Equal(t, int64(2), got[0].ID())
		assert.Equal(t, int64(3), got[1].ID())
	})

	t.Run("replace drops duplicates", func(t *testing.T) {
		var s handleSet
		s.replace([]*Handle{NewHandle("tag", 1), NewHandle("tag", 1), NewHandle("tag", 2)})
		assert.Equal(t, 2, s.len())
	})
}
