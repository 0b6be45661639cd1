package service

import (
	"context"
	"fmt"

	"relsync/internal/codec"
)

// ImportResult summarizes what an import created.
type ImportResult struct {
	Posts int `json:"posts"`
	Tags  int `json:"tags"`
}

// ExportSnapshot collects the full dataset into a portable snapshot.
// Tag names are used instead of IDs so the snapshot survives re-import
// into a store with different row IDs.
func (s *BlogService) ExportSnapshot(ctx context.Context) (*codec.Snapshot, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &codec.Snapshot{
		Version: 1,
		Posts:   make([]codec.SnapshotPost, 0, len(posts)),
		Tags:    make([]string, 0, len(tags)),
	}

	for _, p := range posts {
		postTags, err := s.store.TagsOf(ctx, p.ID())
		if err != nil {
			return nil, err
		}
		sp := codec.SnapshotPost{Title: p.Title}
		for _, t := range postTags {
			sp.Tags = append(sp.Tags, t.Name)
		}
		snapshot.Posts = append(snapshot.Posts, sp)
	}

	for _, t := range tags {
		snapshot.Tags = append(snapshot.Tags, t.Name)
	}

	return snapshot, nil
}

// ImportSnapshot creates the posts and tags from a snapshot. Tags are
// matched by name, so importing into a non-empty store reuses existing
// tags. Each post is its own unit of work.
func (s *BlogService) ImportSnapshot(ctx context.Context, snapshot *codec.Snapshot) (*ImportResult, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("nil snapshot")
	}

	result := &ImportResult{}

	// Standalone tags first, so posts can link to them by name.
	for _, name := range snapshot.Tags {
		existing, err := s.store.GetTagByName(ctx, name)
		if err != nil {
			return result, err
		}
		if existing != nil {
			continue
		}
		if _, err := s.getOrCreateTag(ctx, name); err != nil {
			return result, err
		}
		result.Tags++
	}

	for _, sp := range snapshot.Posts {
		if _, err := s.CreatePost(ctx, sp.Title, sp.Tags); err != nil {
			return result, fmt.Errorf("import post %q: %w", sp.Title, err)
		}
		result.Posts++
	}

	return result, nil
}
