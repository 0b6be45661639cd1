package service

import (
	"context"
	"fmt"
	"strings"

	"relsync/internal/domain"
	"relsync/internal/relation"
	"relsync/internal/repository"
)

// TagRef is a tag reference inside a post view.
type TagRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PostRef is a post reference inside a tag view.
type PostRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// PostView is the read model for one post and its tags.
type PostView struct {
	ID    int64    `json:"id"`
	Title string   `json:"title"`
	Tags  []TagRef `json:"tags"`
}

// TagView is the read model for one tag and its posts.
type TagView struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name"`
	Posts []PostRef `json:"posts"`
}

// BlogService provides business logic for posts, tags, and the edges
// between them.
type BlogService struct {
	store    repository.Store
	eventBus *EventBus
}

// NewBlogService creates a new blog service
func NewBlogService(store repository.Store, eventBus *EventBus) *BlogService {
	return &BlogService{
		store:    store,
		eventBus: eventBus,
	}
}

// CreatePost creates a post and links it to the named tags, creating
// tags that do not exist yet. The whole operation is one unit of work.
func (s *BlogService) CreatePost(ctx context.Context, title string, tagNames []string) (*PostView, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("post title required")
	}

	post := domain.NewPost(title)
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	sess := relation.NewSession(s.store)
	sess.Attach(post.Tags())

	for _, name := range tagNames {
		tag, err := s.getOrCreateTag(ctx, name)
		if err != nil {
			return nil, err
		}
		if err := post.AddTag(tag); err != nil {
			return nil, err
		}
	}
	if err := sess.Flush(ctx); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventPostCreated,
		Payload: map[string]any{"post_id": post.ID(), "title": post.Title},
	})

	return s.GetPost(ctx, post.ID())
}

func (s *BlogService) getOrCreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag name required")
	}

	tag, err := s.store.GetTagByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if tag != nil {
		return tag, nil
	}

	tag = domain.NewTag(name)
	if err := s.store.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	s.eventBus.Publish(Event{
		Type:    EventTagCreated,
		Payload: map[string]any{"tag_id": tag.ID(), "name": tag.Name},
	})
	return tag, nil
}

// CreateTag creates a tag by name. Duplicate names are rejected by the
// store's unique constraint.
func (s *BlogService) CreateTag(ctx context.Context, name string) (*TagView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag name required")
	}

	tag := domain.NewTag(name)
	if err := s.store.CreateTag(ctx, tag); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventTagCreated,
		Payload: map[string]any{"tag_id": tag.ID(), "name": tag.Name},
	})

	return &TagView{ID: tag.ID(), Name: tag.Name, Posts: []PostRef{}}, nil
}

// GetPost returns a post with its tags resolved to names.
func (s *BlogService) GetPost(ctx context.Context, id int64) (*PostView, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("post %d: %w", id, repository.ErrNotFound)
	}

	tags, err := s.store.TagsOf(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &PostView{ID: post.ID(), Title: post.Title, Tags: make([]TagRef, 0, len(tags))}
	for _, t := range tags {
		view.Tags = append(view.Tags, TagRef{ID: t.ID(), Name: t.Name})
	}
	return view, nil
}

// GetTag returns a tag with its posts resolved to titles.
func (s *BlogService) GetTag(ctx context.Context, id int64) (*TagView, error) {
	tag, err := s.store.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, fmt.Errorf("tag %d: %w", id, repository.ErrNotFound)
	}

	posts, err := s.store.PostsOf(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &TagView{ID: tag.ID(), Name: tag.Name, Posts: make([]PostRef, 0, len(posts))}
	for _, p := range posts {
		view.Posts = append(view.Posts, PostRef{ID: p.ID(), Title: p.Title})
	}
	return view, nil
}

// ListPosts returns all post summaries without tags.
func (s *BlogService) ListPosts(ctx context.Context) ([]PostRef, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]PostRef, 0, len(posts))
	for _, p := range posts {
		refs = append(refs, PostRef{ID: p.ID(), Title: p.Title})
	}
	return refs, nil
}

// ListTags returns all tag summaries without posts.
func (s *BlogService) ListTags(ctx context.Context) ([]TagRef, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]TagRef, 0, len(tags))
	for _, t := range tags {
		refs = append(refs, TagRef{ID: t.ID(), Name: t.Name})
	}
	return refs, nil
}

// TagPost links a tag to a post in one unit of work: the post's owning
// collection is fetched eagerly, the tag's posts stay lazy, and the
// link flushes as a single insert.
func (s *BlogService) TagPost(ctx context.Context, postID, tagID int64) error {
	sess := relation.NewSession(s.store)

	post, err := s.store.GetPostWithTags(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("post %d: %w", postID, repository.ErrNotFound)
	}
	tag, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return err
	}
	if tag == nil {
		return fmt.Errorf("tag %d: %w", tagID, repository.ErrNotFound)
	}

	sess.Attach(post.Tags(), tag.Posts())
	if err := post.AddTag(tag); err != nil {
		return err
	}
	if err := sess.Flush(ctx); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventPostTagged,
		Payload: map[string]int64{"post_id": postID, "tag_id": tagID},
	})
	return nil
}

// UntagPost unlinks a tag from a post, symmetric to TagPost. Untagging
// an absent edge succeeds without durable effect.
func (s *BlogService) UntagPost(ctx context.Context, postID, tagID int64) error {
	sess := relation.NewSession(s.store)

	post, err := s.store.GetPostWithTags(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("post %d: %w", postID, repository.ErrNotFound)
	}
	tag, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return err
	}
	if tag == nil {
		return fmt.Errorf("tag %d: %w", tagID, repository.ErrNotFound)
	}

	sess.Attach(post.Tags(), tag.Posts())
	if err := post.RemoveTag(tag); err != nil {
		return err
	}
	if err := sess.Flush(ctx); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventPostUntagged,
		Payload: map[string]int64{"post_id": postID, "tag_id": tagID},
	})
	return nil
}

// DeletePost removes a post and its edges.
func (s *BlogService) DeletePost(ctx context.Context, id int64) error {
	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	s.eventBus.Publish(Event{
		Type:    EventPostDeleted,
		Payload: map[string]int64{"post_id": id},
	})
	return nil
}

// DeleteTag removes a tag and its edges.
func (s *BlogService) DeleteTag(ctx context.Context, id int64) error {
	if err := s.store.DeleteTag(ctx, id); err != nil {
		return err
	}
	s.eventBus.Publish(Event{
		Type:    EventTagDeleted,
		Payload: map[string]int64{"tag_id": id},
	})
	return nil
}
