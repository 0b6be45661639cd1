package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"relsync/internal/domain"
	"relsync/internal/relation"
	"relsync/internal/repository"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store implements repository.Store using SQLite. It doubles as the
// persistence context for relation collections: Load resolves lazy
// sides from the junction table and Reconcile turns flushed mutations
// into edge writes.
type Store struct {
	db    *sql.DB
	stats statCounter
}

// New creates a new SQLite store and migrates the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS post_tags (
		post_id INTEGER NOT NULL,
		tag_id INTEGER NOT NULL,
		PRIMARY KEY (post_id, tag_id),
		FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE,
		FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags(tag_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreatePost inserts a post and binds the generated identity into its
// handle. Pending tag mutations are not written here; they flush
// through the unit of work.
func (s *Store) CreatePost(ctx context.Context, post *domain.Post) error {
	res, err := s.exec(ctx, `INSERT INTO posts (title) VALUES (?)`, post.Title)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read post id: %w", err)
	}
	return post.Handle().Bind(id)
}

// GetPost retrieves a post with a lazy tag collection. Returns nil when
// no post exists.
func (s *Store) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	var title string
	err := s.queryRow(ctx, `SELECT title FROM posts WHERE id = ?`, id).Scan(&title)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query post: %w", err)
	}
	return domain.RestorePost(id, title, s), nil
}

// GetPostWithTags retrieves a post with its tag collection eagerly
// materialized. A single join query fetches the row and its edges.
func (s *Store) GetPostWithTags(ctx context.Context, id int64) (*domain.Post, error) {
	rows, err := s.query(ctx, `
		SELECT p.title, pt.tag_id FROM posts p
		LEFT JOIN post_tags pt ON pt.post_id = p.id
		WHERE p.id = ?
		ORDER BY pt.tag_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query post: %w", err)
	}
	defer rows.Close()

	var (
		title string
		tags  []*relation.Handle
		found bool
	)
	for rows.Next() {
		var tagID sql.NullInt64
		if err := rows.Scan(&title, &tagID); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		found = true
		if tagID.Valid {
			tags = append(tags, relation.NewHandle(domain.KindTag, tagID.Int64))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post: %w", err)
	}
	if !found {
		return nil, nil
	}
	return domain.RestorePostWithTags(id, title, s, tags), nil
}

// ListPosts returns all posts with lazy tag collections.
func (s *Store) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	rows, err := s.query(ctx, `SELECT id, title FROM posts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, domain.RestorePost(id, title, s))
	}
	return posts, rows.Err()
}

// DeletePost removes a post; its edges go with it via CASCADE.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	if _, err := s.exec(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// CreateTag inserts a tag and binds the generated identity. A name
// collision surfaces as repository.ErrDuplicate.
func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) error {
	res, err := s.exec(ctx, `INSERT INTO tags (name) VALUES (?)`, tag.Name)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("tag %q: %w", tag.Name, repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read tag id: %w", err)
	}
	return tag.Handle().Bind(id)
}

// GetTag retrieves a tag with a lazy post collection. Returns nil when
// no tag exists.
func (s *Store) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	var name string
	err := s.queryRow(ctx, `SELECT name FROM tags WHERE id = ?`, id).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tag: %w", err)
	}
	return domain.RestoreTag(id, name, s), nil
}

// GetTagByName retrieves a tag by its unique name.
func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	var id int64
	err := s.queryRow(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tag: %w", err)
	}
	return domain.RestoreTag(id, name, s), nil
}

// ListTags returns all tags with lazy post collections.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.query(ctx, `SELECT id, name FROM tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, domain.RestoreTag(id, name, s))
	}
	return tags, rows.Err()
}

// DeleteTag removes a tag and its edges via CASCADE.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	if _, err := s.exec(ctx, `DELETE FROM tags WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

// TagsOf returns the tag rows linked to a post, ordered by tag id.
func (s *Store) TagsOf(ctx context.Context, postID int64) ([]*domain.Tag, error) {
	rows, err := s.query(ctx, `
		SELECT t.id, t.name FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ?
		ORDER BY t.id
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query post tags: %w", err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, domain.RestoreTag(id, name, s))
	}
	return tags, rows.Err()
}

// PostsOf returns the post rows linked to a tag.
func (s *Store) PostsOf(ctx context.Context, tagID int64) ([]*domain.Post, error) {
	rows, err := s.query(ctx, `
		SELECT p.id, p.title FROM posts p
		JOIN post_tags pt ON pt.post_id = p.id
		WHERE pt.tag_id = ?
		ORDER BY p.id
	`, tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag posts: %w", err)
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, domain.RestorePost(id, title, s))
	}
	return posts, rows.Err()
}

// Load implements relation.Loader. It reads one side of the edge set
// from the junction table and is side-effect free on the durable store.
func (s *Store) Load(ctx context.Context, owner *relation.Handle, field string) ([]*relation.Handle, error) {
	if !owner.Resolved() {
		return nil, fmt.Errorf("cannot load relation of %s", owner)
	}

	switch {
	case owner.Kind() == domain.KindPost && field == domain.FieldTags:
		return s.loadTagHandles(ctx, owner.ID())
	case owner.Kind() == domain.KindTag && field == domain.FieldPosts:
		return s.loadPostHandles(ctx, owner.ID())
	default:
		return nil, fmt.Errorf("unknown relation %s.%s", owner.Kind(), field)
	}
}

func (s *Store) loadTagHandles(ctx context.Context, postID int64) ([]*relation.Handle, error) {
	rows, err := s.query(ctx, `SELECT tag_id FROM post_tags WHERE post_id = ? ORDER BY tag_id`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags for post %d: %w", postID, err)
	}
	defer rows.Close()
	return scanHandles(rows, domain.KindTag)
}

func (s *Store) loadPostHandles(ctx context.Context, tagID int64) ([]*relation.Handle, error) {
	rows, err := s.query(ctx, `SELECT post_id FROM post_tags WHERE tag_id = ? ORDER BY post_id`, tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts for tag %d: %w", tagID, err)
	}
	defer rows.Close()
	return scanHandles(rows, domain.KindPost)
}

// Reconcile implements relation.Context. Unordered-set collections
// reconcile to minimal writes: one insert per added edge, one targeted
// delete per removed edge. Ordered-list owners take the permitted full
// rewrite: every edge for the owner is deleted, then every member
// reinserted in order.
func (s *Store) Reconcile(ctx context.Context, m relation.Mutation) error {
	if m.Owner.Kind() != domain.KindPost || m.Field != domain.FieldTags {
		return fmt.Errorf("no owning relation %s.%s", m.Owner.Kind(), m.Field)
	}
	if !m.Owner.Resolved() {
		return fmt.Errorf("owner %s has no identity", m.Owner)
	}

	if m.Backing == relation.OrderedList {
		return s.rewriteEdges(ctx, m.Owner.ID(), m.Members)
	}

	for _, member := range m.Added {
		if !member.Resolved() {
			return fmt.Errorf("member %s has no identity", member)
		}
		if _, err := s.exec(ctx, `INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)`,
			m.Owner.ID(), member.ID()); err != nil {
			return fmt.Errorf("failed to insert edge %s->%s: %w", m.Owner, member, err)
		}
	}
	for _, member := range m.Removed {
		if !member.Resolved() {
			// Never persisted; nothing to delete.
			continue
		}
		if _, err := s.exec(ctx, `DELETE FROM post_tags WHERE post_id = ? AND tag_id = ?`,
			m.Owner.ID(), member.ID()); err != nil {
			return fmt.Errorf("failed to delete edge %s->%s: %w", m.Owner, member, err)
		}
	}
	return nil
}

// rewriteEdges replaces all edges for one owner. This is the write
// amplification an ordered owning collection pays: list order is state,
// so the whole list is reconciled.
func (s *Store) rewriteEdges(ctx context.Context, postID int64, members []*relation.Handle) error {
	if _, err := s.exec(ctx, `DELETE FROM post_tags WHERE post_id = ?`, postID); err != nil {
		return fmt.Errorf("failed to clear edges for post %d: %w", postID, err)
	}
	for _, member := range members {
		if !member.Resolved() {
			return fmt.Errorf("member %s has no identity", member)
		}
		if _, err := s.exec(ctx, `INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)`,
			postID, member.ID()); err != nil {
			return fmt.Errorf("failed to insert edge post(%d)->%s: %w", postID, member, err)
		}
	}
	return nil
}

// isConstraintViolation reports whether the driver error carries the
// SQLITE_CONSTRAINT primary result code.
func isConstraintViolation(err error) bool {
	var serr *msqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

func scanHandles(rows *sql.Rows, kind relation.Kind) ([]*relation.Handle, error) {
	var handles []*relation.Handle
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		handles = append(handles, relation.NewHandle(kind, id))
	}
	return handles, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
