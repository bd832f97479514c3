package photocredit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/photocredit/credit"
)

// Taxonomies of post terms.
const (
	TaxonomyCategory = "category"
	TaxonomyTag      = "tag"
)

// Store wraps a SQLite database holding posts, terms, attachments, their
// custom fields and the settings record.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// Per-connection pragmas go in the DSN so every pooled connection gets
	// them; journal_mode is persistent and set once below.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    modified TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL,
    content TEXT NOT NULL,
    featured_image INTEGER NOT NULL DEFAULT 0,
    published INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS terms (
    id INTEGER PRIMARY KEY,
    taxonomy TEXT NOT NULL,
    name TEXT NOT NULL,
    slug TEXT NOT NULL,
    UNIQUE(taxonomy, slug)
);

CREATE TABLE IF NOT EXISTS post_terms (
    post_slug TEXT NOT NULL REFERENCES posts(slug) ON DELETE CASCADE,
    term_id INTEGER NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
    position INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY(post_slug, term_id)
);

CREATE TABLE IF NOT EXISTS attachments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    filename TEXT NOT NULL UNIQUE,
    original_name TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    alt_text TEXT NOT NULL DEFAULT '',
    caption TEXT NOT NULL DEFAULT '',
    width INTEGER NOT NULL DEFAULT 0,
    height INTEGER NOT NULL DEFAULT 0,
    size INTEGER NOT NULL DEFAULT 0,
    phash INTEGER NOT NULL DEFAULT 0,
    uploaded_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attachment_fields (
    attachment_id INTEGER NOT NULL REFERENCES attachments(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY(attachment_id, name)
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_post_terms_term ON post_terms(term_id);
`)
	return err
}

// FieldStorageReady reports whether the attachment field table is usable.
// Image credit output depends on it.
func (s *Store) FieldStorageReady() bool {
	var name string
	err := s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'attachment_fields'`).Scan(&name)
	return err == nil
}

const postColumns = `slug, title, date, modified, author, summary, content, featured_image, published`

func scanPost(sc interface{ Scan(...any) error }) (Post, error) {
	var p Post
	var published int
	if err := sc.Scan(&p.Slug, &p.Title, &p.Date, &p.Modified, &p.Author, &p.Summary, &p.Content, &p.FeaturedImage, &published); err != nil {
		return Post{}, err
	}
	p.Published = published == 1
	p.Link = "/blog/" + p.Slug
	return p, nil
}

func (s *Store) queryPosts(query string, args ...any) ([]Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachTerms(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachTerms loads categories and tags for posts in one query.
func (s *Store) attachTerms(posts []Post) error {
	if len(posts) == 0 {
		return nil
	}
	index := make(map[string]int, len(posts))
	for i, p := range posts {
		index[p.Slug] = i
	}
	rows, err := s.db.Query(`
SELECT pt.post_slug, t.taxonomy, t.name, t.slug
FROM post_terms pt JOIN terms t ON t.id = pt.term_id
ORDER BY pt.post_slug, pt.position`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var postSlug, taxonomy, name, slug string
		if err := rows.Scan(&postSlug, &taxonomy, &name, &slug); err != nil {
			return err
		}
		i, ok := index[postSlug]
		if !ok {
			continue
		}
		term := credit.Term{Name: name, Slug: slug}
		switch taxonomy {
		case TaxonomyCategory:
			posts[i].Categories = append(posts[i].Categories, term)
		case TaxonomyTag:
			posts[i].Tags = append(posts[i].Tags, term)
		}
	}
	return rows.Err()
}

// ListPosts returns all published posts ordered by date descending.
func (s *Store) ListPosts() ([]Post, error) {
	return s.queryPosts(`SELECT ` + postColumns + ` FROM posts WHERE published = 1 ORDER BY date DESC`)
}

// ListAllPosts returns every post (published and drafts) ordered by date descending.
func (s *Store) ListAllPosts() ([]Post, error) {
	return s.queryPosts(`SELECT ` + postColumns + ` FROM posts ORDER BY date DESC`)
}

// GetPost returns a single published post by slug.
func (s *Store) GetPost(slug string) (Post, error) {
	return s.getPost(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug)
}

// GetPostAny returns a post by slug regardless of published status (for admin).
func (s *Store) GetPostAny(slug string) (Post, error) {
	return s.getPost(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
}

func (s *Store) getPost(query, slug string) (Post, error) {
	p, err := scanPost(s.db.QueryRow(query, slug))
	if err != nil {
		return Post{}, err
	}
	posts := []Post{p}
	if err := s.attachTerms(posts); err != nil {
		return Post{}, err
	}
	return posts[0], nil
}

// SavePost upserts a post and replaces its term assignments. Term names keep
// their casing; slugs are derived from the names.
func (s *Store) SavePost(p Post) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	published := 0
	if p.Published {
		published = 1
	}
	if _, err := tx.Exec(`
INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
    title = excluded.title, date = excluded.date, modified = excluded.modified,
    author = excluded.author, summary = excluded.summary, content = excluded.content,
    featured_image = excluded.featured_image, published = excluded.published`,
		p.Slug, p.Title, p.Date, p.Modified, p.Author, p.Summary, p.Content, p.FeaturedImage, published); err != nil {
		return fmt.Errorf("upsert post: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM post_terms WHERE post_slug = ?`, p.Slug); err != nil {
		return err
	}
	position := 0
	groups := []struct {
		taxonomy string
		terms    []credit.Term
	}{
		{TaxonomyCategory, p.Categories},
		{TaxonomyTag, p.Tags},
	}
	for _, g := range groups {
		taxonomy := g.taxonomy
		for _, t := range g.terms {
			name := strings.TrimSpace(t.Name)
			slug := t.Slug
			if slug == "" {
				slug = Slugify(name)
			}
			if name == "" {
				continue
			}
			if slug == "" {
				return fmt.Errorf("term %q: no letters or digits to build a slug from", name)
			}
			var id int64
			err := tx.QueryRow(`
INSERT INTO terms (taxonomy, name, slug) VALUES (?, ?, ?)
ON CONFLICT(taxonomy, slug) DO UPDATE SET name = excluded.name
RETURNING id`, taxonomy, name, slug).Scan(&id)
			if err != nil {
				return fmt.Errorf("upsert term %q: %w", name, err)
			}
			if _, err := tx.Exec(`INSERT OR IGNORE INTO post_terms (post_slug, term_id, position) VALUES (?, ?, ?)`, p.Slug, id, position); err != nil {
				return err
			}
			position++
		}
	}
	return tx.Commit()
}

// DeletePost removes a post by slug.
func (s *Store) DeletePost(slug string) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE slug = ?`, slug)
	return err
}

// ListTerms returns the terms of taxonomy used by published posts, sorted by
// slug.
func (s *Store) ListTerms(taxonomy string) ([]credit.Term, error) {
	rows, err := s.db.Query(`
SELECT DISTINCT t.name, t.slug
FROM terms t
JOIN post_terms pt ON pt.term_id = t.id
JOIN posts p ON p.slug = pt.post_slug
WHERE t.taxonomy = ? AND p.published = 1`, taxonomy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []credit.Term
	for rows.Next() {
		var t credit.Term
		if err := rows.Scan(&t.Name, &t.Slug); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Slug < terms[j].Slug })
	return terms, nil
}

const attachmentColumns = `id, filename, original_name, title, alt_text, caption, width, height, size, phash, uploaded_at`

func scanAttachment(sc interface{ Scan(...any) error }) (Attachment, error) {
	var a Attachment
	var hash int64
	var uploaded string
	if err := sc.Scan(&a.ID, &a.Filename, &a.OriginalName, &a.Title, &a.AltText, &a.Caption,
		&a.Width, &a.Height, &a.Size, &hash, &uploaded); err != nil {
		return Attachment{}, err
	}
	a.Hash = uint64(hash)
	if t, err := time.Parse(time.RFC3339, uploaded); err == nil {
		a.UploadedAt = t
	}
	return a, nil
}

// SaveAttachment inserts a new attachment, or updates the descriptive
// columns when a.ID is set, and returns its id.
func (s *Store) SaveAttachment(a Attachment) (int64, error) {
	if a.ID != 0 {
		_, err := s.db.Exec(`UPDATE attachments SET title = ?, alt_text = ?, caption = ? WHERE id = ?`,
			a.Title, a.AltText, a.Caption, a.ID)
		return a.ID, err
	}
	uploaded := a.UploadedAt
	if uploaded.IsZero() {
		uploaded = time.Now()
	}
	res, err := s.db.Exec(`INSERT INTO attachments (filename, original_name, title, alt_text, caption, width, height, size, phash, uploaded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Filename, a.OriginalName, a.Title, a.AltText, a.Caption, a.Width, a.Height, a.Size,
		int64(a.Hash), uploaded.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert attachment: %w", err)
	}
	return res.LastInsertId()
}

// GetAttachment returns an attachment by id, including its custom fields.
func (s *Store) GetAttachment(id int64) (Attachment, error) {
	a, err := scanAttachment(s.db.QueryRow(`SELECT `+attachmentColumns+` FROM attachments WHERE id = ?`, id))
	if err != nil {
		return Attachment{}, err
	}
	a.Fields, err = s.Fields(id)
	if err != nil {
		return Attachment{}, err
	}
	return a, nil
}

// ListAttachments returns all attachments, newest first, without fields.
func (s *Store) ListAttachments() ([]Attachment, error) {
	rows, err := s.db.Query(`SELECT ` + attachmentColumns + ` FROM attachments ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FilenameTaken reports whether an attachment already uses filename.
func (s *Store) FilenameTaken(filename string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM attachments WHERE filename = ?`, filename).Scan(&n)
	return n > 0, err
}

// DeleteAttachment removes an attachment and its fields, returning the
// stored filename so the caller can remove the file.
func (s *Store) DeleteAttachment(id int64) (string, error) {
	var filename string
	err := s.db.QueryRow(`DELETE FROM attachments WHERE id = ? RETURNING filename`, id).Scan(&filename)
	return filename, err
}

// GetField returns one custom field of an attachment, or sql.ErrNoRows.
func (s *Store) GetField(attachmentID int64, name string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM attachment_fields WHERE attachment_id = ? AND name = ?`, attachmentID, name).Scan(&v)
	return v, err
}

// Fields returns all custom fields of an attachment.
func (s *Store) Fields(attachmentID int64) (map[string]string, error) {
	rows, err := s.db.Query(`SELECT name, value FROM attachment_fields WHERE attachment_id = ?`, attachmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		fields[name] = value
	}
	return fields, rows.Err()
}

// SetField writes a custom field. An empty value deletes the field.
func (s *Store) SetField(attachmentID int64, name, value string) error {
	if value == "" {
		_, err := s.db.Exec(`DELETE FROM attachment_fields WHERE attachment_id = ? AND name = ?`, attachmentID, name)
		return err
	}
	_, err := s.db.Exec(`
INSERT INTO attachment_fields (attachment_id, name, value) VALUES (?, ?, ?)
ON CONFLICT(attachment_id, name) DO UPDATE SET value = excluded.value`, attachmentID, name, value)
	return err
}

// SetFieldIfEmpty writes value only when the field is absent or empty and
// reports whether it wrote. Concurrent callers writing the same value are
// harmless.
func (s *Store) SetFieldIfEmpty(attachmentID int64, name, value string) (bool, error) {
	res, err := s.db.Exec(`
INSERT INTO attachment_fields (attachment_id, name, value) VALUES (?, ?, ?)
ON CONFLICT(attachment_id, name) DO UPDATE SET value = excluded.value WHERE attachment_fields.value = ''`,
		attachmentID, name, value)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Settings record keys.
const (
	settingTargetCategories      = "target_categories"
	settingTargetTags            = "target_tags"
	settingAutoGenerateCopyright = "auto_generate_copyright"
	settingDefaultLicensePage    = "default_license_page"
	settingIncludeSitemapData    = "include_sitemap_data"
)

// LoadSettings reads the settings record. On first use the defaults are
// written and returned; keys missing from a partial record keep their
// defaults.
func (s *Store) LoadSettings() (credit.Settings, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return credit.Settings{}, err
	}
	raw := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return credit.Settings{}, err
		}
		raw[k] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return credit.Settings{}, err
	}

	settings := credit.DefaultSettings()
	if len(raw) == 0 {
		if err := s.SaveSettings(settings); err != nil {
			return credit.Settings{}, fmt.Errorf("seed settings: %w", err)
		}
		return settings, nil
	}
	targets := map[string]any{
		settingTargetCategories:      &settings.TargetCategories,
		settingTargetTags:            &settings.TargetTags,
		settingAutoGenerateCopyright: &settings.AutoGenerateCopyright,
		settingDefaultLicensePage:    &settings.DefaultLicensePage,
		settingIncludeSitemapData:    &settings.IncludeSitemapData,
	}
	for key, dst := range targets {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(v), dst); err != nil {
			return credit.Settings{}, fmt.Errorf("decode setting %s: %w", key, err)
		}
	}
	return settings, nil
}

// SaveSettings replaces the settings record.
func (s *Store) SaveSettings(settings credit.Settings) error {
	if settings.TargetCategories == nil {
		settings.TargetCategories = []string{}
	}
	if settings.TargetTags == nil {
		settings.TargetTags = []string{}
	}
	values := map[string]any{
		settingTargetCategories:      settings.TargetCategories,
		settingTargetTags:            settings.TargetTags,
		settingAutoGenerateCopyright: settings.AutoGenerateCopyright,
		settingDefaultLicensePage:    settings.DefaultLicensePage,
		settingIncludeSitemapData:    settings.IncludeSitemapData,
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for key, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, string(b)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
