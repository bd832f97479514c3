package photocredit

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/eringen/photocredit/credit"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePost() Post {
	return Post{
		Slug:    "harbour-at-dawn",
		Title:   "Harbour at Dawn",
		Date:    "2024-03-02",
		Author:  "Ana",
		Summary: "Boats before sunrise",
		Content: "![](media:1){}",
		Categories: []credit.Term{
			{Name: "Photolog"},
		},
		Tags: []credit.Term{
			{Name: "Sea"},
			{Name: "Long Exposure"},
		},
		FeaturedImage: 1,
		Published:     true,
	}
}

func TestNewStoreCreatesFieldStorage(t *testing.T) {
	s := setupTestStore(t)
	if !s.FieldStorageReady() {
		t.Fatal("attachment field storage should be ready after NewStore")
	}
}

func TestFieldStorageReadyWithoutTable(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.db.Exec(`DROP TABLE attachment_fields`); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	if s.FieldStorageReady() {
		t.Fatal("FieldStorageReady should be false without attachment_fields")
	}
}

func TestSaveAndGetPost(t *testing.T) {
	s := setupTestStore(t)
	if err := s.SavePost(samplePost()); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}

	got, err := s.GetPost("harbour-at-dawn")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != "Harbour at Dawn" || got.FeaturedImage != 1 || got.Author != "Ana" {
		t.Errorf("unexpected post: %+v", got)
	}
	if got.Link != "/blog/harbour-at-dawn" {
		t.Errorf("Link = %q", got.Link)
	}
	if len(got.Categories) != 1 || got.Categories[0] != (credit.Term{Name: "Photolog", Slug: "photolog"}) {
		t.Errorf("Categories = %+v", got.Categories)
	}
	if len(got.Tags) != 2 || got.Tags[0].Slug != "sea" || got.Tags[1].Slug != "long-exposure" {
		t.Errorf("Tags = %+v, want sea then long-exposure", got.Tags)
	}
}

func TestSavePostReplacesTerms(t *testing.T) {
	s := setupTestStore(t)
	p := samplePost()
	if err := s.SavePost(p); err != nil {
		t.Fatal(err)
	}
	p.Tags = []credit.Term{{Name: "Night"}}
	p.Categories = nil
	if err := s.SavePost(p); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetPost(p.Slug)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Categories) != 0 {
		t.Errorf("categories should be cleared, got %+v", got.Categories)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "Night" {
		t.Errorf("Tags = %+v", got.Tags)
	}
}

func TestGetPostUnpublished(t *testing.T) {
	s := setupTestStore(t)
	p := samplePost()
	p.Published = false
	if err := s.SavePost(p); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetPost(p.Slug); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetPost on draft: err = %v, want sql.ErrNoRows", err)
	}
	if _, err := s.GetPostAny(p.Slug); err != nil {
		t.Errorf("GetPostAny on draft: %v", err)
	}
	posts, err := s.ListPosts()
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 0 {
		t.Errorf("ListPosts returned drafts: %+v", posts)
	}
}

func TestListTermsOnlyPublished(t *testing.T) {
	s := setupTestStore(t)
	if err := s.SavePost(samplePost()); err != nil {
		t.Fatal(err)
	}
	draft := Post{Slug: "draft", Title: "Draft", Date: "2024-01-01", Tags: []credit.Term{{Name: "Secret"}}}
	if err := s.SavePost(draft); err != nil {
		t.Fatal(err)
	}
	tags, err := s.ListTerms(TaxonomyTag)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 || tags[0].Slug != "long-exposure" || tags[1].Slug != "sea" {
		t.Errorf("ListTerms = %+v", tags)
	}
}

func TestDeletePostRemovesTermLinks(t *testing.T) {
	s := setupTestStore(t)
	if err := s.SavePost(samplePost()); err != nil {
		t.Fatal(err)
	}
	if err := s.DeletePost("harbour-at-dawn"); err != nil {
		t.Fatal(err)
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM post_terms`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("post_terms rows left after delete: %d", n)
	}
}

func TestAttachmentRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	uploaded := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	id, err := s.SaveAttachment(Attachment{
		Filename:   "dawn.jpg",
		Title:      "Dawn",
		AltText:    "Boats in a harbour",
		Width:      1600,
		Height:     1067,
		Hash:       0xfedcba9876543210,
		UploadedAt: uploaded,
	})
	if err != nil {
		t.Fatalf("SaveAttachment: %v", err)
	}
	if err := s.SetField(id, credit.FieldPhotographer, "Ana Costa"); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetAttachment(id)
	if err != nil {
		t.Fatalf("GetAttachment: %v", err)
	}
	if got.Hash != 0xfedcba9876543210 {
		t.Errorf("Hash = %x, want the uint64 to survive the int64 column", got.Hash)
	}
	if !got.UploadedAt.Equal(uploaded) {
		t.Errorf("UploadedAt = %v, want %v", got.UploadedAt, uploaded)
	}
	if got.Fields[credit.FieldPhotographer] != "Ana Costa" {
		t.Errorf("Fields = %v", got.Fields)
	}

	got.Title = "Dawn, Porto"
	if _, err := s.SaveAttachment(got); err != nil {
		t.Fatal(err)
	}
	again, _ := s.GetAttachment(id)
	if again.Title != "Dawn, Porto" || again.Filename != "dawn.jpg" {
		t.Errorf("update changed the wrong columns: %+v", again)
	}

	taken, err := s.FilenameTaken("dawn.jpg")
	if err != nil || !taken {
		t.Errorf("FilenameTaken = %v, %v", taken, err)
	}
	filename, err := s.DeleteAttachment(id)
	if err != nil || filename != "dawn.jpg" {
		t.Fatalf("DeleteAttachment = %q, %v", filename, err)
	}
	if _, err := s.GetField(id, credit.FieldPhotographer); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("fields should cascade on delete, err = %v", err)
	}
}

func TestSetFieldEmptyDeletes(t *testing.T) {
	s := setupTestStore(t)
	id, err := s.SaveAttachment(Attachment{Filename: "a.jpg"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetField(id, credit.FieldLicense, "CC BY"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetField(id, credit.FieldLicense, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetField(id, credit.FieldLicense); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetField after clearing: err = %v, want sql.ErrNoRows", err)
	}
}

func TestSetFieldIfEmptyNeverOverwrites(t *testing.T) {
	s := setupTestStore(t)
	id, err := s.SaveAttachment(Attachment{Filename: "b.jpg"})
	if err != nil {
		t.Fatal(err)
	}

	wrote, err := s.SetFieldIfEmpty(id, credit.FieldLicenseURL, "https://creativecommons.org/licenses/by/4.0/")
	if err != nil || !wrote {
		t.Fatalf("first write = %v, %v", wrote, err)
	}
	wrote, err = s.SetFieldIfEmpty(id, credit.FieldLicenseURL, "https://example.com/other")
	if err != nil {
		t.Fatal(err)
	}
	if wrote {
		t.Error("second write should be a no-op")
	}
	v, _ := s.GetField(id, credit.FieldLicenseURL)
	if v != "https://creativecommons.org/licenses/by/4.0/" {
		t.Errorf("value = %q, want the first write", v)
	}
}

func TestLoadSettingsSeedsDefaults(t *testing.T) {
	s := setupTestStore(t)
	got, err := s.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	want := credit.DefaultSettings()
	if len(got.TargetCategories) != 1 || got.TargetCategories[0] != credit.DefaultCategory {
		t.Errorf("TargetCategories = %v", got.TargetCategories)
	}
	if got.AutoGenerateCopyright != want.AutoGenerateCopyright || got.IncludeSitemapData != want.IncludeSitemapData {
		t.Errorf("defaults not applied: %+v", got)
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM settings`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("settings rows = %d, want 5 seeded keys", n)
	}
}

func TestLoadSettingsPartialRecord(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES ('target_tags', '["portrait"]')`); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(got.TargetTags) != 1 || got.TargetTags[0] != "portrait" {
		t.Errorf("TargetTags = %v", got.TargetTags)
	}
	if len(got.TargetCategories) != 1 || got.TargetCategories[0] != credit.DefaultCategory {
		t.Errorf("missing key should keep default, got %v", got.TargetCategories)
	}
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	in := credit.Settings{
		TargetCategories:      nil,
		TargetTags:            []string{"travel"},
		AutoGenerateCopyright: false,
		DefaultLicensePage:    "https://example.com/licensing",
		IncludeSitemapData:    false,
	}
	if err := s.SaveSettings(in); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got.TargetCategories == nil || len(got.TargetCategories) != 0 {
		t.Errorf("TargetCategories = %#v, want empty list", got.TargetCategories)
	}
	if got.DefaultLicensePage != in.DefaultLicensePage || got.AutoGenerateCopyright || got.IncludeSitemapData {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestSavePostNonASCIITerms(t *testing.T) {
	s := setupTestStore(t)
	p := samplePost()
	p.Categories = []credit.Term{{Name: "Фото"}}
	if err := s.SavePost(p); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetPost(p.Slug)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Categories) != 1 || got.Categories[0] != (credit.Term{Name: "Фото", Slug: "фото"}) {
		t.Errorf("Categories = %+v", got.Categories)
	}
	ctx := got.CreditContext(true)
	if !credit.IsApplicable(ctx, credit.Settings{TargetCategories: []string{"Фото"}}) {
		t.Error("a non-ASCII target category should match the stored term")
	}
}

func TestSavePostRejectsUnsluggableTerm(t *testing.T) {
	s := setupTestStore(t)
	p := samplePost()
	p.Tags = []credit.Term{{Name: "!!!"}}
	if err := s.SavePost(p); err == nil {
		t.Fatal("SavePost should fail for a term without letters or digits")
	}
	if _, err := s.GetPostAny(p.Slug); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("post should not be saved, err = %v", err)
	}
}
