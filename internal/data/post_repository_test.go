//go:build integration

package data

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
)

func seedAuthor(t *testing.T, db *sqlx.DB) int64 {
	t.Helper()
	res := db.MustExec(`INSERT INTO users (username, email, password_hash, is_admin) VALUES ('author', 'author@example.com', 'h', 1)`)
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("failed to seed author: %v", err)
	}
	return id
}

func TestSQLPostRepository_CreateAndGet(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	repo := NewSQLPostRepository(db)
	ctx := context.Background()
	authorID := seedAuthor(t, db)

	ref := "cover.png"
	post := &Post{Title: "First", Content: "body", Category: "Spiritual", ImageRef: &ref, AuthorID: authorID}
	id, err := repo.CreatePost(ctx, post)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	got, err := repo.GetPostByID(ctx, id)
	if err != nil {
		t.Fatalf("GetPostByID failed: %v", err)
	}
	if got.Title != "First" || got.Category != "Spiritual" {
		t.Errorf("unexpected post %+v", got)
	}
	if got.ImageRef == nil || *got.ImageRef != "cover.png" {
		t.Errorf("expected image ref cover.png, got %v", got.ImageRef)
	}
	if got.AuthorName != "author" {
		t.Errorf("expected the author name to be joined in, got %q", got.AuthorName)
	}
}

func TestSQLPostRepository_Ordering(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	repo := NewSQLPostRepository(db)
	ctx := context.Background()
	authorID := seedAuthor(t, db)

	for _, title := range []string{"oldest", "middle", "newest"} {
		if _, err := repo.CreatePost(ctx, &Post{Title: title, Content: "c", Category: "Spiritual", AuthorID: authorID}); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	posts, err := repo.GetAllPosts(ctx)
	if err != nil {
		t.Fatalf("GetAllPosts failed: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
	if posts[0].Title != "newest" || posts[2].Title != "oldest" {
		t.Errorf("expected newest-first ordering, got %q .. %q", posts[0].Title, posts[2].Title)
	}

	recent, err := repo.GetRecentPosts(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecentPosts failed: %v", err)
	}
	if len(recent) != 2 || recent[0].Title != "newest" {
		t.Errorf("expected the 2 newest posts, got %d starting with %q", len(recent), recent[0].Title)
	}
}

func TestSQLPostRepository_GetPostsByCategory(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	repo := NewSQLPostRepository(db)
	ctx := context.Background()
	authorID := seedAuthor(t, db)

	for _, p := range []struct{ title, category string }{
		{"a", "Spiritual"},
		{"b", "Indian Culture"},
		{"c", "Spiritual"},
	} {
		if _, err := repo.CreatePost(ctx, &Post{Title: p.title, Content: "c", Category: p.category, AuthorID: authorID}); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	posts, err := repo.GetPostsByCategory(ctx, "Spiritual")
	if err != nil {
		t.Fatalf("GetPostsByCategory failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 Spiritual posts, got %d", len(posts))
	}
	for _, p := range posts {
		if p.Category != "Spiritual" {
			t.Errorf("unexpected category %q", p.Category)
		}
	}
}

func TestSQLPostRepository_UpdateAndDelete(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	repo := NewSQLPostRepository(db)
	ctx := context.Background()
	authorID := seedAuthor(t, db)

	post := &Post{Title: "before", Content: "c", Category: "Spiritual", AuthorID: authorID}
	id, err := repo.CreatePost(ctx, post)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	ref := "new.png"
	post.Title = "after"
	post.Category = "Science and Tech"
	post.ImageRef = &ref
	if err := repo.UpdatePost(ctx, post); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}

	got, err := repo.GetPostByID(ctx, id)
	if err != nil {
		t.Fatalf("GetPostByID failed: %v", err)
	}
	if got.Title != "after" || got.Category != "Science and Tech" || got.ImageRef == nil {
		t.Errorf("expected the update to persist, got %+v", got)
	}

	if err := repo.DeletePost(ctx, id); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := repo.GetPostByID(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeletePost(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}
