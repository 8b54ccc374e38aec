//go:build integration

package data

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates a new in-memory SQLite database with the application
// schema. It returns the database and a teardown function to be deferred.
func setupTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	// Use a non-shared in-memory database for complete test isolation.
	db, err := sqlx.Connect("sqlite3", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to connect to sqlite test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	schema := `
	CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		category TEXT NOT NULL,
		image_ref TEXT,
		author_id INTEGER NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		body TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	db.MustExec(schema)

	teardown := func() {
		db.Close()
	}
	return db, teardown
}

func TestSQLUserRepository_CreateAndGet(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	repo := NewSQLUserRepository(db)
	ctx := context.Background()

	user := &User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash", IsAdmin: false}
	id, err := repo.CreateUser(ctx, user)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero id")
	}

	byName, err := repo.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if byName.Email != "alice@example.com" {
		t.Errorf("expected email alice@example.com, got %q", byName.Email)
	}

	byEmail, err := repo.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != id {
		t.Errorf("expected id %d, got %d", id, byEmail.ID)
	}

	if _, err := repo.GetUserByID(ctx, id); err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
}

func TestSQLUserRepository_NotFound(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	repo := NewSQLUserRepository(db)
	ctx := context.Background()

	if _, err := repo.GetUserByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetUserByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateUser(ctx, &User{ID: 999, Username: "x", Email: "x@example.com", PasswordHash: "h"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on update, got %v", err)
	}
}

func TestSQLUserRepository_UniqueConstraints(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	repo := NewSQLUserRepository(db)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, &User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := repo.CreateUser(ctx, &User{Username: "alice", Email: "other@example.com", PasswordHash: "h"}); err == nil {
		t.Error("expected a duplicate username to fail")
	}
	if _, err := repo.CreateUser(ctx, &User{Username: "bob", Email: "alice@example.com", PasswordHash: "h"}); err == nil {
		t.Error("expected a duplicate email to fail")
	}
}

func TestSQLUserRepository_UpdateAndCount(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	repo := NewSQLUserRepository(db)
	ctx := context.Background()

	user := &User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"}
	if _, err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user.IsAdmin = true
	user.PasswordHash = "newhash"
	if err := repo.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	got, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if !got.IsAdmin || got.PasswordHash != "newhash" {
		t.Errorf("expected the update to persist, got %+v", got)
	}

	count, err := repo.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}
}
