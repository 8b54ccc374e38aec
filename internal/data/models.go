package data

import (
	"html/template"
	"time"
)

// User represents a registered account.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
}

// Post represents a single blog post.
type Post struct {
	ID          int64         `db:"id"`
	Title       string        `db:"title"`
	Content     string        `db:"content"`
	HTMLContent template.HTML `db:"-"`
	Category    string        `db:"category"`
	ImageRef    *string       `db:"image_ref"`
	ImageURL    string        `db:"-"`
	AuthorID    int64         `db:"author_id"`
	AuthorName  string        `db:"author_name"`
	CreatedAt   time.Time     `db:"created_at"`
}

// Message represents a contact-form submission.
type Message struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Body      string    `db:"body"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}

// Categories is the fixed set of post categories.
var Categories = []string{
	"AboutMe",
	"Esoteric Science",
	"Science and Tech",
	"Indian Culture",
	"Spiritual",
}

// ValidCategory reports whether name is one of the fixed categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
