package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// selectPost joins the author's username onto every post row.
const selectPost = `SELECT p.id, p.title, p.content, p.category, p.image_ref, p.author_id, p.created_at, u.username AS author_name
FROM posts p JOIN users u ON u.id = p.author_id`

// SQLPostRepository is a concrete implementation of the PostRepository interface using sqlx.
type SQLPostRepository struct {
	db *sqlx.DB
}

// NewSQLPostRepository creates a new SQLPostRepository.
func NewSQLPostRepository(db *sqlx.DB) *SQLPostRepository {
	return &SQLPostRepository{db: db}
}

// CreatePost inserts a new post and returns its generated ID.
func (r *SQLPostRepository) CreatePost(ctx context.Context, post *Post) (int64, error) {
	query := `INSERT INTO posts (title, content, category, image_ref, author_id) VALUES (:title, :content, :category, :image_ref, :author_id)`
	res, err := r.db.NamedExecContext(ctx, query, post)
	if err != nil {
		return 0, fmt.Errorf("failed to execute create post query: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted post id: %w", err)
	}
	post.ID = id
	return id, nil
}

// GetPostByID retrieves a single post by its ID.
func (r *SQLPostRepository) GetPostByID(ctx context.Context, id int64) (*Post, error) {
	var post Post
	query := selectPost + ` WHERE p.id = ?`
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}
	return &post, nil
}

// GetRecentPosts retrieves the newest posts, limited to the given count.
func (r *SQLPostRepository) GetRecentPosts(ctx context.Context, limit int) ([]*Post, error) {
	var posts []*Post
	query := selectPost + ` ORDER BY p.created_at DESC, p.id DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &posts, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent posts: %w", err)
	}
	return posts, nil
}

// GetAllPosts retrieves all posts, newest first.
func (r *SQLPostRepository) GetAllPosts(ctx context.Context) ([]*Post, error) {
	var posts []*Post
	query := selectPost + ` ORDER BY p.created_at DESC, p.id DESC`
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("failed to get all posts: %w", err)
	}
	return posts, nil
}

// GetPostsByCategory retrieves all posts in a category, newest first.
func (r *SQLPostRepository) GetPostsByCategory(ctx context.Context, category string) ([]*Post, error) {
	var posts []*Post
	query := selectPost + ` WHERE p.category = ? ORDER BY p.created_at DESC, p.id DESC`
	if err := r.db.SelectContext(ctx, &posts, query, category); err != nil {
		return nil, fmt.Errorf("failed to get posts by category: %w", err)
	}
	return posts, nil
}

// UpdatePost updates an existing post's title, content, category and image.
func (r *SQLPostRepository) UpdatePost(ctx context.Context, post *Post) error {
	query := `UPDATE posts SET title = :title, content = :content, category = :category, image_ref = :image_ref WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes a post from the database by its ID.
func (r *SQLPostRepository) DeletePost(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountPosts returns the total number of posts.
func (r *SQLPostRepository) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM posts`
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}
