package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"

	"go-blog-app/internal/data"
	"go-blog-app/internal/media"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// LandingPostLimit is how many posts the public landing page shows.
const LandingPostLimit = 6

// ErrInvalidCategory is returned when a post category is outside the fixed set.
var ErrInvalidCategory = errors.New("invalid category")

// PostRepository defines the interface for database operations on posts.
type PostRepository interface {
	CreatePost(ctx context.Context, post *data.Post) (int64, error)
	GetPostByID(ctx context.Context, id int64) (*data.Post, error)
	GetRecentPosts(ctx context.Context, limit int) ([]*data.Post, error)
	GetAllPosts(ctx context.Context) ([]*data.Post, error)
	GetPostsByCategory(ctx context.Context, category string) ([]*data.Post, error)
	UpdatePost(ctx context.Context, post *data.Post) error
	DeletePost(ctx context.Context, id int64) error
	CountPosts(ctx context.Context) (int64, error)
}

// ImageUpload carries an uploaded image into the service layer.
type ImageUpload struct {
	Reader   io.Reader
	Filename string
}

// PostService provides business logic for managing blog posts.
type PostService struct {
	repo      PostRepository
	media     media.Store
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewPostService creates a new PostService. Post content is written as
// markdown; at render time it is converted to HTML and run through a
// bluemonday UGC policy so stored markup can never execute.
func NewPostService(repo PostRepository, mediaStore media.Store) *PostService {
	return &PostService{
		repo:      repo,
		media:     mediaStore,
		markdown:  goldmark.New(),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// render fills the display-only fields of a post: the sanitized HTML body
// and the resolved image URL.
func (s *PostService) render(post *data.Post) error {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(post.Content), &buf); err != nil {
		return fmt.Errorf("failed to render post content: %w", err)
	}
	post.HTMLContent = template.HTML(s.sanitizer.SanitizeBytes(buf.Bytes()))
	if post.ImageRef != nil {
		post.ImageURL = s.media.URL(*post.ImageRef)
	}
	return nil
}

func (s *PostService) renderAll(posts []*data.Post) error {
	for _, p := range posts {
		if err := s.render(p); err != nil {
			return err
		}
	}
	return nil
}

// CreatePost creates a new post owned by authorID. When an image is present
// its extension is validated and the bytes are stored before the row is
// inserted; an invalid extension aborts the whole create and nothing is
// persisted. If the insert itself fails, the stored image is removed again.
func (s *PostService) CreatePost(ctx context.Context, title, content, category string, image *ImageUpload, authorID int64) (*data.Post, error) {
	if title == "" || content == "" {
		return nil, ErrMissingFields
	}
	if !data.ValidCategory(category) {
		return nil, ErrInvalidCategory
	}

	var imageRef *string
	if image != nil {
		ref, err := s.media.Store(ctx, image.Reader, image.Filename)
		if err != nil {
			return nil, err
		}
		imageRef = &ref
	}

	post := &data.Post{
		Title:    title,
		Content:  content,
		Category: category,
		ImageRef: imageRef,
		AuthorID: authorID,
	}
	if _, err := s.repo.CreatePost(ctx, post); err != nil {
		if imageRef != nil {
			_ = s.media.Delete(ctx, *imageRef)
		}
		return nil, err
	}
	return post, nil
}

// UpdatePost replaces a post's text fields and category, and applies any
// image change: removeImage clears the reference, a new upload replaces it.
// Superseded media is always deleted once the row update has succeeded.
func (s *PostService) UpdatePost(ctx context.Context, id int64, title, content, category string, removeImage bool, image *ImageUpload) (*data.Post, error) {
	if title == "" || content == "" {
		return nil, ErrMissingFields
	}
	if !data.ValidCategory(category) {
		return nil, ErrInvalidCategory
	}

	post, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldRef := post.ImageRef
	newRef := oldRef
	if removeImage {
		newRef = nil
	}
	if image != nil {
		ref, err := s.media.Store(ctx, image.Reader, image.Filename)
		if err != nil {
			return nil, err
		}
		newRef = &ref
	}

	post.Title = title
	post.Content = content
	post.Category = category
	post.ImageRef = newRef
	if err := s.repo.UpdatePost(ctx, post); err != nil {
		if image != nil && newRef != nil {
			_ = s.media.Delete(ctx, *newRef)
		}
		return nil, err
	}

	// The old image is now unreferenced; best effort removal.
	if oldRef != nil && (newRef == nil || *newRef != *oldRef) {
		_ = s.media.Delete(ctx, *oldRef)
	}
	return post, nil
}

// DeletePost removes a post and its stored image.
func (s *PostService) DeletePost(ctx context.Context, id int64) error {
	post, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePost(ctx, id); err != nil {
		return err
	}
	if post.ImageRef != nil {
		// The row is already gone; a failed file removal only orphans bytes.
		_ = s.media.Delete(ctx, *post.ImageRef)
	}
	return nil
}

// GetPost retrieves a single post ready for display.
func (s *PostService) GetPost(ctx context.Context, id int64) (*data.Post, error) {
	post, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.render(post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListLanding retrieves the newest posts for the public landing page.
func (s *PostService) ListLanding(ctx context.Context) ([]*data.Post, error) {
	posts, err := s.repo.GetRecentPosts(ctx, LandingPostLimit)
	if err != nil {
		return nil, err
	}
	if err := s.renderAll(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListAll retrieves every post, newest first, for the admin dashboard.
func (s *PostService) ListAll(ctx context.Context) ([]*data.Post, error) {
	posts, err := s.repo.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.renderAll(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByCategory retrieves the posts of one category, newest first.
func (s *PostService) ListByCategory(ctx context.Context, category string) ([]*data.Post, error) {
	if !data.ValidCategory(category) {
		return nil, ErrInvalidCategory
	}
	posts, err := s.repo.GetPostsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if err := s.renderAll(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// AboutPost returns the newest AboutMe post, or nil when none exists.
func (s *PostService) AboutPost(ctx context.Context) (*data.Post, error) {
	posts, err := s.repo.GetPostsByCategory(ctx, "AboutMe")
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	if err := s.render(posts[0]); err != nil {
		return nil, err
	}
	return posts[0], nil
}

// CountPosts exposes the post total for the admin dashboard.
func (s *PostService) CountPosts(ctx context.Context) (int64, error) {
	return s.repo.CountPosts(ctx)
}
