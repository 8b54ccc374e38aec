package service

import (
	"context"
	"strings"

	"go-blog-app/internal/data"
)

// MessageRepository defines the interface for database operations on messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *data.Message) (int64, error)
	GetMessageByID(ctx context.Context, id int64) (*data.Message, error)
	GetAllMessages(ctx context.Context) ([]*data.Message, error)
	SetRead(ctx context.Context, id int64, read bool) error
	MarkAllRead(ctx context.Context) error
	DeleteMessage(ctx context.Context, id int64) error
	CountMessages(ctx context.Context) (int64, error)
	CountUnread(ctx context.Context) (int64, error)
}

// UnreadCounterCache is the slice of the cache the service uses for the
// unread aggregate shown on every admin page.
type UnreadCounterCache interface {
	GetUnreadCount() (int64, bool)
	SetUnreadCount(count int64) error
	InvalidateUnreadCount() error
}

// MessageService provides business logic for the contact-message inbox.
type MessageService struct {
	repo  MessageRepository
	cache UnreadCounterCache
}

// NewMessageService creates a new MessageService. The cache may be nil, in
// which case the unread count always hits the store.
func NewMessageService(repo MessageRepository, cache UnreadCounterCache) *MessageService {
	return &MessageService{repo: repo, cache: cache}
}

// Submit records a contact-form message. New messages start unread.
func (s *MessageService) Submit(ctx context.Context, name, email, body string) (*data.Message, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	body = strings.TrimSpace(body)
	if name == "" || email == "" || body == "" {
		return nil, ErrMissingFields
	}

	msg := &data.Message{Name: name, Email: email, Body: body}
	if _, err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.invalidate()
	return msg, nil
}

// List retrieves every message, newest first.
func (s *MessageService) List(ctx context.Context) ([]*data.Message, error) {
	return s.repo.GetAllMessages(ctx)
}

// ToggleRead flips the read flag of one message. Toggling twice restores the
// original value.
func (s *MessageService) ToggleRead(ctx context.Context, id int64) error {
	msg, err := s.repo.GetMessageByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetRead(ctx, id, !msg.IsRead); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// MarkAllRead clears the unread flag on every message.
func (s *MessageService) MarkAllRead(ctx context.Context) error {
	if err := s.repo.MarkAllRead(ctx); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Delete removes one message.
func (s *MessageService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteMessage(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// UnreadCount returns the number of unread messages, computed on demand and
// cached briefly since every admin-rendered page shows it.
func (s *MessageService) UnreadCount(ctx context.Context) (int64, error) {
	if s.cache != nil {
		if count, ok := s.cache.GetUnreadCount(); ok {
			return count, nil
		}
	}
	count, err := s.repo.CountUnread(ctx)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		_ = s.cache.SetUnreadCount(count)
	}
	return count, nil
}

// CountMessages exposes the message total for the admin dashboard.
func (s *MessageService) CountMessages(ctx context.Context) (int64, error) {
	return s.repo.CountMessages(ctx)
}

func (s *MessageService) invalidate() {
	if s.cache != nil {
		_ = s.cache.InvalidateUnreadCount()
	}
}
