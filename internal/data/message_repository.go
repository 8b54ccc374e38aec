package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLMessageRepository is a concrete implementation of the MessageRepository interface using sqlx.
type SQLMessageRepository struct {
	db *sqlx.DB
}

// NewSQLMessageRepository creates a new SQLMessageRepository.
func NewSQLMessageRepository(db *sqlx.DB) *SQLMessageRepository {
	return &SQLMessageRepository{db: db}
}

// CreateMessage inserts a new contact message and returns its generated ID.
// New messages always start unread.
func (r *SQLMessageRepository) CreateMessage(ctx context.Context, msg *Message) (int64, error) {
	msg.IsRead = false
	query := `INSERT INTO messages (name, email, body, is_read) VALUES (:name, :email, :body, :is_read)`
	res, err := r.db.NamedExecContext(ctx, query, msg)
	if err != nil {
		return 0, fmt.Errorf("failed to execute create message query: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted message id: %w", err)
	}
	msg.ID = id
	return id, nil
}

// GetMessageByID retrieves a single message by its ID.
func (r *SQLMessageRepository) GetMessageByID(ctx context.Context, id int64) (*Message, error) {
	var msg Message
	query := `SELECT id, name, email, body, is_read, created_at FROM messages WHERE id = ?`
	if err := r.db.GetContext(ctx, &msg, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message by id: %w", err)
	}
	return &msg, nil
}

// GetAllMessages retrieves all messages, newest first.
func (r *SQLMessageRepository) GetAllMessages(ctx context.Context) ([]*Message, error) {
	var msgs []*Message
	query := `SELECT id, name, email, body, is_read, created_at FROM messages ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &msgs, query); err != nil {
		return nil, fmt.Errorf("failed to get all messages: %w", err)
	}
	return msgs, nil
}

// SetRead updates the read flag of a single message.
func (r *SQLMessageRepository) SetRead(ctx context.Context, id int64, read bool) error {
	query := `UPDATE messages SET is_read = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, read, id)
	if err != nil {
		return fmt.Errorf("failed to set message read flag: %w", err)
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

// MarkAllRead sets the read flag on every message.
func (r *SQLMessageRepository) MarkAllRead(ctx context.Context) error {
	query := `UPDATE messages SET is_read = ? WHERE is_read = ?`
	if _, err := r.db.ExecContext(ctx, query, true, false); err != nil {
		return fmt.Errorf("failed to mark all messages read: %w", err)
	}
	return nil
}

// DeleteMessage removes a message from the database by its ID.
func (r *SQLMessageRepository) DeleteMessage(ctx context.Context, id int64) error {
	query := `DELETE FROM messages WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
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

// CountMessages returns the total number of messages.
func (r *SQLMessageRepository) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM messages`
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// CountUnread returns the number of messages still unread.
func (r *SQLMessageRepository) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM messages WHERE is_read = ?`
	if err := r.db.GetContext(ctx, &count, query, false); err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
