package session

import (
	"context"
	"net/http"
)

// Manager is an interface that abstracts the session management implementation.
// This allows for easier testing and dependency injection.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	GetString(ctx context.Context, key string) string
	GetInt64(ctx context.Context, key string) int64
	GetBool(ctx context.Context, key string) bool
	PopString(ctx context.Context, key string) string
	RenewToken(ctx context.Context) error
	Destroy(ctx context.Context) error
	Remove(ctx context.Context, key string)
}

// Session keys used across the application.
const (
	KeyUserID    = "user_id"
	KeyUsername  = "username"
	KeyIsAdmin   = "is_admin"
	KeyFlash     = "flash"
	KeyFlashType = "flash_type"
)
