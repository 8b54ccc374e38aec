package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-blog-app/internal/auth"
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"

	"github.com/google/uuid"
)

// UserRepository defines the interface for database operations on users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *data.User) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*data.User, error)
	GetUserByEmail(ctx context.Context, email string) (*data.User, error)
	GetUserByID(ctx context.Context, id int64) (*data.User, error)
	UpdateUser(ctx context.Context, user *data.User) error
	CountUsers(ctx context.Context) (int64, error)
}

var (
	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrUsernameTaken is returned when the username is already registered.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrMissingFields is returned when a required form field is empty.
	ErrMissingFields = errors.New("required fields missing")
	// ErrInvalidCredentials deliberately covers both an unknown username and
	// a wrong password, so login failures are non-distinguishing.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AccountService provides registration, login, and provisioning logic.
type AccountService struct {
	repo UserRepository
}

// NewAccountService creates a new AccountService with the given repository.
func NewAccountService(repo UserRepository) *AccountService {
	return &AccountService{repo: repo}
}

// Register creates a new non-admin account. The password must match its
// confirmation, and both username and email must be unused.
func (s *AccountService) Register(ctx context.Context, username, email, password, confirm string) (*data.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, data.ErrNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, data.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &data.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      false,
	}
	if _, err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and returns the matching user. Both failure
// modes (unknown username, wrong password) collapse into ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, username, password string) (*data.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ProvisionAdmin creates or updates the bootstrap admin account from
// configuration. It is idempotent and safe to run on every startup; the
// provisioning is skipped when no admin username is configured.
func (s *AccountService) ProvisionAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if cfg.Username == "" {
		return nil
	}
	if cfg.Password == "" {
		return errors.New("admin password must be set when admin provisioning is configured")
	}

	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user, err := s.repo.GetUserByUsername(ctx, cfg.Username)
	if err != nil {
		if !errors.Is(err, data.ErrNotFound) {
			return err
		}
		_, err = s.repo.CreateUser(ctx, &data.User{
			Username:     cfg.Username,
			Email:        cfg.Email,
			PasswordHash: hash,
			IsAdmin:      true,
		})
		return err
	}

	user.PasswordHash = hash
	user.IsAdmin = true
	if cfg.Email != "" {
		user.Email = cfg.Email
	}
	return s.repo.UpdateUser(ctx, user)
}

// ProvisionSSOUser finds or creates the local account for a verified OIDC
// identity. New accounts get an unusable random password, so the only way in
// remains the identity provider; is_admin is never granted here.
func (s *AccountService) ProvisionSSOUser(ctx context.Context, email, preferredUsername string) (*data.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrMissingFields
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, data.ErrNotFound) {
		return nil, err
	}

	username := strings.TrimSpace(preferredUsername)
	if username == "" {
		username = email
		if at := strings.IndexByte(email, '@'); at > 0 {
			username = email[:at]
		}
	}
	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		// Keep the provisioned name unique without failing the login.
		username = fmt.Sprintf("%s-%s", username, uuid.New().String()[:8])
	} else if !errors.Is(err, data.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(uuid.New().String())
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder password: %w", err)
	}

	user = &data.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      false,
	}
	if _, err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CountUsers exposes the user total for the admin dashboard.
func (s *AccountService) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.CountUsers(ctx)
}
