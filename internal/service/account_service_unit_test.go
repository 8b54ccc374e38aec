//go:build unit

package service

import (
	"context"
	"errors"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"
	"testing"
)

// mockUserRepository is a mock implementation of the UserRepository interface.
type mockUserRepository struct {
	usersByName  map[string]*data.User
	usersByEmail map[string]*data.User
	errToReturn  error

	createUserCalled bool
	updateUserCalled bool
	lastUserPassed   *data.User
}

var _ UserRepository = (*mockUserRepository)(nil)

func newMockUserRepository(users ...*data.User) *mockUserRepository {
	m := &mockUserRepository{
		usersByName:  make(map[string]*data.User),
		usersByEmail: make(map[string]*data.User),
	}
	for _, u := range users {
		m.usersByName[u.Username] = u
		m.usersByEmail[u.Email] = u
	}
	return m
}

func (m *mockUserRepository) CreateUser(ctx context.Context, user *data.User) (int64, error) {
	m.createUserCalled = true
	m.lastUserPassed = user
	if m.errToReturn != nil {
		return 0, m.errToReturn
	}
	user.ID = int64(len(m.usersByName) + 1)
	m.usersByName[user.Username] = user
	m.usersByEmail[user.Email] = user
	return user.ID, nil
}

func (m *mockUserRepository) GetUserByUsername(ctx context.Context, username string) (*data.User, error) {
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	if u, ok := m.usersByName[username]; ok {
		return u, nil
	}
	return nil, data.ErrNotFound
}

func (m *mockUserRepository) GetUserByEmail(ctx context.Context, email string) (*data.User, error) {
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	if u, ok := m.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, data.ErrNotFound
}

func (m *mockUserRepository) GetUserByID(ctx context.Context, id int64) (*data.User, error) {
	for _, u := range m.usersByName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, data.ErrNotFound
}

func (m *mockUserRepository) UpdateUser(ctx context.Context, user *data.User) error {
	m.updateUserCalled = true
	m.lastUserPassed = user
	return m.errToReturn
}

func (m *mockUserRepository) CountUsers(ctx context.Context) (int64, error) {
	return int64(len(m.usersByName)), nil
}

func TestAccountService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := newMockUserRepository()
		svc := NewAccountService(repo)

		user, err := svc.Register(ctx, "alice", "alice@example.com", "secret123", "secret123")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.IsAdmin {
			t.Error("expected a freshly registered user to be non-admin")
		}
		if user.PasswordHash == "secret123" || user.PasswordHash == "" {
			t.Error("expected the password to be stored hashed")
		}
		if !repo.createUserCalled {
			t.Error("expected CreateUser to be called")
		}
	})

	t.Run("password mismatch", func(t *testing.T) {
		repo := newMockUserRepository()
		svc := NewAccountService(repo)

		_, err := svc.Register(ctx, "alice", "alice@example.com", "secret123", "different")
		if !errors.Is(err, ErrPasswordMismatch) {
			t.Fatalf("expected ErrPasswordMismatch, got %v", err)
		}
		if repo.createUserCalled {
			t.Error("expected no user to be created")
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo := newMockUserRepository(&data.User{ID: 1, Username: "alice", Email: "old@example.com"})
		svc := NewAccountService(repo)

		_, err := svc.Register(ctx, "alice", "new@example.com", "secret123", "secret123")
		if !errors.Is(err, ErrUsernameTaken) {
			t.Fatalf("expected ErrUsernameTaken, got %v", err)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := newMockUserRepository(&data.User{ID: 1, Username: "alice", Email: "alice@example.com"})
		svc := NewAccountService(repo)

		_, err := svc.Register(ctx, "bob", "alice@example.com", "secret123", "secret123")
		if !errors.Is(err, ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		repo := newMockUserRepository()
		svc := NewAccountService(repo)

		_, err := svc.Register(ctx, "  ", "alice@example.com", "secret123", "secret123")
		if !errors.Is(err, ErrMissingFields) {
			t.Fatalf("expected ErrMissingFields, got %v", err)
		}
	})
}

func TestAccountService_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}
	alice := &data.User{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: hash}

	t.Run("success", func(t *testing.T) {
		svc := NewAccountService(newMockUserRepository(alice))

		user, err := svc.Login(ctx, "alice", "correct horse")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if user.ID != alice.ID {
			t.Errorf("expected user ID %d, got %d", alice.ID, user.ID)
		}
	})

	// Unknown usernames and wrong passwords must be indistinguishable.
	t.Run("unknown username", func(t *testing.T) {
		svc := NewAccountService(newMockUserRepository(alice))

		_, err := svc.Login(ctx, "mallory", "correct horse")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := NewAccountService(newMockUserRepository(alice))

		_, err := svc.Login(ctx, "alice", "wrong horse")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAccountService_ProvisionAdmin(t *testing.T) {
	ctx := context.Background()
	cfg := config.AdminConfig{Username: "admin", Email: "admin@example.com", Password: "bootstrap"}

	t.Run("creates missing admin", func(t *testing.T) {
		repo := newMockUserRepository()
		svc := NewAccountService(repo)

		if err := svc.ProvisionAdmin(ctx, cfg); err != nil {
			t.Fatalf("ProvisionAdmin failed: %v", err)
		}
		if !repo.createUserCalled {
			t.Fatal("expected CreateUser to be called")
		}
		if !repo.lastUserPassed.IsAdmin {
			t.Error("expected the provisioned account to be an admin")
		}
	})

	t.Run("promotes existing user", func(t *testing.T) {
		repo := newMockUserRepository(&data.User{ID: 1, Username: "admin", Email: "admin@example.com", IsAdmin: false})
		svc := NewAccountService(repo)

		if err := svc.ProvisionAdmin(ctx, cfg); err != nil {
			t.Fatalf("ProvisionAdmin failed: %v", err)
		}
		if repo.createUserCalled {
			t.Error("expected no second account to be created")
		}
		if !repo.updateUserCalled || !repo.lastUserPassed.IsAdmin {
			t.Error("expected the existing account to be promoted to admin")
		}
	})

	t.Run("skipped when unconfigured", func(t *testing.T) {
		repo := newMockUserRepository()
		svc := NewAccountService(repo)

		if err := svc.ProvisionAdmin(ctx, config.AdminConfig{}); err != nil {
			t.Fatalf("ProvisionAdmin failed: %v", err)
		}
		if repo.createUserCalled || repo.updateUserCalled {
			t.Error("expected provisioning to be a no-op")
		}
	})

	t.Run("missing password is an error", func(t *testing.T) {
		svc := NewAccountService(newMockUserRepository())

		if err := svc.ProvisionAdmin(ctx, config.AdminConfig{Username: "admin"}); err == nil {
			t.Fatal("expected an error when the admin password is unset")
		}
	})
}

func TestAccountService_ProvisionSSOUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns existing account by email", func(t *testing.T) {
		existing := &data.User{ID: 7, Username: "alice", Email: "alice@example.com"}
		repo := newMockUserRepository(existing)
		svc := NewAccountService(repo)

		user, err := svc.ProvisionSSOUser(ctx, "alice@example.com", "alice")
		if err != nil {
			t.Fatalf("ProvisionSSOUser failed: %v", err)
		}
		if user.ID != existing.ID {
			t.Errorf("expected existing user %d, got %d", existing.ID, user.ID)
		}
		if repo.createUserCalled {
			t.Error("expected no new account")
		}
	})

	t.Run("creates non-admin account from email", func(t *testing.T) {
		repo := newMockUserRepository()
		svc := NewAccountService(repo)

		user, err := svc.ProvisionSSOUser(ctx, "bob@example.com", "")
		if err != nil {
			t.Fatalf("ProvisionSSOUser failed: %v", err)
		}
		if user.Username != "bob" {
			t.Errorf("expected username 'bob', got %q", user.Username)
		}
		if user.IsAdmin {
			t.Error("SSO provisioning must never grant admin")
		}
	})

	t.Run("deduplicates taken usernames", func(t *testing.T) {
		repo := newMockUserRepository(&data.User{ID: 1, Username: "bob", Email: "other@example.com"})
		svc := NewAccountService(repo)

		user, err := svc.ProvisionSSOUser(ctx, "bob@example.com", "bob")
		if err != nil {
			t.Fatalf("ProvisionSSOUser failed: %v", err)
		}
		if user.Username == "bob" {
			t.Error("expected a deduplicated username")
		}
	})
}
