package services

import (
	"errors"
	"strings"
	"testing"

	"quickplate_backend/internal/models"
	"quickplate_backend/internal/repositories"
)

type fakeUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User), nextID: 1}
}

func (f *fakeUserRepo) CreateUser(_ repositories.SQLExecutor, user *models.User) (int64, error) {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return 0, repositories.ErrDuplicateKey
		}
	}
	id := f.nextID
	f.nextID++
	cp := *user
	cp.ID = id
	f.users[id] = &cp
	return id, nil
}

func (f *fakeUserRepo) FindUserByEmail(email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == strings.ToLower(email) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) FindUserByID(userID int64) (*models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) GetUsers(filters models.UserFilters) ([]models.User, int, error) {
	var result []models.User
	for _, user := range f.users {
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		if filters.IsActive != nil && user.IsActive != *filters.IsActive {
			continue
		}
		result = append(result, *user)
	}
	return result, len(result), nil
}

func (f *fakeUserRepo) SetUserActive(_ repositories.SQLExecutor, userID int64, isActive bool) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.IsActive = isActive
	return nil
}

func TestRegister(t *testing.T) {
	t.Run("defaults to the customer role and normalises the email", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), newStubDB(t))

		user, err := svc.Register(RegisterRequest{Name: "Asel", Email: " Asel@Example.COM ", Password: "hunter2hunter2"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Role != models.RoleCustomer {
			t.Errorf("role = %q, want customer", user.Role)
		}
		if user.Email != "asel@example.com" {
			t.Errorf("email = %q, want normalised", user.Email)
		}
		if user.PasswordHash == "hunter2hunter2" {
			t.Error("password stored in plaintext")
		}
	})

	t.Run("admin self-registration is blocked", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), newStubDB(t))

		_, err := svc.Register(RegisterRequest{Name: "Eve", Email: "eve@example.com", Password: "hunter2hunter2", Role: models.RoleAdmin})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), newStubDB(t))

		_, err := svc.Register(RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "hunter2hunter2", Role: "superuser"})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo, newStubDB(t))

		req := RegisterRequest{Name: "Asel", Email: "asel@example.com", Password: "hunter2hunter2"}
		if _, err := svc.Register(req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := svc.Register(req); !errors.Is(err, ErrEmailExists) {
			t.Errorf("err = %v, want ErrEmailExists", err)
		}
	})
}

func TestLogin(t *testing.T) {
	register := func(t *testing.T) (AuthService, *fakeUserRepo) {
		t.Helper()
		repo := newFakeUserRepo()
		svc := NewAuthService(repo, newStubDB(t))
		if _, err := svc.Register(RegisterRequest{Name: "Asel", Email: "asel@example.com", Password: "hunter2hunter2"}); err != nil {
			t.Fatalf("registering fixture user: %v", err)
		}
		return svc, repo
	}

	t.Run("valid credentials issue both tokens", func(t *testing.T) {
		svc, _ := register(t)

		resp, err := svc.Login(LoginRequest{Email: "asel@example.com", Password: "hunter2hunter2"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.AccessToken == "" || resp.RefreshToken == "" {
			t.Error("expected both access and refresh tokens")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := register(t)

		if _, err := svc.Login(LoginRequest{Email: "asel@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, _ := register(t)

		if _, err := svc.Login(LoginRequest{Email: "ghost@example.com", Password: "hunter2hunter2"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("disabled account", func(t *testing.T) {
		svc, repo := register(t)
		repo.users[1].IsActive = false

		if _, err := svc.Login(LoginRequest{Email: "asel@example.com", Password: "hunter2hunter2"}); !errors.Is(err, ErrAccountDisabled) {
			t.Errorf("err = %v, want ErrAccountDisabled", err)
		}
	})
}

func TestRefreshTokens(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, newStubDB(t))
	if _, err := svc.Register(RegisterRequest{Name: "Asel", Email: "asel@example.com", Password: "hunter2hunter2"}); err != nil {
		t.Fatalf("registering fixture user: %v", err)
	}
	login, err := svc.Login(LoginRequest{Email: "asel@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("logging in: %v", err)
	}

	t.Run("valid refresh token rotates the pair", func(t *testing.T) {
		resp, err := svc.RefreshTokens(login.RefreshToken)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.AccessToken == "" {
			t.Error("expected a fresh access token")
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := svc.RefreshTokens("not-a-jwt"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("disabled account cannot refresh", func(t *testing.T) {
		repo.users[1].IsActive = false
		defer func() { repo.users[1].IsActive = true }()

		if _, err := svc.RefreshTokens(login.RefreshToken); !errors.Is(err, ErrAccountDisabled) {
			t.Errorf("err = %v, want ErrAccountDisabled", err)
		}
	})
}
