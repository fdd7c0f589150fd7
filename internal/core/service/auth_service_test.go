package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
)

type stubAuthRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	findErr   error
	createErr error
	creates   int
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = "id-" + user.Username
	}
	r.users[copy.Username] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubAuthRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// stubHasher prefixes instead of hashing so tests can inspect the verifier.
type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (stubHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// stubCodec encodes the subject in clear text: "tok:<subject>".
type stubCodec struct {
	issuedTTL time.Duration
}

func (c *stubCodec) Issue(subject string, ttl time.Duration) (string, error) {
	c.issuedTTL = ttl
	return "tok:" + subject, nil
}

func (c *stubCodec) Decode(token string) (string, error) {
	sub, ok := strings.CutPrefix(token, "tok:")
	if !ok || sub == "" {
		return "", domain.ErrInvalidToken
	}
	return sub, nil
}

func (c *stubCodec) DefaultTTL() time.Duration { return 30 * time.Minute }

func newTestAuthService() (*AuthService, *stubAuthRepo, *stubCodec) {
	repo := newStubAuthRepo()
	codec := &stubCodec{}
	return NewAuthService(repo, stubHasher{}, codec, zerolog.Nop()), repo, codec
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	user, err := svc.Register(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Username != "alice" || user.ID == "" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if repo.users["alice"].PasswordHash == "secret" {
		t.Fatalf("expected password to be hashed")
	}
	if user.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt must be set")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	if _, err := svc.Register(context.Background(), "", "pass"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty password, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("store must not be written, got %d creates", repo.creates)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	if _, err := svc.Register(context.Background(), "bob", "pass"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "pass2"); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(repo.users))
	}
	if repo.users["bob"].PasswordHash != "hashed:pass" {
		t.Fatalf("original record was modified")
	}
}

// A concurrent registration can pass the pre-check and still lose at the
// store; the store's error must come through unchanged.
func TestAuthService_Register_LostRace(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	repo.createErr = domain.ErrUserExists

	if _, err := svc.Register(context.Background(), "carol", "pass"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	repo.findErr = errors.New("connection refused")

	_, err := svc.Register(context.Background(), "dave", "pass")
	if err == nil || errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, codec := newTestAuthService()

	if _, err := svc.Register(context.Background(), "carol", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token != "tok:carol" {
		t.Fatalf("unexpected token %q", token)
	}
	if codec.issuedTTL != 30*time.Minute {
		t.Fatalf("expected default TTL, got %s", codec.issuedTTL)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	_, _ = svc.Register(context.Background(), "dave", "goodpass")
	before := *repo.users["dave"]

	if _, err := svc.Login(context.Background(), "dave", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if *repo.users["dave"] != before || len(repo.users) != 1 {
		t.Fatalf("store state changed after failed login")
	}
}

func TestAuthService_Login_UnknownUserLooksLikeBadPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()

	if _, err := svc.Login(context.Background(), "ghost", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	repo.findErr = errors.New("timeout")

	_, err := svc.Login(context.Background(), "eve", "pass")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestAuthService_Resolve(t *testing.T) {
	svc, _, _ := newTestAuthService()
	_, _ = svc.Register(context.Background(), "alice", "secret")

	user, err := svc.Resolve(context.Background(), "tok:alice")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Resolve(context.Background(), "garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for undecodable token, got %v", err)
	}
	if _, err := svc.Resolve(context.Background(), "tok:nobody"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unknown subject, got %v", err)
	}
}

func TestAuthService_Resolve_StoreFailure(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	repo.findErr = errors.New("boom")

	_, err := svc.Resolve(context.Background(), "tok:alice")
	if err == nil || errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected storage error to propagate, got %v", err)
	}
}

func TestAuthenticator_Authenticate(t *testing.T) {
	repo := newStubAuthRepo()
	repo.users["frank"] = &domain.User{ID: "1", Username: "frank", PasswordHash: "hashed:pw"}
	a := NewAuthenticator(repo, stubHasher{}, zerolog.Nop())

	tests := []struct {
		name     string
		username string
		password string
		wantUser bool
	}{
		{"match", "frank", "pw", true},
		{"wrong password", "frank", "nope", false},
		{"unknown user", "ghost", "pw", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := a.Authenticate(context.Background(), tt.username, tt.password)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (user != nil) != tt.wantUser {
				t.Fatalf("wantUser=%v, got %+v", tt.wantUser, user)
			}
		})
	}
}
