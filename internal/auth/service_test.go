package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

type fakeStore struct {
	users  map[string]User
	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]User{}}
}

func (s *fakeStore) Create(ctx context.Context, u User) (string, error) {
	s.nextID++
	u.ID = fmt.Sprintf("user%d", s.nextID)
	s.users[u.ID] = u
	return u.ID, nil
}

func (s *fakeStore) GetByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, sql.ErrNoRows
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := s.users[id]
	if !ok {
		return User{}, sql.ErrNoRows
	}
	return u, nil
}

func newTestService(t *testing.T) (Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc, err := NewService(store, "staffhub-test")
	if err != nil {
		t.Fatalf("failed to create auth service: %v", err)
	}
	return svc, store
}

func TestCreateUserAndLoginRoundtrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "hr@example.com",
		Password: "correct-horse-battery",
		Role:     "hr",
	})
	if err != nil {
		t.Fatalf("create user error: %v", err)
	}
	if !u.Active {
		t.Error("new user must be active")
	}
	if u.PasswordHash == "correct-horse-battery" {
		t.Error("password must be stored hashed")
	}

	signed, err := svc.Login(ctx, "hr@example.com", "correct-horse-battery")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, svc.Keyfunc(),
		jwt.WithValidMethods([]string{"RS256"}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if claims["sub"] != u.ID {
		t.Errorf("expected sub %q, got %v", u.ID, claims["sub"])
	}
	if claims["role"] != "hr" {
		t.Errorf("expected role hr, got %v", claims["role"])
	}
	if claims["iss"] != "staffhub-test" {
		t.Errorf("expected issuer staffhub-test, got %v", claims["iss"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, CreateUserInput{
		Email: "a@example.com", Password: "correct-horse-battery", Role: "employee",
	}); err != nil {
		t.Fatalf("create user error: %v", err)
	}

	if _, err := svc.Login(ctx, "a@example.com", "wrong-password-here"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownAccount(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Login(context.Background(), "nobody@example.com", "whatever-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{
		Email: "gone@example.com", Password: "correct-horse-battery", Role: "employee",
	})
	if err != nil {
		t.Fatalf("create user error: %v", err)
	}
	u.Active = false
	store.users[u.ID] = u

	if _, err := svc.Login(ctx, "gone@example.com", "correct-horse-battery"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateUserInput
	}{
		{"unknown role", CreateUserInput{Email: "a@example.com", Password: "correct-horse-battery", Role: "superadmin"}},
		{"short password", CreateUserInput{Email: "a@example.com", Password: "short", Role: "employee"}},
		{"bad email", CreateUserInput{Email: "not-an-email", Password: "correct-horse-battery", Role: "employee"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateUser(ctx, tc.input); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestJWKSExposesSigningKey(t *testing.T) {
	svc, _ := newTestService(t)

	set := svc.JWKS()
	if len(set.Keys) != 1 {
		t.Fatalf("expected one key, got %d", len(set.Keys))
	}
	key := set.Keys[0]
	if key.KeyID != "staffhub-signing-key" || key.Algorithm != "RS256" || key.Use != "sig" {
		t.Errorf("unexpected key metadata %+v", key)
	}
	if !key.Valid() {
		t.Error("published key failed validation")
	}
}
