package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	jose "gopkg.in/go-jose/go-jose.v2"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
)

const signingKeyID = "staffhub-signing-key"

// ErrInvalidCredentials is returned when login fails. Deliberately the same
// for unknown accounts and wrong passwords.
var ErrInvalidCredentials = &Error{"invalid_credentials", "invalid email or password"}

// Error represents a service-specific error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// CreateUserInput holds input for provisioning a login account.
type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=12"`
	Role     string `json:"role" validate:"required,roletoken"`
}

// Service defines the interface for the auth service.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
	CreateUser(ctx context.Context, input CreateUserInput) (User, error)
	Keyfunc() jwt.Keyfunc
	JWKS() jose.JSONWebKeySet
}

type authService struct {
	store      Store
	privateKey *rsa.PrivateKey
	issuer     string
	tokenTTL   time.Duration
	validate   *validator.Validate
}

// NewService creates a new auth service. A fresh signing key is generated on
// startup; tokens do not outlive the process.
func NewService(store Store, issuer string) (Service, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.RegisterValidation("roletoken", func(fl validator.FieldLevel) bool {
		return accessfilter.Role(fl.Field().String()).Known()
	}); err != nil {
		return nil, err
	}

	return &authService{
		store:      store,
		privateKey: privateKey,
		issuer:     issuer,
		tokenTTL:   time.Hour,
		validate:   validate,
	}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if !u.Active {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"role": u.Role,
		"iss":  s.issuer,
		"exp":  now.Add(s.tokenTTL).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = signingKeyID

	signedToken, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signedToken, nil
}

func (s *authService) CreateUser(ctx context.Context, input CreateUserInput) (User, error) {
	if err := s.validate.Struct(input); err != nil {
		return User{}, fmt.Errorf("invalid user input: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u := User{
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         input.Role,
		Active:       true,
	}
	id, err := s.store.Create(ctx, u)
	if err != nil {
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return s.store.GetByID(ctx, id)
}

// Keyfunc returns the verification key lookup for the JWT middleware.
func (s *authService) Keyfunc() jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return &s.privateKey.PublicKey, nil
	}
}

// JWKS returns the JSON Web Key Set for the signing key.
func (s *authService) JWKS() jose.JSONWebKeySet {
	return jose.JSONWebKeySet{
		Keys: []jose.JSONWebKey{
			{
				Key:       &s.privateKey.PublicKey,
				KeyID:     signingKeyID,
				Algorithm: "RS256",
				Use:       "sig",
			},
		},
	}
}
