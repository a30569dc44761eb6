package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// User is a login account. Employees link to it through their user_id.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Store defines user storage operations.
type Store interface {
	Create(ctx context.Context, u User) (string, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}

type store struct {
	db *sqlx.DB
}

// NewStore creates a new user store.
func NewStore(db *sqlx.DB) Store {
	return &store{db: db}
}

func (s *store) Create(ctx context.Context, u User) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, role, active) VALUES ($1, $2, $3, $4, $5)`,
		id, u.Email, u.PasswordHash, u.Role, u.Active)
	return id, err
}

func (s *store) GetByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = $1`, email)
	return u, err
}

func (s *store) GetByID(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	return u, err
}
