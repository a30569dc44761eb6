package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
)

// Request statuses. Transitions are pending -> approved or pending -> rejected.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Request is a leave request filed by an employee.
type Request struct {
	ID         string    `json:"id" db:"id"`
	EmployeeID string    `json:"employee_id" db:"employee_id"`
	Type       string    `json:"type" db:"type"`
	StartDate  time.Time `json:"start_date" db:"start_date"`
	EndDate    time.Time `json:"end_date" db:"end_date"`
	Status     string    `json:"status" db:"status"`
	Reason     string    `json:"reason,omitempty" db:"reason"`
	DecidedBy  *string   `json:"decided_by,omitempty" db:"decided_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Store defines leave request storage operations.
type Store interface {
	Create(ctx context.Context, r Request) (string, error)
	Get(ctx context.Context, id string) (Request, error)
	List(ctx context.Context, pred *accessfilter.Predicate) ([]Request, error)
	UpdateStatus(ctx context.Context, id, status string, decidedBy *string) error
}

type store struct {
	db *sqlx.DB
}

// NewStore creates a new leave store.
func NewStore(db *sqlx.DB) Store {
	return &store{db: db}
}

func (s *store) Create(ctx context.Context, r Request) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leave_requests (id, employee_id, type, start_date, end_date, status, reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, r.EmployeeID, r.Type, r.StartDate, r.EndDate, r.Status, r.Reason)
	return id, err
}

func (s *store) Get(ctx context.Context, id string) (Request, error) {
	var r Request
	err := s.db.GetContext(ctx, &r, `SELECT * FROM leave_requests WHERE id = $1`, id)
	return r, err
}

func (s *store) List(ctx context.Context, pred *accessfilter.Predicate) ([]Request, error) {
	query := `SELECT * FROM leave_requests`
	var args []interface{}
	if pred != nil {
		query += ` WHERE ` + pred.Clause
		args = pred.Args
	}
	query += ` ORDER BY created_at DESC`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	requests := []Request{}
	if err := s.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *store) UpdateStatus(ctx context.Context, id, status string, decidedBy *string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE leave_requests SET status = $1, decided_by = $2, updated_at = NOW() WHERE id = $3`,
		status, decidedBy, id)
	return err
}
