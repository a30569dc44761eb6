package employee

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
)

// Employee is an employee master record.
type Employee struct {
	ID                 string    `json:"id" db:"id"`
	UserID             string    `json:"user_id" db:"user_id"`
	FirstName          string    `json:"first_name" db:"first_name"`
	LastName           string    `json:"last_name" db:"last_name"`
	Email              string    `json:"email" db:"email"`
	Department         string    `json:"department" db:"department"`
	Position           string    `json:"position" db:"position"`
	ReportingManagerID *string   `json:"reporting_manager_id,omitempty" db:"reporting_manager_id"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// Store defines employee storage operations. It also satisfies
// accessfilter.Directory, so the policy resolver reads the hierarchy from the
// same table the CRUD surface serves.
type Store interface {
	Create(ctx context.Context, e Employee) (string, error)
	Get(ctx context.Context, id string) (Employee, error)
	List(ctx context.Context, pred *accessfilter.Predicate) ([]Employee, error)
	Update(ctx context.Context, id string, e Employee) error
	Delete(ctx context.Context, id string) error

	FindRefByUserID(ctx context.Context, userID string) (*accessfilter.EmployeeRef, error)
	ListRefsByManager(ctx context.Context, employeeID string) ([]accessfilter.EmployeeRef, error)
}

type store struct {
	db *sqlx.DB
}

// NewStore creates a new employee store.
func NewStore(db *sqlx.DB) Store {
	return &store{db: db}
}

func (s *store) Create(ctx context.Context, e Employee) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (id, user_id, first_name, last_name, email, department, position, reporting_manager_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, e.UserID, e.FirstName, e.LastName, e.Email, e.Department, e.Position, e.ReportingManagerID)
	return id, err
}

func (s *store) Get(ctx context.Context, id string) (Employee, error) {
	var e Employee
	err := s.db.GetContext(ctx, &e, `SELECT * FROM employees WHERE id = $1`, id)
	return e, err
}

func (s *store) List(ctx context.Context, pred *accessfilter.Predicate) ([]Employee, error) {
	query := `SELECT * FROM employees`
	var args []interface{}
	if pred != nil {
		query += ` WHERE ` + pred.Clause
		args = pred.Args
	}
	query += ` ORDER BY last_name, first_name`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	employees := []Employee{}
	if err := s.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, err
	}
	return employees, nil
}

func (s *store) Update(ctx context.Context, id string, e Employee) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE employees SET first_name = $1, last_name = $2, email = $3, department = $4,
		 position = $5, reporting_manager_id = $6, updated_at = NOW() WHERE id = $7`,
		e.FirstName, e.LastName, e.Email, e.Department, e.Position, e.ReportingManagerID, id)
	return err
}

func (s *store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	return err
}

func (s *store) FindRefByUserID(ctx context.Context, userID string) (*accessfilter.EmployeeRef, error) {
	var ref accessfilter.EmployeeRef
	err := s.db.GetContext(ctx, &ref,
		`SELECT id, reporting_manager_id FROM employees WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (s *store) ListRefsByManager(ctx context.Context, employeeID string) ([]accessfilter.EmployeeRef, error) {
	refs := []accessfilter.EmployeeRef{}
	err := s.db.SelectContext(ctx, &refs,
		`SELECT id, reporting_manager_id FROM employees WHERE reporting_manager_id = $1`, employeeID)
	return refs, err
}
