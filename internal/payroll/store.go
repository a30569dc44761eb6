package payroll

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
)

// Payslip is a single pay period statement for an employee.
type Payslip struct {
	ID         string    `json:"id" db:"id"`
	EmployeeID string    `json:"employee_id" db:"employee_id"`
	Period     string    `json:"period" db:"period"` // YYYY-MM
	GrossPay   int64     `json:"gross_pay" db:"gross_pay"`
	NetPay     int64     `json:"net_pay" db:"net_pay"`
	Currency   string    `json:"currency" db:"currency"`
	IssuedAt   time.Time `json:"issued_at" db:"issued_at"`
}

// Store defines payslip storage operations.
type Store interface {
	Create(ctx context.Context, p Payslip) (string, error)
	Get(ctx context.Context, id string) (Payslip, error)
	List(ctx context.Context, pred *accessfilter.Predicate) ([]Payslip, error)
}

type store struct {
	db *sqlx.DB
}

// NewStore creates a new payroll store.
func NewStore(db *sqlx.DB) Store {
	return &store{db: db}
}

func (s *store) Create(ctx context.Context, p Payslip) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payslips (id, employee_id, period, gross_pay, net_pay, currency)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, p.EmployeeID, p.Period, p.GrossPay, p.NetPay, p.Currency)
	return id, err
}

func (s *store) Get(ctx context.Context, id string) (Payslip, error) {
	var p Payslip
	err := s.db.GetContext(ctx, &p, `SELECT * FROM payslips WHERE id = $1`, id)
	return p, err
}

func (s *store) List(ctx context.Context, pred *accessfilter.Predicate) ([]Payslip, error) {
	query := `SELECT * FROM payslips`
	var args []interface{}
	if pred != nil {
		query += ` WHERE ` + pred.Clause
		args = pred.Args
	}
	query += ` ORDER BY period DESC, issued_at DESC`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	payslips := []Payslip{}
	if err := s.db.SelectContext(ctx, &payslips, query, args...); err != nil {
		return nil, err
	}
	return payslips, nil
}
