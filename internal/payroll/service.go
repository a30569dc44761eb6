package payroll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
)

var (
	// ErrNotFound is returned when a payslip does not exist or is outside
	// the caller's access scope.
	ErrNotFound = errors.New("payslip not found")

	// ErrForbidden is returned when the caller may not perform the operation.
	ErrForbidden = errors.New("access denied")
)

// IssueInput holds input for issuing a payslip.
type IssueInput struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Period     string `json:"period" binding:"required"`
	GrossPay   int64  `json:"gross_pay" binding:"required,gt=0"`
	NetPay     int64  `json:"net_pay" binding:"required,gt=0"`
	Currency   string `json:"currency" binding:"required,len=3"`
}

// Service defines payroll operations. Reads run under the caller's access
// decision; the resolver already excludes managers from financial data, so
// this layer only has to honor the decision it is handed.
type Service interface {
	List(ctx context.Context, decision *accessfilter.FilterDecision) ([]Payslip, error)
	Get(ctx context.Context, decision *accessfilter.FilterDecision, id string) (Payslip, error)
	Issue(ctx context.Context, decision *accessfilter.FilterDecision, input IssueInput) (Payslip, error)
}

type service struct {
	store Store
}

// NewService creates a new payroll service.
func NewService(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, decision *accessfilter.FilterDecision) ([]Payslip, error) {
	if !decision.HasAccess() {
		return []Payslip{}, nil
	}
	return s.store.List(ctx, accessfilter.BuildPredicate(decision, "employee_id"))
}

func (s *service) Get(ctx context.Context, decision *accessfilter.FilterDecision, id string) (Payslip, error) {
	p, err := s.store.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Payslip{}, ErrNotFound
	}
	if err != nil {
		return Payslip{}, err
	}
	if !decision.CanAccessEmployee(p.EmployeeID) {
		return Payslip{}, ErrNotFound
	}
	return p, nil
}

func (s *service) Issue(ctx context.Context, decision *accessfilter.FilterDecision, input IssueInput) (Payslip, error) {
	if !decision.Unrestricted() {
		return Payslip{}, ErrForbidden
	}
	if input.NetPay > input.GrossPay {
		return Payslip{}, fmt.Errorf("net pay exceeds gross pay")
	}

	id, err := s.store.Create(ctx, Payslip{
		EmployeeID: input.EmployeeID,
		Period:     input.Period,
		GrossPay:   input.GrossPay,
		NetPay:     input.NetPay,
		Currency:   input.Currency,
	})
	if err != nil {
		return Payslip{}, fmt.Errorf("failed to issue payslip: %w", err)
	}
	return s.store.Get(ctx, id)
}
