package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
)

var (
	// ErrNotFound is returned when a request does not exist or is outside
	// the caller's access scope.
	ErrNotFound = errors.New("leave request not found")

	// ErrForbidden is returned when the caller may not perform the operation.
	ErrForbidden = errors.New("access denied")

	// ErrSelfDecision is returned when a caller tries to approve or reject
	// their own request.
	ErrSelfDecision = errors.New("cannot decide own leave request")

	// ErrNotPending is returned when deciding a request that was already
	// decided.
	ErrNotPending = errors.New("leave request is not pending")
)

// CreateInput holds input for filing a leave request. The employee id is
// never taken from the client; it comes from the caller's access decision.
type CreateInput struct {
	Type      string    `json:"type" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
	Reason    string    `json:"reason"`
}

// Service defines leave request operations.
type Service interface {
	List(ctx context.Context, decision *accessfilter.FilterDecision) ([]Request, error)
	Get(ctx context.Context, decision *accessfilter.FilterDecision, id string) (Request, error)
	Create(ctx context.Context, decision *accessfilter.FilterDecision, input CreateInput) (Request, error)
	Decide(ctx context.Context, decision *accessfilter.FilterDecision, id string, approve bool) (Request, error)
}

type service struct {
	store Store
}

// NewService creates a new leave service.
func NewService(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, decision *accessfilter.FilterDecision) ([]Request, error) {
	if !decision.HasAccess() {
		return []Request{}, nil
	}
	return s.store.List(ctx, accessfilter.BuildPredicate(decision, "employee_id"))
}

func (s *service) Get(ctx context.Context, decision *accessfilter.FilterDecision, id string) (Request, error) {
	r, err := s.store.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, err
	}
	if !decision.CanAccessEmployee(r.EmployeeID) {
		return Request{}, ErrNotFound
	}
	return r, nil
}

func (s *service) Create(ctx context.Context, decision *accessfilter.FilterDecision, input CreateInput) (Request, error) {
	employeeID := decision.CurrentEmployeeID()
	if employeeID == "" {
		return Request{}, ErrForbidden
	}
	if input.EndDate.Before(input.StartDate) {
		return Request{}, fmt.Errorf("end date precedes start date")
	}

	r := Request{
		EmployeeID: employeeID,
		Type:       input.Type,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Status:     StatusPending,
		Reason:     input.Reason,
	}
	id, err := s.store.Create(ctx, r)
	if err != nil {
		return Request{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return s.store.Get(ctx, id)
}

func (s *service) Decide(ctx context.Context, decision *accessfilter.FilterDecision, id string, approve bool) (Request, error) {
	r, err := s.Get(ctx, decision, id)
	if err != nil {
		return Request{}, err
	}

	// Separation of duties: a request is never decided by its own filer.
	if self := decision.CurrentEmployeeID(); self != "" && self == r.EmployeeID {
		return Request{}, ErrSelfDecision
	}
	if r.Status != StatusPending {
		return Request{}, ErrNotPending
	}

	status := StatusRejected
	if approve {
		status = StatusApproved
	}
	var decidedBy *string
	if self := decision.CurrentEmployeeID(); self != "" {
		decidedBy = &self
	}

	if err := s.store.UpdateStatus(ctx, id, status, decidedBy); err != nil {
		return Request{}, fmt.Errorf("failed to update leave request: %w", err)
	}
	return s.store.Get(ctx, id)
}
