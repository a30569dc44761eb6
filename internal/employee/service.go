package employee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
)

// ErrNotFound is returned when an employee does not exist or is outside the
// caller's access scope. The two are deliberately indistinguishable so reads
// do not leak record existence.
var ErrNotFound = errors.New("employee not found")

// ErrForbidden is returned when the caller's decision does not permit a
// mutation.
var ErrForbidden = errors.New("access denied")

// CreateInput holds input for creating an employee record.
type CreateInput struct {
	UserID             string  `json:"user_id" binding:"required"`
	FirstName          string  `json:"first_name" binding:"required"`
	LastName           string  `json:"last_name" binding:"required"`
	Email              string  `json:"email" binding:"required,email"`
	Department         string  `json:"department"`
	Position           string  `json:"position"`
	ReportingManagerID *string `json:"reporting_manager_id"`
}

// UpdateInput holds input for updating an employee record. Empty fields keep
// their current value.
type UpdateInput struct {
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Email              string  `json:"email" binding:"omitempty,email"`
	Department         string  `json:"department"`
	Position           string  `json:"position"`
	ReportingManagerID *string `json:"reporting_manager_id"`
}

// Service defines employee operations. Every read takes the caller's access
// decision; a denied list is an empty result, a denied single-record read is
// ErrNotFound.
type Service interface {
	List(ctx context.Context, decision *accessfilter.FilterDecision) ([]Employee, error)
	Get(ctx context.Context, decision *accessfilter.FilterDecision, id string) (Employee, error)
	GetSelf(ctx context.Context, decision *accessfilter.FilterDecision) (Employee, error)
	Create(ctx context.Context, decision *accessfilter.FilterDecision, input CreateInput) (Employee, error)
	Update(ctx context.Context, decision *accessfilter.FilterDecision, id string, input UpdateInput) (Employee, error)
	Delete(ctx context.Context, decision *accessfilter.FilterDecision, id string) error
}

type service struct {
	store Store
}

// NewService creates a new employee service.
func NewService(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, decision *accessfilter.FilterDecision) ([]Employee, error) {
	if !decision.HasAccess() {
		return []Employee{}, nil
	}
	return s.store.List(ctx, accessfilter.BuildPredicate(decision, "id"))
}

func (s *service) Get(ctx context.Context, decision *accessfilter.FilterDecision, id string) (Employee, error) {
	if !decision.CanAccessEmployee(id) {
		return Employee{}, ErrNotFound
	}
	e, err := s.store.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (s *service) GetSelf(ctx context.Context, decision *accessfilter.FilterDecision) (Employee, error) {
	id := decision.CurrentEmployeeID()
	if id == "" {
		return Employee{}, ErrNotFound
	}
	return s.Get(ctx, decision, id)
}

func (s *service) Create(ctx context.Context, decision *accessfilter.FilterDecision, input CreateInput) (Employee, error) {
	if !decision.Unrestricted() {
		return Employee{}, ErrForbidden
	}

	e := Employee{
		UserID:             input.UserID,
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		Email:              input.Email,
		Department:         input.Department,
		Position:           input.Position,
		ReportingManagerID: input.ReportingManagerID,
	}
	id, err := s.store.Create(ctx, e)
	if err != nil {
		return Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return s.store.Get(ctx, id)
}

func (s *service) Update(ctx context.Context, decision *accessfilter.FilterDecision, id string, input UpdateInput) (Employee, error) {
	if !decision.Unrestricted() {
		return Employee{}, ErrForbidden
	}

	e, err := s.store.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}

	if input.FirstName != "" {
		e.FirstName = input.FirstName
	}
	if input.LastName != "" {
		e.LastName = input.LastName
	}
	if input.Email != "" {
		e.Email = input.Email
	}
	if input.Department != "" {
		e.Department = input.Department
	}
	if input.Position != "" {
		e.Position = input.Position
	}
	if input.ReportingManagerID != nil {
		e.ReportingManagerID = input.ReportingManagerID
	}

	if err := s.store.Update(ctx, id, e); err != nil {
		return Employee{}, fmt.Errorf("failed to update employee: %w", err)
	}
	return s.store.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, decision *accessfilter.FilterDecision, id string) error {
	if !decision.Unrestricted() {
		return ErrForbidden
	}
	if _, err := s.store.Get(ctx, id); errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
