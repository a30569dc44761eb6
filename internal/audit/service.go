package audit

import (
	"context"
	"encoding/json"
	"fmt"
)

// Outcome values for audit entries.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Service defines audit service operations.
type Service interface {
	// Log creates an audit log entry.
	Log(ctx context.Context, input LogInput) error

	// Query retrieves audit logs with filtering.
	Query(ctx context.Context, params QueryParams) ([]Event, int, error)

	// Export retrieves all matching audit logs for export.
	Export(ctx context.Context, params QueryParams) ([]Event, error)

	// GetEvent retrieves a single audit event.
	GetEvent(ctx context.Context, id string) (Event, error)
}

type service struct {
	store Store
}

// NewService creates a new audit service.
func NewService(store Store) Service {
	return &service{store: store}
}

func (s *service) Log(ctx context.Context, input LogInput) error {
	if input.Action == "" {
		return fmt.Errorf("action is required")
	}
	if input.Resource == "" {
		return fmt.Errorf("resource is required")
	}
	if input.Outcome == "" {
		input.Outcome = OutcomeSuccess
	}

	var details json.RawMessage
	if input.Details != nil {
		b, err := json.Marshal(input.Details)
		if err != nil {
			return fmt.Errorf("failed to serialize details: %w", err)
		}
		details = b
	}

	e := Event{
		ActorID:      input.ActorID,
		Action:       input.Action,
		ResourceType: input.Resource,
		ResourceID:   input.ResourceID,
		Details:      details,
		IPAddress:    input.IPAddress,
		Outcome:      input.Outcome,
	}

	_, err := s.store.Log(ctx, e)
	return err
}

func (s *service) Query(ctx context.Context, params QueryParams) ([]Event, int, error) {
	if params.Limit == 0 {
		params.Limit = 100
	}
	if params.Limit > 1000 {
		params.Limit = 1000
	}
	return s.store.Query(ctx, params)
}

func (s *service) Export(ctx context.Context, params QueryParams) ([]Event, error) {
	params.Limit = 10000
	params.Offset = 0
	events, _, err := s.store.Query(ctx, params)
	return events, err
}

func (s *service) GetEvent(ctx context.Context, id string) (Event, error) {
	return s.store.GetEvent(ctx, id)
}
