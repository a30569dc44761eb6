package audit

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
)

type fakeStore struct {
	events     []Event
	lastParams QueryParams
}

func (s *fakeStore) Log(ctx context.Context, e Event) (string, error) {
	e.ID = fmt.Sprintf("ev%d", len(s.events)+1)
	s.events = append(s.events, e)
	return e.ID, nil
}

func (s *fakeStore) Query(ctx context.Context, params QueryParams) ([]Event, int, error) {
	s.lastParams = params
	return s.events, len(s.events), nil
}

func (s *fakeStore) GetEvent(ctx context.Context, id string) (Event, error) {
	for _, e := range s.events {
		if e.ID == id {
			return e, nil
		}
	}
	return Event{}, sql.ErrNoRows
}

func TestLogRequiresActionAndResource(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)
	ctx := context.Background()

	if err := svc.Log(ctx, LogInput{Resource: "employee"}); err == nil {
		t.Error("expected an error for missing action")
	}
	if err := svc.Log(ctx, LogInput{Action: "employee.create"}); err == nil {
		t.Error("expected an error for missing resource")
	}
	if len(store.events) != 0 {
		t.Errorf("invalid entries must not be stored, got %d", len(store.events))
	}
}

func TestLogDefaultsOutcomeAndSerializesDetails(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	err := svc.Log(context.Background(), LogInput{
		Action:   "employee.create",
		Resource: "employee",
		Details:  map[string]string{"department": "Engineering"},
	})
	if err != nil {
		t.Fatalf("log error: %v", err)
	}
	if len(store.events) != 1 {
		t.Fatalf("expected one event, got %d", len(store.events))
	}
	e := store.events[0]
	if e.Outcome != OutcomeSuccess {
		t.Errorf("expected default outcome %q, got %q", OutcomeSuccess, e.Outcome)
	}
	if string(e.Details) != `{"department":"Engineering"}` {
		t.Errorf("unexpected details %s", e.Details)
	}
}

func TestQueryLimitDefaultsAndCap(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)
	ctx := context.Background()

	if _, _, err := svc.Query(ctx, QueryParams{}); err != nil {
		t.Fatalf("query error: %v", err)
	}
	if store.lastParams.Limit != 100 {
		t.Errorf("expected default limit 100, got %d", store.lastParams.Limit)
	}

	if _, _, err := svc.Query(ctx, QueryParams{Limit: 5000}); err != nil {
		t.Fatalf("query error: %v", err)
	}
	if store.lastParams.Limit != 1000 {
		t.Errorf("expected limit capped at 1000, got %d", store.lastParams.Limit)
	}
}

func TestExportIgnoresPagination(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	if _, err := svc.Export(context.Background(), QueryParams{Limit: 7, Offset: 42}); err != nil {
		t.Fatalf("export error: %v", err)
	}
	if store.lastParams.Limit != 10000 || store.lastParams.Offset != 0 {
		t.Errorf("export must override pagination, got limit=%d offset=%d",
			store.lastParams.Limit, store.lastParams.Offset)
	}
}
