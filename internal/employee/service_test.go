package employee

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
)

type fakeStore struct {
	employees map[string]Employee
	lastPred  *accessfilter.Predicate
	deleted   []string
}

func newFakeStore(employees ...Employee) *fakeStore {
	s := &fakeStore{employees: map[string]Employee{}}
	for _, e := range employees {
		s.employees[e.ID] = e
	}
	return s
}

func (s *fakeStore) Create(ctx context.Context, e Employee) (string, error) {
	e.ID = "generated-id"
	s.employees[e.ID] = e
	return e.ID, nil
}

func (s *fakeStore) Get(ctx context.Context, id string) (Employee, error) {
	e, ok := s.employees[id]
	if !ok {
		return Employee{}, sql.ErrNoRows
	}
	return e, nil
}

func (s *fakeStore) List(ctx context.Context, pred *accessfilter.Predicate) ([]Employee, error) {
	s.lastPred = pred
	out := []Employee{}
	for _, e := range s.employees {
		out = append(out, e)
	}
	return out, nil
}

func (s *fakeStore) Update(ctx context.Context, id string, e Employee) error {
	e.ID = id
	s.employees[id] = e
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	delete(s.employees, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeStore) FindRefByUserID(ctx context.Context, userID string) (*accessfilter.EmployeeRef, error) {
	for _, e := range s.employees {
		if e.UserID == userID {
			return &accessfilter.EmployeeRef{EmployeeID: e.ID, ReportingManagerID: e.ReportingManagerID}, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ListRefsByManager(ctx context.Context, employeeID string) ([]accessfilter.EmployeeRef, error) {
	refs := []accessfilter.EmployeeRef{}
	for _, e := range s.employees {
		if e.ReportingManagerID != nil && *e.ReportingManagerID == employeeID {
			refs = append(refs, accessfilter.EmployeeRef{EmployeeID: e.ID, ReportingManagerID: e.ReportingManagerID})
		}
	}
	return refs, nil
}

func strPtr(s string) *string { return &s }

func testEmployees() []Employee {
	return []Employee{
		{ID: "e1", UserID: "u1", FirstName: "Ana", LastName: "Alpha", Email: "ana@example.com"},
		{ID: "e2", UserID: "u2", FirstName: "Max", LastName: "Beta", Email: "max@example.com"},
		{ID: "e5", UserID: "u5", FirstName: "Lee", LastName: "Gamma", Email: "lee@example.com", ReportingManagerID: strPtr("e2")},
	}
}

func resolve(t *testing.T, store Store, role accessfilter.Role, userID string, strategy accessfilter.Strategy) *accessfilter.FilterDecision {
	t.Helper()
	resolver := accessfilter.NewResolver(store, zap.NewNop())
	d, err := resolver.Resolve(context.Background(), accessfilter.Identity{UserID: userID, Role: role}, strategy)
	if err != nil {
		t.Fatalf("failed to resolve decision: %v", err)
	}
	return d
}

func TestListDeniedDecisionReturnsEmptyWithoutStoreCall(t *testing.T) {
	store := newFakeStore(testEmployees()...)
	svc := NewService(store)

	d := resolve(t, store, accessfilter.RoleEmployee, "ghost", accessfilter.EmployeeData)
	employees, err := svc.List(context.Background(), d)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(employees) != 0 {
		t.Errorf("expected empty result, got %d", len(employees))
	}
	if store.lastPred != nil {
		t.Error("store must not be queried for a denied decision")
	}
}

func TestListNilDecisionDenies(t *testing.T) {
	store := newFakeStore(testEmployees()...)
	svc := NewService(store)

	employees, err := svc.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(employees) != 0 {
		t.Errorf("expected empty result, got %d", len(employees))
	}
}

func TestListUnrestrictedPassesNilPredicate(t *testing.T) {
	store := newFakeStore(testEmployees()...)
	svc := NewService(store)

	d := resolve(t, store, accessfilter.RoleHR, "hr1", accessfilter.EmployeeData)
	employees, err := svc.List(context.Background(), d)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(employees) != 3 {
		t.Errorf("expected all employees, got %d", len(employees))
	}
	if store.lastPred != nil {
		t.Errorf("expected nil predicate for unrestricted decision, got %+v", store.lastPred)
	}
}

func TestListScopedPassesMembershipPredicate(t *testing.T) {
	store := newFakeStore(testEmployees()...)
	svc := NewService(store)

	d := resolve(t, store, accessfilter.RoleManager, "u2", accessfilter.TeamViewable)
	if _, err := svc.List(context.Background(), d); err != nil {
		t.Fatalf("list error: %v", err)
	}
	if store.lastPred == nil {
		t.Fatal("expected a predicate for a scoped decision")
	}
	if store.lastPred.Clause != "id IN (?)" {
		t.Errorf("unexpected clause %q", store.lastPred.Clause)
	}
}

func TestGetOutsideScopeIsNotFound(t *testing.T) {
	store := newFakeStore(testEmployees()...)
	svc := NewService(store)

	d := resolve(t, store, accessfilter.RoleEmployee, "u1", accessfilter.EmployeeData)
	if _, err := svc.Get(context.Background(), d, "e2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), d, "e1"); err != nil {
		t.Errorf("own record must be readable, got %v", err)
	}
}

func TestGetSelfUsesDecisionIdentity(t *testing.T) {
	store := newFakeStore(testEmployees()...)
	svc := NewService(store)

	d := resolve(t, store, accessfilter.RoleEmployee, "u5", accessfilter.SelfOnly)
	e, err := svc.GetSelf(context.Background(), d)
	if err != nil {
		t.Fatalf("get self error: %v", err)
	}
	if e.ID != "e5" {
		t.Errorf("expected own record e5, got %q", e.ID)
	}
}

func TestGetSelfWithoutProfileIsNotFound(t *testing.T) {
	store := newFakeStore(testEmployees()...)
	svc := NewService(store)

	d := resolve(t, store, accessfilter.RoleAdmin, "ghost", accessfilter.SelfOnly)
	if _, err := svc.GetSelf(context.Background(), d); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMutationsRequireUnrestrictedDecision(t *testing.T) {
	store := newFakeStore(testEmployees()...)
	svc := NewService(store)

	scoped := resolve(t, store, accessfilter.RoleManager, "u2", accessfilter.EmployeeData)

	if _, err := svc.Create(context.Background(), scoped, CreateInput{UserID: "u9", FirstName: "A", LastName: "B", Email: "a@b.com"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("create: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(context.Background(), scoped, "e5", UpdateInput{Position: "Lead"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("update: expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), scoped, "e5"); !errors.Is(err, ErrForbidden) {
		t.Errorf("delete: expected ErrForbidden, got %v", err)
	}
}

func TestCreateAndUpdateUnrestricted(t *testing.T) {
	store := newFakeStore(testEmployees()...)
	svc := NewService(store)

	d := resolve(t, store, accessfilter.RoleAdmin, "adm", accessfilter.HRAdminOnly)

	created, err := svc.Create(context.Background(), d, CreateInput{
		UserID: "u9", FirstName: "New", LastName: "Hire", Email: "new@example.com",
	})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}

	updated, err := svc.Update(context.Background(), d, "e1", UpdateInput{Position: "Lead"})
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if updated.Position != "Lead" {
		t.Errorf("expected updated position, got %q", updated.Position)
	}
	if updated.Email != "ana@example.com" {
		t.Errorf("empty fields must keep their value, got %q", updated.Email)
	}

	if err := svc.Delete(context.Background(), d, "e1"); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if err := svc.Delete(context.Background(), d, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing record, got %v", err)
	}
}
