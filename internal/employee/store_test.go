package employee

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func employeeColumns() []string {
	return []string{"id", "user_id", "first_name", "last_name", "email",
		"department", "position", "reporting_manager_id", "created_at", "updated_at"}
}

func employeeRow(rows *sqlmock.Rows, id, userID, last string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, userID, "Test", last, id+"@example.com", "Engineering", "Engineer", nil, now, now)
}

func TestListUnrestrictedAppliesNoFilter(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	mock.ExpectQuery(`SELECT * FROM employees ORDER BY last_name, first_name`).
		WillReturnRows(employeeRow(employeeRow(sqlmock.NewRows(employeeColumns()), "e1", "u1", "Alpha"), "e2", "u2", "Beta"))

	employees, err := s.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(employees) != 2 {
		t.Errorf("expected 2 employees, got %d", len(employees))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListSingletonPredicateIsEquality(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	mock.ExpectQuery(`SELECT * FROM employees WHERE id = $1 ORDER BY last_name, first_name`).
		WithArgs("e1").
		WillReturnRows(employeeRow(sqlmock.NewRows(employeeColumns()), "e1", "u1", "Alpha"))

	pred := &accessfilter.Predicate{Clause: "id = ?", Args: []interface{}{"e1"}}
	employees, err := s.List(context.Background(), pred)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(employees) != 1 || employees[0].ID != "e1" {
		t.Errorf("unexpected result %+v", employees)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListMembershipPredicateExpands(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	mock.ExpectQuery(`SELECT * FROM employees WHERE id IN ($1, $2, $3) ORDER BY last_name, first_name`).
		WithArgs("e2", "e5", "e6").
		WillReturnRows(employeeRow(sqlmock.NewRows(employeeColumns()), "e2", "u2", "Beta"))

	pred := &accessfilter.Predicate{Clause: "id IN (?)", Args: []interface{}{[]string{"e2", "e5", "e6"}}}
	if _, err := s.List(context.Background(), pred); err != nil {
		t.Fatalf("list error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListDeniedPredicateReturnsNothing(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	mock.ExpectQuery(`SELECT * FROM employees WHERE id = $1 ORDER BY last_name, first_name`).
		WithArgs("-").
		WillReturnRows(sqlmock.NewRows(employeeColumns()))

	pred := accessfilter.BuildPredicate(nil, "id")
	employees, err := s.List(context.Background(), pred)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(employees) != 0 {
		t.Errorf("expected no rows, got %d", len(employees))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFindRefByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	mock.ExpectQuery(`SELECT id, reporting_manager_id FROM employees WHERE user_id = $1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "reporting_manager_id"}).AddRow("e1", nil))

	ref, err := s.FindRefByUserID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}
	if ref == nil || ref.EmployeeID != "e1" {
		t.Errorf("unexpected ref %+v", ref)
	}
}

func TestFindRefByUserIDMissingProfile(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	mock.ExpectQuery(`SELECT id, reporting_manager_id FROM employees WHERE user_id = $1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "reporting_manager_id"}))

	ref, err := s.FindRefByUserID(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("missing profile must not be an error, got %v", err)
	}
	if ref != nil {
		t.Errorf("expected nil ref, got %+v", ref)
	}
}

func TestListRefsByManager(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	mock.ExpectQuery(`SELECT id, reporting_manager_id FROM employees WHERE reporting_manager_id = $1`).
		WithArgs("e2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "reporting_manager_id"}).
			AddRow("e5", "e2").
			AddRow("e6", "e2"))

	refs, err := s.ListRefsByManager(context.Background(), "e2")
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("expected 2 refs, got %d", len(refs))
	}
}
