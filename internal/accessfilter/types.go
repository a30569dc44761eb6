package accessfilter

import "context"

// Role is the coarse privilege tier carried by an authenticated identity.
// Tokens outside the known set carry no privilege at all.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

// Known reports whether r is one of the role tokens issued by the auth service.
func (r Role) Known() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleHR, RoleAdmin:
		return true
	}
	return false
}

// Identity is the authenticated caller as established by the JWT middleware.
// It is immutable for the lifetime of the request.
type Identity struct {
	UserID string
	Role   Role
}

// EmployeeRef is the minimal projection of an employee row the resolver needs.
type EmployeeRef struct {
	EmployeeID         string  `db:"id"`
	ReportingManagerID *string `db:"reporting_manager_id"`
}

// Directory is the read-only employee lookup surface the resolver depends on.
// FindRefByUserID returns (nil, nil) when the user has no employee profile.
type Directory interface {
	FindRefByUserID(ctx context.Context, userID string) (*EmployeeRef, error)
	ListRefsByManager(ctx context.Context, employeeID string) ([]EmployeeRef, error)
}

// Strategy names a row-level access rule. Each protected route declares
// exactly one at registration time; the zero value always denies.
type Strategy int

const (
	StrategyUnknown Strategy = iota

	// EmployeeData covers general employee records: employees see
	// themselves, managers see themselves plus direct reports.
	EmployeeData

	// SensitiveFinancial covers payroll-grade data: employees see their
	// own, managers see nothing.
	SensitiveFinancial

	// TeamViewable behaves like EmployeeData and exists so routes can
	// declare team-scoped intent separately from general record access.
	TeamViewable

	// HRAdminOnly grants access to hr and admin roles exclusively.
	HRAdminOnly

	// SelfOnly restricts every role, including hr and admin, to the
	// caller's own record.
	SelfOnly
)

func (s Strategy) String() string {
	switch s {
	case EmployeeData:
		return "employee-data"
	case SensitiveFinancial:
		return "sensitive-financial"
	case TeamViewable:
		return "team-viewable"
	case HRAdminOnly:
		return "hr-admin-only"
	case SelfOnly:
		return "self-only"
	}
	return "unknown"
}
