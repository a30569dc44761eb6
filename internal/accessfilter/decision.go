package accessfilter

import (
	"fmt"
	"sort"
)

// FilterDecision is the resolved, request-scoped outcome of applying a
// strategy to an identity. It is immutable once built; a route that needs a
// different strategy must resolve again rather than mutate an existing value.
//
// All methods are safe on a nil receiver and deny: a handler that reaches a
// helper without a decision (a wiring bug) must fail closed, never open.
type FilterDecision struct {
	unrestricted      bool
	allowed           map[string]struct{}
	currentEmployeeID string

	// Role flags are diagnostic only; the allowed set is authoritative.
	isHROrAdmin bool
	isManager   bool
	isEmployee  bool
}

type roleFlags struct {
	isHROrAdmin bool
	isManager   bool
	isEmployee  bool
}

func flagsFor(role Role) roleFlags {
	return roleFlags{
		isHROrAdmin: role == RoleHR || role == RoleAdmin,
		isManager:   role == RoleManager,
		isEmployee:  role == RoleEmployee,
	}
}

func newUnrestrictedDecision(f roleFlags) *FilterDecision {
	return &FilterDecision{
		unrestricted: true,
		isHROrAdmin:  f.isHROrAdmin,
		isManager:    f.isManager,
		isEmployee:   f.isEmployee,
	}
}

func newDeniedDecision(currentEmployeeID string, f roleFlags) *FilterDecision {
	return &FilterDecision{
		allowed:           map[string]struct{}{},
		currentEmployeeID: currentEmployeeID,
		isHROrAdmin:       f.isHROrAdmin,
		isManager:         f.isManager,
		isEmployee:        f.isEmployee,
	}
}

func newScopedDecision(currentEmployeeID string, ids []string, f roleFlags) *FilterDecision {
	allowed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}
	return &FilterDecision{
		allowed:           allowed,
		currentEmployeeID: currentEmployeeID,
		isHROrAdmin:       f.isHROrAdmin,
		isManager:         f.isManager,
		isEmployee:        f.isEmployee,
	}
}

// Unrestricted reports whether the caller may see every employee record.
func (d *FilterDecision) Unrestricted() bool {
	return d != nil && d.unrestricted
}

// HasAccess reports whether the caller may see at least one record. Intended
// for early exit before querying.
func (d *FilterDecision) HasAccess() bool {
	if d == nil {
		return false
	}
	return d.unrestricted || len(d.allowed) > 0
}

// CanAccessEmployee reports whether the caller may see the given employee.
// Used for single-record reads and mutations, independent of list filtering.
func (d *FilterDecision) CanAccessEmployee(employeeID string) bool {
	if d == nil {
		return false
	}
	if d.unrestricted {
		return true
	}
	_, ok := d.allowed[employeeID]
	return ok
}

// CurrentEmployeeID returns the caller's own employee id, or "" when the
// caller has no employee profile (or the hr/admin shortcut skipped the
// profile lookup).
func (d *FilterDecision) CurrentEmployeeID() string {
	if d == nil {
		return ""
	}
	return d.currentEmployeeID
}

// AllowedEmployeeIDs returns the allowed set in sorted order, nil when
// unrestricted. Callers must not use it to widen access; it exists for the
// predicate builder and for tests.
func (d *FilterDecision) AllowedEmployeeIDs() []string {
	if d == nil || d.unrestricted {
		return nil
	}
	ids := make([]string, 0, len(d.allowed))
	for id := range d.allowed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Describe returns a human-readable summary for logs. It must never be used
// to make an access decision.
func (d *FilterDecision) Describe() string {
	switch {
	case d == nil:
		return "No decision - access denied"
	case d.unrestricted:
		return "HR/Admin - Unrestricted access"
	case len(d.allowed) == 0:
		return "No access"
	case d.isManager:
		return fmt.Sprintf("Manager - Access to %d employees", len(d.allowed))
	default:
		return fmt.Sprintf("Access to %d employees", len(d.allowed))
	}
}
