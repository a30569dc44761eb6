package accessfilter

// deniedSentinelID is the value used for the zero-row predicate. Employee ids
// are UUIDs, so a single dash can never match a real row. An equality on an
// impossible value is used instead of an empty IN list, which some engines
// treat ambiguously.
const deniedSentinelID = "-"

// Predicate is a SQL fragment to be ANDed into a consumer's WHERE clause.
// Clause uses `?` bindvars; stores are expected to pass the assembled query
// through sqlx.In and Rebind so the IN form expands correctly.
type Predicate struct {
	Clause string
	Args   []interface{}
}

// BuildPredicate renders the decision into a query predicate on the given
// column. It returns nil for an unrestricted decision, meaning the caller
// applies no filter. A nil decision builds the zero-row predicate: a missing
// decision is a wiring bug and must fail closed.
func BuildPredicate(d *FilterDecision, column string) *Predicate {
	if d == nil {
		return &Predicate{Clause: column + " = ?", Args: []interface{}{deniedSentinelID}}
	}
	if d.unrestricted {
		return nil
	}

	ids := d.AllowedEmployeeIDs()
	switch len(ids) {
	case 0:
		return &Predicate{Clause: column + " = ?", Args: []interface{}{deniedSentinelID}}
	case 1:
		return &Predicate{Clause: column + " = ?", Args: []interface{}{ids[0]}}
	default:
		return &Predicate{Clause: column + " IN (?)", Args: []interface{}{ids}}
	}
}
