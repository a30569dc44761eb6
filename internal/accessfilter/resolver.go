package accessfilter

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Resolver computes row-level access decisions from the reporting hierarchy.
// It performs at most two directory lookups per call: the caller's own
// employee record and, for managers, that record's direct reports. Decisions
// are never cached; every call reflects the hierarchy as stored right now.
type Resolver struct {
	dir    Directory
	logger *zap.Logger
}

// NewResolver creates a new resolver backed by the given employee directory.
func NewResolver(dir Directory, logger *zap.Logger) *Resolver {
	return &Resolver{dir: dir, logger: logger}
}

// Resolve applies the strategy to the identity and returns the resulting
// decision. Lack of access is a normal value (an empty allowed set), never an
// error; the error return is reserved for directory failures, which callers
// must treat as deny rather than unrestricted.
func (r *Resolver) Resolve(ctx context.Context, identity Identity, strategy Strategy) (*FilterDecision, error) {
	flags := flagsFor(identity.Role)

	// hr/admin see everything without needing an employee profile, except
	// under SelfOnly, which binds every role to its own record.
	if flags.isHROrAdmin && strategy != SelfOnly {
		return newUnrestrictedDecision(flags), nil
	}

	ref, err := r.dir.FindRefByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up employee for user %s: %w", identity.UserID, err)
	}
	if ref == nil {
		// Authenticated but without an employee profile: sees nothing,
		// whatever the strategy.
		return newDeniedDecision("", flags), nil
	}

	switch strategy {
	case EmployeeData, TeamViewable:
		switch identity.Role {
		case RoleEmployee:
			return newScopedDecision(ref.EmployeeID, []string{ref.EmployeeID}, flags), nil
		case RoleManager:
			reports, err := r.dir.ListRefsByManager(ctx, ref.EmployeeID)
			if err != nil {
				return nil, fmt.Errorf("failed to look up direct reports of %s: %w", ref.EmployeeID, err)
			}
			ids := make([]string, 0, len(reports)+1)
			ids = append(ids, ref.EmployeeID)
			for _, rep := range reports {
				ids = append(ids, rep.EmployeeID)
			}
			return newScopedDecision(ref.EmployeeID, ids, flags), nil
		default:
			r.warnRole(identity, strategy)
			return newDeniedDecision(ref.EmployeeID, flags), nil
		}

	case SensitiveFinancial:
		if identity.Role == RoleEmployee {
			return newScopedDecision(ref.EmployeeID, []string{ref.EmployeeID}, flags), nil
		}
		// Managers are excluded from financial data despite having a team.
		if identity.Role != RoleManager {
			r.warnRole(identity, strategy)
		}
		return newDeniedDecision(ref.EmployeeID, flags), nil

	case SelfOnly:
		return newScopedDecision(ref.EmployeeID, []string{ref.EmployeeID}, flags), nil

	case HRAdminOnly:
		// hr/admin exited above, so whoever reaches this point is not
		// entitled; route guards upstream are not trusted.
		return newDeniedDecision(ref.EmployeeID, flags), nil

	default:
		r.logger.Warn("Unrecognized access strategy, denying",
			zap.Int("strategy", int(strategy)),
			zap.String("user_id", identity.UserID))
		return newDeniedDecision(ref.EmployeeID, flags), nil
	}
}

func (r *Resolver) warnRole(identity Identity, strategy Strategy) {
	r.logger.Warn("Unrecognized role for access strategy, denying",
		zap.String("role", string(identity.Role)),
		zap.String("strategy", strategy.String()),
		zap.String("user_id", identity.UserID))
}
