// Package quota enforces per-tier monitor limits at creation time.
//
// The Enforcer combines three inputs: the user's subscription (for access
// state), the tier catalog (for the monitor ceiling), and a counter function
// (for current usage). Request handlers call CanCreateMonitor before
// creating a monitor and surface Decision.Reason verbatim when denied.
//
//	enforcer := quota.NewEnforcer(store, tier.Default(), counter)
//
//	decision, err := enforcer.CanCreateMonitor(ctx, userID)
//	if err != nil {
//	    return err
//	}
//	if !decision.Allowed {
//	    return render.Error(decision.Reason)
//	}
//
// GetTierLimits backs UI that needs entitlement values (selectable check
// intervals, status page counts). It never errors: absent or inactive
// entitlement degrades to tier.RestrictiveLimits.
//
// The limit check is count-then-compare and deliberately not isolated
// against concurrent creations by the same user; it is a soft limit that can
// be overshot by at most the number of in-flight requests.
//
// CachedCounter wraps the counter function with a TTL-bounded Redis cache
// for deployments where counting hits an aggregate query.
package quota
