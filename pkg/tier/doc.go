// Package tier defines the static subscription tiers and the entitlements
// each one grants: monitor count, check interval floor, status pages,
// history retention, and feature flags, plus pricing.
//
// The catalog is immutable configuration. There is no write path: tiers are
// loaded once at startup from a Source (built-in defaults or a YAML file)
// and validated, and any future tier change ships as new catalog data.
//
// # Usage
//
//	catalog := tier.Default()
//
//	t, err := catalog.Get(tier.Vital)
//	if err != nil {
//	    // unknown tier id
//	}
//	fmt.Println(t.Monitors) // 75
//
// Loading from a file instead:
//
//	catalog, err := tier.NewCatalog(ctx, tier.FileSource("config/tiers.yaml"))
//
// Callers that may lack an active subscription should fall back to
// tier.RestrictiveLimits() rather than erroring; see the quota package.
package tier
