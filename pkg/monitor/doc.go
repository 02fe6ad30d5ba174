// Package monitor manages monitored-resource records and is the concrete
// caller of the quota gate: Service.Create consults quota.Enforcer before
// inserting, enforces the tier's check-interval floor, and requires an
// explicit authenticated user id for every mutation.
//
// Check scheduling and execution are not in this package.
package monitor
