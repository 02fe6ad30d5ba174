// Package redis connects the engine to Redis with startup retries and a
// readiness probe. The quota package uses the resulting client to cache
// monitor counts.
package redis
