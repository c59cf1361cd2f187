// Package cache maintains an in-memory snapshot of tradable match
// contracts, refreshed on a fixed poll cadence.
//
// Each cycle fetches every configured series concurrently, runs the
// results through the discovery pipeline, enriches the most liquid
// survivors with orderbook-derived best prices, and publishes the
// result as an immutable snapshot behind an atomic pointer. Readers
// never block on a refresh, and a failed cycle leaves the previous
// snapshot in place.
package cache
