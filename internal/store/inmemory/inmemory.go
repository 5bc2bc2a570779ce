// Package inmemory is an in-memory implementation of the store interfaces.
// Each entity gets its own store guarded by a sync.RWMutex, and records are
// copied on the way in and out so callers cannot mutate stored state behind
// the lock. Data is lost on restart; production runs use the
// BigQuery-backed store.
package inmemory
