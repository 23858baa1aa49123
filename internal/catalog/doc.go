// Package catalog holds the client-side reconciliation engine and its view-model.
//
// # Overview
//
// The [Engine] is the single authoritative holder of [models.AppState]. It
// reconciles four sources into one view:
//
//	defaults ──┐
//	snapshot ──┼──→ Engine.state ──→ View ──→ CLI / TUI
//	local-only ┤        │
//	backend  ──┘        ├──→ snapshot.Store (durable subset)
//	                    └──→ services.Backend (fire-and-forget echoes)
//
// # Commit Cycle
//
// Every mutation runs under the state mutex and ends in a commit:
//
//  1. selection repair (a dangling selection falls back to the first item)
//  2. a versioned deep copy is taken and the lock released
//  3. subscribers are called synchronously, in subscription order
//  4. the copy is saved to the snapshot store unless a newer commit already was
//
// Listeners run outside the state lock, so they may read [Engine.View] or
// mutate again.
//
// # Identity
//
// Items created locally get a timestamp-based id that never collides with an
// existing one. Once an item is persisted remotely it carries a backendId and
// its id becomes backendId + [models.LocalIDOffset]. Merging matches items by
// backendId, so an item keeps its local id if it was stored under one.
//
// # Remote Calls
//
// Sync, PersistToBackend, tag echoes and remote deletes run in goroutines
// tracked by [Engine.Wait]. Their failures never roll back local state; they
// only update the [Status] indicator.
package catalog
