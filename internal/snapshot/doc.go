// Package snapshot persists the durable subset of the catalogue state.
//
// A snapshot holds {currentTab, videos, photos, currentVideoId,
// currentPhotoId, activeTag} under a single namespaced key. Local-only items
// (isLocal) are never written. Loading fails soft: a missing, unreadable or
// malformed snapshot is reported as absent and logged, never returned as an
// error.
//
// [FileStore] keeps one JSON document on disk mapping keys to values so
// several keys can share a file; writes are atomic (temp file + rename).
// [MemoryStore] is the in-process equivalent used by tests.
package snapshot
