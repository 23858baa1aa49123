// Package models defines the data model shared by the catalogue client and the backend server.
//
// The package contains two categories of types:
//
// 1. Client state: the in-memory catalogue driven by the reconciliation engine
//   - [MediaItem] : A video or photo with tags and optional backend identity
//   - [AppState] : The full catalogue plus selection and filter state
//   - [Kind] : Which list (video or photo) an operation targets
//
// 2. Wire and persistent entities: shapes exchanged with or stored by the backend
//   - [RemoteRecord] : A backend row as returned by GET /api/videos
//   - [CreateVideoRequest] : Body of POST /api/videos
//   - [Video] : The row persisted in the videos table
//
// Item ids are opaque outside the engine. An item that carries a backend id
// always has id = backendId + [LocalIDOffset].
package models
