// Package repositories implements SQLite persistence for the backend server.
//
// Key Implementations:
//   - [VideoRepository] : CRUD for rows of the videos table
//
// Tags are stored as a JSON array in a TEXT column. Rows whose tags column
// holds malformed JSON decode to an empty tag list rather than failing the query.
package repositories
