// Package services implements the client side of the catalogue backend API.
//
// # Raw client
//
// [APIService] performs JSON requests against the backend and returns the raw
// status, headers and body. It knows nothing about envelopes or domain types.
//
// # Gateway
//
// [Gateway] is the persistence gateway used by the reconciliation engine. It
// wraps [APIService] with:
//   - a bounded per-request timeout (default 4500ms)
//   - decoding of the {ok, data} response envelope (a bare payload is also accepted)
//   - a reachability flag summarising whether the last call succeeded
//
// No call is retried automatically.
//
// # Error Handling
//
// Gateway methods return errors from the shared package:
//   - [shared.ErrUnreachable] : network failure or timeout (also wraps [shared.ErrTimeout] on deadline)
//   - [shared.ErrRequestFailed] : non-2xx status, carried by [shared.RequestFailedError]
//
// Every failure clears the reachability flag; every success sets it.
package services
