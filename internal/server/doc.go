// Package server implements the catalogue backend's REST API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method patterns
// ("GET /api/videos"). Middleware wraps the whole mux, so it also runs for
// requests no route matches (CORS preflight, 404s).
//
// # Middleware
//
//   - [RequestID] : assigns an X-Request-ID to every request
//   - [Logging] : structured request logging with status and duration
//   - [CORS] : permissive CORS headers; answers OPTIONS with 204
//   - [RateLimit] : token bucket limiting via golang.org/x/time/rate
//   - [Recover] : turns panics into a 500 envelope
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Responses
//
// Every JSON response uses the envelope {"ok": status < 400, "data": ...}.
// Errors carry {"message": "..."} as data.
//
//	GET    /api/videos            list videos, newest first
//	POST   /api/videos            create a video (201)
//	POST   /api/videos/{id}/tags  replace the tags of a video
//	DELETE /api/videos/{id}       delete a video
//	GET    /api/health            health check
package server
