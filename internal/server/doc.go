// Package server provides HTTP routing, middleware and the handlers of the session proxy.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering; one path may carry
// several methods, such as GET and POST on /api/playlists.
//
// # Handler Interface
//
// Handlers implement [Handler] by returning their [Route] list, so each group of endpoints keeps its
// route definitions next to the implementation:
//   - [AuthHandler] : /spotify-login, /callback/spotify (alias /callback/), /logout
//   - [APIHandler] : /api/session and the proxied /api routes
//   - [PageHandler] : the landing page and /healthz
//
// # Middleware Stack
//
// [Server] wraps the router with [Recoverer], [RequestLogger] and [CORS], outermost first.
// Session loading runs inside the router so that rejected methods never touch the session store.
//
// # Errors
//
// Handler errors are mapped to JSON responses in one place:
//   - not authenticated : 401 {"unauthorized": "login required", "login_url": "/spotify-login"}
//   - missing argument, invalid state, missing code : 400
//   - upstream error : the upstream status, with its body under "upstream"
//   - network error : 502
package server
