// Package server provides HTTP routing, middleware, and handlers for the setlist API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /playlists/{id}").
// [BasicRouter.With] returns a router sharing the same mux with extra middleware, which is how
// authenticated routes are grouped.
//
// # Authentication
//
// [Authenticate] resolves the Authorization header through an [IdentityResolver] and stores the
// user in the request context. Handlers read it back with auth.UserFromContext and scope every
// query to that user's id.
//
// Failures map to responses as follows:
//   - missing or non-Bearer header: 401 {"error":"Unauthorized"}
//   - token verification failure: 400 {"error":"Error <Kind>: <message>"}
//   - user no longer exists: 400 {"error":"Error UserNotFound: User does not exist"}
//   - store failure: 500 {"error":"Internal Server Error"}
//
// # Handler Interface
//
// Resource handlers implement [Handler], returning the [Route] values they serve, which lets a handler
// encapsulate its route definitions and be mounted on any [Router].
package server
