// Package rentalweb is the browser-facing client core of the SkyFleet drone
// rental marketplace: session state, identity resolution, route guarding and
// layout selection. Business logic, persistence, and authorization decisions
// live in the rentals backend; this package only synchronizes with it.
//
// Session lifecycle:
//   - Store is the single source of truth for authentication state. It is
//     created at bootstrap from any previously persisted token, mutated by
//     login, OAuth completion, profile edits, and logout, and destroyed on
//     logout or when identity resolution fails for a dead token.
//   - A token by itself never authenticates a session. Claims are decoded
//     fail-closed for an immediate, optimistic identity and the profile
//     endpoint supersedes that decode with the authoritative record; a role
//     disagreement between the two tears the session down.
//
// Route authorization:
//   - Guard evaluates declarative RouteRules against the current session on
//     every navigation, remembering the rejected destination so a successful
//     login can resume it.
//   - SelectLayout picks the admin, user, or public chrome purely from
//     (status, role).
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter describing login, logout,
//     OAuth, and profile refresh events. Sinks run best-effort (errors are
//     logged) so telemetry never blocks authentication.
package rentalweb
