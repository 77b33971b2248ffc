// Package http provides HTTP handlers and middleware for the conference API.
//
// The router exposes the following endpoints:
//   - GET /profile, PUT /profile: the caller's profile, lazily created on first
//     access. PUT exchanges the `profileRequest` payload defined in
//     profile_handler.go.
//   - POST /conferences: creates a conference owned by the caller, exchanging
//     the `conferenceRequest` payload defined in conference_handler.go.
//   - GET /conferences/{key}, PUT /conferences/{key}: fetch or update a single
//     conference addressed by its websafe key. Updates are restricted to the
//     organizer.
//   - POST /conferences/query: evaluates caller supplied filters. Body:
//     {"filters":[{"field","operator","value"}]}. At most one field may carry
//     inequality operators.
//   - GET /conferences/created, GET /conferences/attending: conferences the
//     caller organizes or is registered for.
//   - POST /conferences/{key}/registration, DELETE /conferences/{key}/registration:
//     seat-accounted registration and cancellation.
//   - GET /conferences/{key}/sessions: sessions of a conference, optionally
//     narrowed via ?type=. POST creates a session; only the organizer may do
//     so, and only under their own speaker identity.
//   - GET /conferences/{key}/wishlist, POST /sessions/{key}/wishlist: the
//     caller's session wishlist, scoped to one conference when listing.
//   - GET /sessions/speaker: sessions across all conferences where the caller
//     is the speaker.
//   - GET /announcement: the current near-sellout announcement. This endpoint
//     is served without authentication.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
