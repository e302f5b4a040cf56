// Package session provides the client-side session and authorization core
// for the FarmVine marketplace clients (buyers, farmers, field officers):
// token lifecycle, multi-role identity, route gating, and a development-mode
// fixture transport that stands in for the real backend.
//
// Stores:
//   - TokenStore persists the bearer token and decodes its expiry claim
//     locally. A token is valid only when present and not yet expired;
//     decode failures are treated as invalid, never surfaced as errors.
//   - SessionStore persists the user record and the active role under
//     independent storage keys. Clear removes token, user, and role together.
//
// Gateway and context:
//   - Gateway performs register, login, logout, role switch, and profile
//     operations against the Dispatcher, updating both stores as a side
//     effect of each call. Session expiry reaping is an explicit action
//     (ReapSessionIfExpired), not a hidden side effect of status reads.
//   - SessionContext is an explicitly constructed reactive store exposing
//     the session snapshot plus mutators; storage is the source of truth
//     and the snapshot is refreshed from it after every mutating call.
//
// Route gating:
//   - RouteGate decides navigation outcomes from the snapshot and the
//     target's required roles. Unauthorized-but-authenticated users are
//     silently redirected to their dashboard, never to an error page.
//
// Development mode:
//   - fixture.Responder is an http.RoundTripper that answers requests from
//     an in-memory catalog with artificial latency, so the Dispatcher can be
//     pointed at canned data without touching any calling code.
package session
