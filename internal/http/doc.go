// Package http provides HTTP handlers and middleware for the coordinator API.
//
// The router exposes the following endpoints. Every request carries the
// acting user's identity in the `X-Actor-Role`, `X-Actor-Id`,
// `X-Actor-Department`, and `X-Actor-School` headers, asserted by the
// gateway in front of the service.
//   - POST /events: submits a new event request. Responses include the stored
//     event plus any venue conflict warnings; conflicts never block submission.
//   - GET /events: lists events within the actor's visibility scope. Supports
//     `status` (repeatable) and `venue_id` query filters.
//   - GET /events/pending-approvals: lists events waiting on the actor's review.
//   - GET /events/{id}: fetches one event within scope.
//   - POST /events/{id}/approve, /reject, /request-modification,
//     /override-approve: approval workflow actions exchanging the
//     `reviewRequest` payload defined in event_handler.go.
//   - POST /events/{id}/start, /complete: execution lifecycle actions.
//
// Mutating event bodies accept an optional `expected_version`; when it no
// longer matches the stored event, the action fails with 409 STALE_EVENT.
//   - GET /venues, POST /venues, GET /venues/{id}, PUT /venues/{id}: venue
//     catalog endpoints. Mutations are restricted to administrators;
//     coordinators list only the venues their own requests reference.
//   - GET /venues/{id}/conflict: checks a `start`/`end` window against
//     requests currently holding the venue.
//   - GET /resources, POST /resources, GET /resources/{id}, PUT /resources/{id}:
//     resource catalog endpoints. Mutations are restricted to administrators.
//   - GET /resources/{id}/usage: rolls up demand from running events against
//     the resource's pool.
//   - GET /resources/{id}/capacity?count=N: checks a requested count against
//     the resource's total capacity.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
