// Package http provides HTTP handlers and middleware for the booking API.
//
// Callers are identified by the X-Principal-ID and X-Principal-Admin headers
// injected by a trusted gateway; requests without a principal are rejected
// with 401 by the RequirePrincipal middleware.
//
// The router exposes the following endpoints:
//   - POST /bookings, GET /bookings, DELETE /bookings/{id}: booking creation,
//     listing, and cancellation exchanging the `bookingDTO` payload defined in
//     booking_handler.go. Listing is scoped to the caller unless the caller is
//     an administrator.
//   - GET /resources/{id}/availability?date=YYYY-MM-DD[&start=HH:MM&end=HH:MM]:
//     availability probe for a resource on a date, optionally narrowed to a
//     time slot for meeting rooms.
//   - GET /desk-eligibility?date=YYYY-MM-DD: reports whether the caller may
//     still book a desk on the given date.
//   - POST /resources, PUT /resources/{id}, DELETE /resources/{id}:
//     administrator controlled resource catalog management exchanging the
//     `resourceDTO` payload defined in resource_handler.go.
//   - GET /maps, POST /maps, PUT /maps/{id}, DELETE /maps/{id}: floor map
//     management. GET /maps/{id}/resources lists a map's resources, and with a
//     `date` query parameter returns per-resource display statuses for that day.
//   - GET /users, POST /users, PUT /users/{id}, DELETE /users/{id}:
//     administrator controlled user management endpoints exchanging the
//     `userDTO` payload defined in user_handler.go.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
