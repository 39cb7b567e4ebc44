// Package http provides HTTP handlers and middleware for the dashboard API.
//
// Every request is given a principal by ResolvePrincipal: valid HTTP Basic
// admin credentials yield the admin, anything else the read-only viewer.
// Reads are open; mutations answer 403 for the viewer.
//
// The router exposes the following endpoints:
//   - GET /health: liveness and storage ping.
//   - GET /api/events, POST /api/events, GET|PUT|DELETE /api/events/{id}: the stored
//     events, exchanged as the `eventDTO` payload defined in dto.go. Request bodies use
//     the calendar form fields (title, description, start_date, end_date, category,
//     is_all_day, recurrence); zone-less dates are read in the display zone. DELETE
//     requires confirm=true and answers 428 otherwise.
//   - GET /api/events.ics, POST /api/events/import: iCalendar export and import.
//   - GET /api/calendar/{month,week,day}?date=&category=, GET /api/calendar/upcoming
//     ?category=&page=, GET /api/calendar/stats?category=: stateless renders.
//   - /api/dashboard/calendar/...: the server-held calendar screen (view, navigation,
//     category, page, modal, submit, confirmed delete). Each call returns a snapshot.
//   - GET|POST /api/resources/{kind}, PUT|DELETE /api/resources/{kind}/{id}: the
//     dashboard collections (courses, tutorials, tools, docs, certifications,
//     cloud-storage, data-analytics, generative-ai, workshops, subscriptions).
package http
