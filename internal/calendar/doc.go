// Package calendar classifies events relative to the current instant and
// buckets them into month, week and day renderings.
//
// Every function takes "now" as an argument; the only clock in the package is
// the Refresher, which callers start and stop explicitly. CalendarView ties the
// pieces together behind an EventStore collaborator and keeps the screen state
// (active view, per-view reference dates, category filter, modal, upcoming page).
package calendar
