// Package app provides the application service layer.
//
// Identity (sign-up, sign-in, sessions), the REST side of notes, calendar
// notes with iCalendar export, the food tracker and its nutrition summaries,
// and the tier list aggregation. Services depend on domain interfaces, not on
// concrete adapters.
package app
