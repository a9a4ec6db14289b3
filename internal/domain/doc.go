// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (note.go, canvas.go, user.go, calendar.go, food.go,
// tier.go) hold the shared types and the consumer-side contracts. No
// implementation code lives here.
package domain
