// Package models holds the server-side data model: users, parties, and the
// track descriptor broadcast inside a party.
package models

import "time"

// User is a verified end user of the companion service.
//
// SessionSecret is the single-active opaque credential issued at login and
// cleared at logout; Online mirrors it: a user is online exactly when a
// non-empty secret is on file.
type User struct {
	ID            string   // canonical 36-character external identifier
	DisplayName   string
	SessionSecret string   // empty when the user is offline
	Capabilities  []string // client identifiers that registered this user
	Online        bool
	CurrentTrack  *Track
	CreatedAt     time.Time
}

// Track is an opaque descriptor of a currently-playing media track. The core
// passes it through without interpreting it.
type Track struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
}
