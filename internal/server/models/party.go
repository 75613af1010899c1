package models

import "time"

// Party is a short-lived listen-along session. The host's id is always a
// member of Participants; the party is deleted the moment the host leaves.
//
// HostSecret proves host authority. It is disclosed once, at creation, and is
// required to delete the party or mutate its track.
type Party struct {
	Code         string // 6 alphanumeric characters, unique among open parties
	HostID       string
	HostSecret   string
	Participants []string
	CurrentTrack *Track
	CreatedAt    time.Time
}

// CodeLength is the exact length of a party code. Inputs are validated
// against it before any repository lookup.
const CodeLength = 6

// HasParticipant reports whether userID is currently a member.
func (p *Party) HasParticipant(userID string) bool {
	for _, id := range p.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
