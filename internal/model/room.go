package model

import (
	"time"
)

// Room is an ephemeral, code-addressed chat session. The code is the
// primary key; rooms carry no name or owner.
type Room struct {
	Code         string    `db:"code" json:"code"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	LastActivity time.Time `db:"last_activity" json:"last_activity"`
}

// ExpiresAt returns the moment the room becomes eligible for reaping.
func (r *Room) ExpiresAt(inactivityWindow time.Duration) time.Time {
	return r.LastActivity.Add(inactivityWindow)
}

// Expired reports whether the room has been idle past the window.
func (r *Room) Expired(now time.Time, inactivityWindow time.Duration) bool {
	return now.Sub(r.LastActivity) > inactivityWindow
}
