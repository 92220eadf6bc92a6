package model

import "time"

// Participant is a user's admitted membership in one contest. The
// (ContestID, UserID) pair is unique; re-join returns the existing row.
type Participant struct {
	ID        string    `json:"id"`
	ContestID string    `json:"contest_id"`
	UserID    string    `json:"user_id"`
	JoinedAt  time.Time `json:"joined_at"`
}
