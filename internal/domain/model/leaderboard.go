package model

import "time"

// LeaderboardEntry is a derived view, recomputed from the submission log.
// It is never persisted as its own source of truth.
type LeaderboardEntry struct {
	Rank           int       `json:"rank"`
	UserID         string    `json:"user_id"`
	ParticipantID  string    `json:"participant_id"`
	TotalPoints    int       `json:"total_points"`
	TotalPenaltyMs int64     `json:"total_penalty_ms"`
	Solved         int       `json:"solved"`
	LastAcceptedAt time.Time `json:"last_accepted_at,omitzero"`
}
