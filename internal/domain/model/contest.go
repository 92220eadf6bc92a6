package model

import "time"

type ContestStatus string
type ContestVisibility string

const (
	// Lifecycle is derived from timing fields and the published flag, never
	// stored, so a stale persisted status cannot exist.
	ContestDraft    ContestStatus = "Draft"
	ContestUpcoming ContestStatus = "Upcoming"
	ContestLive     ContestStatus = "Live"
	ContestEnded    ContestStatus = "Ended"

	VisibilityPublic  ContestVisibility = "Public"
	VisibilityPrivate ContestVisibility = "Private"
)

type Contest struct {
	ID             string            `json:"id"`
	Slug           string            `json:"slug"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	StartTime      time.Time         `json:"start_time"`
	EndTime        time.Time         `json:"end_time"`
	Published      bool              `json:"published"`
	Visibility     ContestVisibility `json:"visibility"`
	AccessCodeHash *string           `json:"-"` // set iff Visibility is Private
	CreatedByID    string            `json:"created_by_id"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	Status ContestStatus `json:"status,omitempty"` // derived, filled on read
}

// DeriveStatus computes the lifecycle state of a contest at the given instant.
// Pure: the same (published, startTime, endTime, now) always yields the same
// status. Both window boundaries are inclusive on the live side.
func DeriveStatus(published bool, startTime, endTime, now time.Time) ContestStatus {
	if !published {
		return ContestDraft
	}
	if now.Before(startTime) {
		return ContestUpcoming
	}
	if now.After(endTime) {
		return ContestEnded
	}
	return ContestLive
}

// StatusAt derives the contest's status at the given instant.
func (c *Contest) StatusAt(now time.Time) ContestStatus {
	return DeriveStatus(c.Published, c.StartTime, c.EndTime, now)
}
