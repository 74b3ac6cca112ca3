package models

import "time"

// ParticipationStatus is the state of one user's membership in an activity.
type ParticipationStatus string

const (
	ParticipationConfirmed ParticipationStatus = "confirmed"
	ParticipationCancelled ParticipationStatus = "cancelled"
)

// Participation links one user to one activity. The (ActivityID, UserID) pair
// is unique; leaving flips Status to Cancelled and re-joining flips it back.
//
// The organizer's own row has IsOrganizer set and cannot be cancelled through
// the normal leave path; the organizer cancels the whole activity instead.
type Participation struct {
	ActivityID  string
	UserID      string
	Status      ParticipationStatus
	JoinedAt    time.Time
	IsOrganizer bool
	Remark      string
}
