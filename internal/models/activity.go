package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActivityStatus is the lifecycle state of an activity.
//
// Transitions:
//
//	Pending → Ongoing   (organizer starts)
//	Pending → Cancelled (organizer cancels)
//	Ongoing → Completed (organizer completes)
//	Ongoing → Cancelled (organizer cancels)
//
// Completed and Cancelled are terminal.
type ActivityStatus string

const (
	ActivityPending   ActivityStatus = "pending"
	ActivityOngoing   ActivityStatus = "ongoing"
	ActivityCompleted ActivityStatus = "completed"
	ActivityCancelled ActivityStatus = "cancelled"
)

// activityTransitions encodes the legal status transitions.
var activityTransitions = map[ActivityStatus][]ActivityStatus{
	ActivityPending: {ActivityOngoing, ActivityCancelled},
	ActivityOngoing: {ActivityCompleted, ActivityCancelled},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s ActivityStatus) CanTransitionTo(next ActivityStatus) bool {
	for _, allowed := range activityTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the defined statuses.
func (s ActivityStatus) Valid() bool {
	switch s {
	case ActivityPending, ActivityOngoing, ActivityCompleted, ActivityCancelled:
		return true
	}
	return false
}

// Capacity bounds for an activity.
const (
	MinPlayers = 2
	MaxPlayers = 20
)

// Activity is a scheduled meetup with a capacity cap.
//
// CurrentPlayers is a maintained counter, not derived on read: it starts at 1
// (the organizer) and is adjusted by join/leave under a guarded update so it
// always stays within [0, MaxPlayers].
type Activity struct {
	ID             string
	Title          string
	OrganizerID    string
	Venue          string
	Address        string
	StartTime      time.Time
	EndTime        time.Time
	MaxPlayers     int
	CurrentPlayers int
	EstimatedFee   decimal.Decimal
	Description    string
	Status         ActivityStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// IsFull reports whether the activity has reached its capacity cap.
func (a *Activity) IsFull() bool {
	return a.CurrentPlayers >= a.MaxPlayers
}

// Joinable reports whether new participants may join.
func (a *Activity) Joinable() bool {
	return a.Status == ActivityPending && !a.IsFull()
}
