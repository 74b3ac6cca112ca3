// Package service implements the two core subsystems: the activity lifecycle
// and the expense allocation engine. Services hold no state of their own;
// every operation is a synchronous pass through validation, the identity
// directory, and the store. Precondition failures surface as apperr kinds
// and are never retried here.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/mleng/courtmate/internal/apperr"
	"github.com/mleng/courtmate/internal/identity"
	"github.com/mleng/courtmate/internal/models"
	"github.com/mleng/courtmate/internal/storage"
)

// Title length bounds, counted in runes after trimming.
const (
	minTitleLen = 5
	maxTitleLen = 50
)

// ActivityService owns the Activity entity and its participation roster.
type ActivityService struct {
	store     storage.ActivityStore
	directory identity.Directory
	clock     Clock
}

// NewActivityService creates an ActivityService.
func NewActivityService(store storage.ActivityStore, directory identity.Directory, clock Clock) *ActivityService {
	return &ActivityService{store: store, directory: directory, clock: clock}
}

// CreateActivityInput carries the organizer's request to create an activity.
type CreateActivityInput struct {
	OrganizerID  string
	Title        string
	Venue        string
	Address      string
	StartTime    time.Time
	EndTime      time.Time
	MaxPlayers   int
	EstimatedFee decimal.Decimal
	Description  string
}

// requireActiveUser resolves a user through the directory: NotFound when the
// id is unknown, Validation when the account is disabled.
func requireActiveUser(ctx context.Context, directory identity.Directory, userID, role string) error {
	exists, err := directory.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFoundf("%s %s not found", role, userID)
	}
	active, err := directory.IsActive(ctx, userID)
	if err != nil {
		return err
	}
	if !active {
		return apperr.Validationf("%s %s is not active", role, userID)
	}
	return nil
}

// Create validates the request and persists a new pending activity together
// with the organizer's confirmed participation, as one atomic unit. The
// organizer counts as the first player.
func (s *ActivityService) Create(ctx context.Context, in CreateActivityInput) (*models.Activity, error) {
	if err := requireActiveUser(ctx, s.directory, in.OrganizerID, "organizer"); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if n := utf8.RuneCountInString(title); n < minTitleLen || n > maxTitleLen {
		return nil, apperr.Validationf("title must be %d-%d characters, got %d", minTitleLen, maxTitleLen, n)
	}
	if strings.TrimSpace(in.Venue) == "" {
		return nil, apperr.Validationf("venue must not be blank")
	}

	now := s.clock.Now()
	if in.StartTime.Before(now) {
		return nil, apperr.Validationf("start time %s is in the past", in.StartTime.Format(time.RFC3339))
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, apperr.Validationf("end time must be after start time")
	}
	if in.MaxPlayers < models.MinPlayers || in.MaxPlayers > models.MaxPlayers {
		return nil, apperr.Validationf("max players must be between %d and %d, got %d",
			models.MinPlayers, models.MaxPlayers, in.MaxPlayers)
	}
	if in.EstimatedFee.IsNegative() {
		return nil, apperr.Validationf("estimated fee must not be negative")
	}

	activity := &models.Activity{
		Title:          title,
		OrganizerID:    in.OrganizerID,
		Venue:          strings.TrimSpace(in.Venue),
		Address:        strings.TrimSpace(in.Address),
		StartTime:      in.StartTime,
		EndTime:        in.EndTime,
		MaxPlayers:     in.MaxPlayers,
		CurrentPlayers: 1,
		EstimatedFee:   in.EstimatedFee,
		Description:    in.Description,
		Status:         models.ActivityPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	organizer := &models.Participation{
		UserID:      in.OrganizerID,
		Status:      models.ParticipationConfirmed,
		JoinedAt:    now,
		IsOrganizer: true,
	}

	if err := s.store.CreateActivityWithOrganizer(ctx, activity, organizer); err != nil {
		return nil, err
	}

	slog.Info("activity created",
		"activity_id", activity.ID,
		"organizer_id", activity.OrganizerID,
		"max_players", activity.MaxPlayers,
	)
	return activity, nil
}

// Join adds a user to a pending activity that still has room.
func (s *ActivityService) Join(ctx context.Context, activityID, userID, remark string) error {
	activity, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return err
	}
	if err := requireActiveUser(ctx, s.directory, userID, "user"); err != nil {
		return err
	}
	if userID == activity.OrganizerID {
		return apperr.Conflictf("organizer is already a participant")
	}
	if activity.Status != models.ActivityPending {
		return apperr.Conflictf("activity %s is %s and cannot be joined", activityID, activity.Status)
	}
	if activity.IsFull() {
		return apperr.Conflictf("activity %s is full (%d/%d)", activityID, activity.CurrentPlayers, activity.MaxPlayers)
	}

	p := &models.Participation{
		UserID:   userID,
		Status:   models.ParticipationConfirmed,
		JoinedAt: s.clock.Now(),
		Remark:   remark,
	}
	// The store re-checks capacity and status under its own guard; a racing
	// join on the last slot surfaces here as Conflict.
	if err := s.store.AddParticipant(ctx, activityID, p); err != nil {
		return err
	}

	slog.Info("user joined activity", "activity_id", activityID, "user_id", userID)
	return nil
}

// Leave removes a user from a pending or ongoing activity. The organizer
// cannot leave; they cancel the activity instead.
func (s *ActivityService) Leave(ctx context.Context, activityID, userID string) error {
	activity, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return err
	}
	if userID == activity.OrganizerID {
		return apperr.Forbiddenf("organizer cannot leave; cancel the activity instead")
	}
	if activity.Status != models.ActivityPending && activity.Status != models.ActivityOngoing {
		return apperr.Validationf("cannot leave a %s activity", activity.Status)
	}

	if err := s.store.RemoveParticipant(ctx, activityID, userID, s.clock.Now()); err != nil {
		return err
	}

	slog.Info("user left activity", "activity_id", activityID, "user_id", userID)
	return nil
}

// transition applies an organizer-only status change.
func (s *ActivityService) transition(ctx context.Context, activityID, userID string, to models.ActivityStatus) error {
	activity, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return err
	}
	if userID != activity.OrganizerID {
		return apperr.Forbiddenf("only the organizer may change activity status")
	}
	if !activity.Status.CanTransitionTo(to) {
		return apperr.Validationf("cannot move activity from %s to %s", activity.Status, to)
	}

	if err := s.store.TransitionActivity(ctx, activityID, activity.Status, to, s.clock.Now()); err != nil {
		return err
	}

	slog.Info("activity status changed",
		"activity_id", activityID,
		"from", activity.Status,
		"to", to,
	)
	return nil
}

// Start moves a pending activity to ongoing.
func (s *ActivityService) Start(ctx context.Context, activityID, userID string) error {
	return s.transition(ctx, activityID, userID, models.ActivityOngoing)
}

// Complete moves an ongoing activity to completed.
func (s *ActivityService) Complete(ctx context.Context, activityID, userID string) error {
	return s.transition(ctx, activityID, userID, models.ActivityCompleted)
}

// Cancel moves a pending or ongoing activity to cancelled.
func (s *ActivityService) Cancel(ctx context.Context, activityID, userID string) error {
	return s.transition(ctx, activityID, userID, models.ActivityCancelled)
}

// Get retrieves a single activity.
func (s *ActivityService) Get(ctx context.Context, activityID string) (*models.Activity, error) {
	return s.store.GetActivity(ctx, activityID)
}

// ActivityDetail is an activity together with its participation roster.
type ActivityDetail struct {
	Activity     *models.Activity
	Participants []*models.Participation
}

// GetDetail retrieves an activity with its full roster in join order.
func (s *ActivityService) GetDetail(ctx context.Context, activityID string) (*ActivityDetail, error) {
	activity, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.ListParticipants(ctx, activityID)
	if err != nil {
		return nil, err
	}
	return &ActivityDetail{Activity: activity, Participants: participants}, nil
}

// ListByOrganizer returns the activities a user has created.
func (s *ActivityService) ListByOrganizer(ctx context.Context, organizerID string) ([]*models.Activity, error) {
	return s.store.ListActivitiesByOrganizer(ctx, organizerID)
}

// ListByStatus returns activities in the given status.
func (s *ActivityService) ListByStatus(ctx context.Context, status models.ActivityStatus) ([]*models.Activity, error) {
	if !status.Valid() {
		return nil, apperr.Validationf("unknown activity status %q", status)
	}
	return s.store.ListActivitiesByStatus(ctx, status)
}

// ListByTimeRange returns activities starting within [lo, hi], inclusive.
func (s *ActivityService) ListByTimeRange(ctx context.Context, lo, hi time.Time) ([]*models.Activity, error) {
	if hi.Before(lo) {
		return nil, apperr.Validationf("time range end precedes start")
	}
	return s.store.ListActivitiesByTimeRange(ctx, lo, hi)
}

// ListAvailable returns pending activities that still have room.
func (s *ActivityService) ListAvailable(ctx context.Context) ([]*models.Activity, error) {
	return s.store.ListAvailableActivities(ctx)
}
