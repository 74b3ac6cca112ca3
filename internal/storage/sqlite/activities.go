package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mleng/courtmate/internal/apperr"
	"github.com/mleng/courtmate/internal/models"
)

const activityColumns = `id, title, organizer_id, venue, address, start_time, end_time,
	max_players, current_players, estimated_fee, description, status, created_at, updated_at, deleted_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*models.Activity, error) {
	a := &models.Activity{}
	var startTime, endTime, createdAt, updatedAt int64
	var deletedAt sql.NullInt64
	var fee string

	err := row.Scan(&a.ID, &a.Title, &a.OrganizerID, &a.Venue, &a.Address,
		&startTime, &endTime, &a.MaxPlayers, &a.CurrentPlayers, &fee,
		&a.Description, (*string)(&a.Status), &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	a.StartTime = time.Unix(startTime, 0)
	a.EndTime = time.Unix(endTime, 0)
	a.CreatedAt = time.Unix(createdAt, 0)
	a.UpdatedAt = time.Unix(updatedAt, 0)
	a.DeletedAt = timeFromNullable(deletedAt)

	a.EstimatedFee, err = scanDecimal(fee)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CreateActivityWithOrganizer persists the activity and the organizer's
// participation as one transaction.
func (s *Store) CreateActivityWithOrganizer(ctx context.Context, activity *models.Activity, organizer *models.Participation) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	organizer.ActivityID = activity.ID

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO activities (id, title, organizer_id, venue, address, start_time, end_time,
				max_players, current_players, estimated_fee, description, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			activity.ID, activity.Title, activity.OrganizerID, activity.Venue, activity.Address,
			activity.StartTime.Unix(), activity.EndTime.Unix(), activity.MaxPlayers,
			activity.CurrentPlayers, activity.EstimatedFee.String(), activity.Description,
			string(activity.Status), activity.CreatedAt.Unix(), activity.UpdatedAt.Unix(),
		)
		if err != nil {
			return unavailable("failed to insert activity", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO participations (activity_id, user_id, status, joined_at, is_organizer, remark)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			organizer.ActivityID, organizer.UserID, string(organizer.Status),
			organizer.JoinedAt.Unix(), organizer.IsOrganizer, organizer.Remark,
		)
		if err != nil {
			return unavailable("failed to insert organizer participation", err)
		}
		return nil
	})
}

// GetActivity retrieves a non-deleted activity by id.
func (s *Store) GetActivity(ctx context.Context, id string) (*models.Activity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id = ? AND deleted_at IS NULL`, id)

	activity, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("activity %s not found", id)
	}
	if err != nil {
		return nil, unavailable("failed to get activity", err)
	}
	return activity, nil
}

// TransitionActivity performs a guarded status transition. The WHERE clause
// carries the expected source status so a racing transition loses cleanly.
func (s *Store) TransitionActivity(ctx context.Context, id string, from, to models.ActivityStatus, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE activities SET status = ?, updated_at = ?
		 WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		string(to), at.Unix(), id, string(from),
	)
	if err != nil {
		return unavailable("failed to transition activity", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return unavailable("failed to check transition result", err)
	}
	if affected == 0 {
		if _, err := s.GetActivity(ctx, id); err != nil {
			return err
		}
		return apperr.Conflictf("activity %s is no longer %s", id, from)
	}
	return nil
}

// AddParticipant joins a user to an activity: the capacity increment and the
// participation upsert happen in one transaction, with the capacity check in
// the UPDATE guard so concurrent joins on the last slot collapse to one winner.
func (s *Store) AddParticipant(ctx context.Context, activityID string, p *models.Participation) error {
	p.ActivityID = activityID

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var existing sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM participations WHERE activity_id = ? AND user_id = ?`,
			activityID, p.UserID,
		).Scan(&existing)
		if err != nil && err != sql.ErrNoRows {
			return unavailable("failed to check participation", err)
		}
		if existing.Valid && existing.String == string(models.ParticipationConfirmed) {
			return apperr.Conflictf("user %s already joined activity %s", p.UserID, activityID)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE activities SET current_players = current_players + 1, updated_at = ?
			 WHERE id = ? AND deleted_at IS NULL AND status = ?
			   AND current_players < max_players`,
			p.JoinedAt.Unix(), activityID, string(models.ActivityPending),
		)
		if err != nil {
			return unavailable("failed to increment player count", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return unavailable("failed to check join result", err)
		}
		if affected == 0 {
			return s.explainJoinFailure(ctx, tx, activityID)
		}

		if existing.Valid {
			_, err = tx.ExecContext(ctx,
				`UPDATE participations SET status = ?, joined_at = ?, remark = ?
				 WHERE activity_id = ? AND user_id = ?`,
				string(p.Status), p.JoinedAt.Unix(), p.Remark, activityID, p.UserID,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO participations (activity_id, user_id, status, joined_at, is_organizer, remark)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				activityID, p.UserID, string(p.Status), p.JoinedAt.Unix(), p.IsOrganizer, p.Remark,
			)
		}
		if err != nil {
			return unavailable("failed to upsert participation", err)
		}
		return nil
	})
}

// explainJoinFailure turns a failed capacity guard into the precise error.
func (s *Store) explainJoinFailure(ctx context.Context, tx *sql.Tx, activityID string) error {
	var status string
	var current, max int
	err := tx.QueryRowContext(ctx,
		`SELECT status, current_players, max_players FROM activities
		 WHERE id = ? AND deleted_at IS NULL`, activityID,
	).Scan(&status, &current, &max)
	if err == sql.ErrNoRows {
		return apperr.NotFoundf("activity %s not found", activityID)
	}
	if err != nil {
		return unavailable("failed to inspect activity", err)
	}
	if models.ActivityStatus(status) != models.ActivityPending {
		return apperr.Conflictf("activity %s is %s and cannot be joined", activityID, status)
	}
	return apperr.Conflictf("activity %s is full (%d/%d)", activityID, current, max)
}

// RemoveParticipant cancels the user's participation and decrements the
// player counter, flooring at zero, in one transaction.
func (s *Store) RemoveParticipant(ctx context.Context, activityID, userID string, at time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE participations SET status = ?
			 WHERE activity_id = ? AND user_id = ? AND status = ? AND is_organizer = 0`,
			string(models.ParticipationCancelled), activityID, userID,
			string(models.ParticipationConfirmed),
		)
		if err != nil {
			return unavailable("failed to cancel participation", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return unavailable("failed to check leave result", err)
		}
		if affected == 0 {
			return apperr.Conflictf("user %s has no confirmed participation in activity %s", userID, activityID)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE activities SET current_players = MAX(current_players - 1, 0), updated_at = ?
			 WHERE id = ? AND deleted_at IS NULL`,
			at.Unix(), activityID,
		)
		if err != nil {
			return unavailable("failed to decrement player count", err)
		}
		return nil
	})
}

// GetParticipation retrieves one user's participation in an activity.
func (s *Store) GetParticipation(ctx context.Context, activityID, userID string) (*models.Participation, error) {
	p := &models.Participation{}
	var joinedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT activity_id, user_id, status, joined_at, is_organizer, remark
		 FROM participations WHERE activity_id = ? AND user_id = ?`,
		activityID, userID,
	).Scan(&p.ActivityID, &p.UserID, (*string)(&p.Status), &joinedAt, &p.IsOrganizer, &p.Remark)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("user %s is not a participant of activity %s", userID, activityID)
	}
	if err != nil {
		return nil, unavailable("failed to get participation", err)
	}
	p.JoinedAt = time.Unix(joinedAt, 0)
	return p, nil
}

// ListParticipants returns all participations for an activity in join order.
func (s *Store) ListParticipants(ctx context.Context, activityID string) ([]*models.Participation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT activity_id, user_id, status, joined_at, is_organizer, remark
		 FROM participations WHERE activity_id = ? ORDER BY joined_at, user_id`,
		activityID,
	)
	if err != nil {
		return nil, unavailable("failed to list participants", err)
	}
	defer rows.Close()

	var participants []*models.Participation
	for rows.Next() {
		p := &models.Participation{}
		var joinedAt int64
		if err := rows.Scan(&p.ActivityID, &p.UserID, (*string)(&p.Status), &joinedAt, &p.IsOrganizer, &p.Remark); err != nil {
			return nil, unavailable("failed to scan participation", err)
		}
		p.JoinedAt = time.Unix(joinedAt, 0)
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("failed to iterate participants", err)
	}
	return participants, nil
}

// CountConfirmedParticipants counts confirmed participations, organizer included.
func (s *Store) CountConfirmedParticipants(ctx context.Context, activityID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participations WHERE activity_id = ? AND status = ?`,
		activityID, string(models.ParticipationConfirmed),
	).Scan(&count)
	if err != nil {
		return 0, unavailable("failed to count participants", err)
	}
	return count, nil
}

func (s *Store) listActivities(ctx context.Context, where string, args ...any) ([]*models.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE deleted_at IS NULL AND `+where+
			` ORDER BY start_time`, args...)
	if err != nil {
		return nil, unavailable("failed to list activities", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, unavailable("failed to scan activity", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("failed to iterate activities", err)
	}
	return activities, nil
}

// ListActivitiesByOrganizer returns all activities created by a user.
func (s *Store) ListActivitiesByOrganizer(ctx context.Context, organizerID string) ([]*models.Activity, error) {
	return s.listActivities(ctx, "organizer_id = ?", organizerID)
}

// ListActivitiesByStatus returns all activities in the given status.
func (s *Store) ListActivitiesByStatus(ctx context.Context, status models.ActivityStatus) ([]*models.Activity, error) {
	return s.listActivities(ctx, "status = ?", string(status))
}

// ListActivitiesByTimeRange returns activities starting within [lo, hi].
func (s *Store) ListActivitiesByTimeRange(ctx context.Context, lo, hi time.Time) ([]*models.Activity, error) {
	return s.listActivities(ctx, "start_time >= ? AND start_time <= ?", lo.Unix(), hi.Unix())
}

// ListAvailableActivities returns pending activities that still have room.
func (s *Store) ListAvailableActivities(ctx context.Context) ([]*models.Activity, error) {
	return s.listActivities(ctx, "status = ? AND current_players < max_players",
		string(models.ActivityPending))
}
