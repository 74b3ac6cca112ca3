package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mleng/courtmate/internal/models"
	"github.com/mleng/courtmate/internal/observability"
	"github.com/mleng/courtmate/internal/service"
)

type createActivityRequest struct {
	Title        string `json:"title" binding:"required"`
	Venue        string `json:"venue" binding:"required"`
	Address      string `json:"address"`
	StartTime    int64  `json:"start_time" binding:"required"`
	EndTime      int64  `json:"end_time" binding:"required"`
	MaxPlayers   int    `json:"max_players" binding:"required"`
	EstimatedFee string `json:"estimated_fee"`
	Description  string `json:"description"`
}

type activityResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	OrganizerID    string `json:"organizer_id"`
	Venue          string `json:"venue"`
	Address        string `json:"address"`
	StartTime      int64  `json:"start_time"`
	EndTime        int64  `json:"end_time"`
	MaxPlayers     int    `json:"max_players"`
	CurrentPlayers int    `json:"current_players"`
	EstimatedFee   string `json:"estimated_fee"`
	Description    string `json:"description"`
	Status         string `json:"status"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
}

func toActivityResponse(a *models.Activity) activityResponse {
	return activityResponse{
		ID:             a.ID,
		Title:          a.Title,
		OrganizerID:    a.OrganizerID,
		Venue:          a.Venue,
		Address:        a.Address,
		StartTime:      a.StartTime.Unix(),
		EndTime:        a.EndTime.Unix(),
		MaxPlayers:     a.MaxPlayers,
		CurrentPlayers: a.CurrentPlayers,
		EstimatedFee:   a.EstimatedFee.String(),
		Description:    a.Description,
		Status:         string(a.Status),
		CreatedAt:      a.CreatedAt.Unix(),
		UpdatedAt:      a.UpdatedAt.Unix(),
	}
}

func toActivityResponses(activities []*models.Activity) []activityResponse {
	out := make([]activityResponse, len(activities))
	for i, a := range activities {
		out[i] = toActivityResponse(a)
	}
	return out
}

type participantResponse struct {
	UserID      string `json:"user_id"`
	Status      string `json:"status"`
	JoinedAt    int64  `json:"joined_at"`
	IsOrganizer bool   `json:"is_organizer"`
	Remark      string `json:"remark,omitempty"`
}

func (s *Server) createActivity(c *gin.Context) {
	var req createActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBadRequest(c, "invalid create activity request")
		return
	}

	fee := decimal.Zero
	if req.EstimatedFee != "" {
		var err error
		fee, err = decimal.NewFromString(req.EstimatedFee)
		if err != nil {
			failBadRequest(c, "estimated_fee is not a valid amount")
			return
		}
	}

	activity, err := s.activities.Create(c.Request.Context(), service.CreateActivityInput{
		OrganizerID:  callerID(c),
		Title:        req.Title,
		Venue:        req.Venue,
		Address:      req.Address,
		StartTime:    time.Unix(req.StartTime, 0),
		EndTime:      time.Unix(req.EndTime, 0),
		MaxPlayers:   req.MaxPlayers,
		EstimatedFee: fee,
		Description:  req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}

	observability.RecordActivityCreated()
	ok(c, http.StatusCreated, toActivityResponse(activity))
}

func (s *Server) getActivity(c *gin.Context) {
	detail, err := s.activities.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	participants := make([]participantResponse, len(detail.Participants))
	for i, p := range detail.Participants {
		participants[i] = participantResponse{
			UserID:      p.UserID,
			Status:      string(p.Status),
			JoinedAt:    p.JoinedAt.Unix(),
			IsOrganizer: p.IsOrganizer,
			Remark:      p.Remark,
		}
	}

	ok(c, http.StatusOK, gin.H{
		"activity":     toActivityResponse(detail.Activity),
		"participants": participants,
	})
}

// listActivities serves the query surface: by organizer, by status, by start
// time range, or only those still open for joining.
func (s *Server) listActivities(c *gin.Context) {
	ctx := c.Request.Context()

	switch {
	case c.Query("available") == "true":
		activities, err := s.activities.ListAvailable(ctx)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, toActivityResponses(activities))

	case c.Query("organizer_id") != "":
		activities, err := s.activities.ListByOrganizer(ctx, c.Query("organizer_id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, toActivityResponses(activities))

	case c.Query("status") != "":
		activities, err := s.activities.ListByStatus(ctx, models.ActivityStatus(c.Query("status")))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, toActivityResponses(activities))

	case c.Query("from") != "" && c.Query("to") != "":
		var q struct {
			From int64 `form:"from"`
			To   int64 `form:"to"`
		}
		if err := c.ShouldBindQuery(&q); err != nil {
			failBadRequest(c, "from and to must be unix timestamps")
			return
		}
		activities, err := s.activities.ListByTimeRange(ctx, time.Unix(q.From, 0), time.Unix(q.To, 0))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, toActivityResponses(activities))

	default:
		failBadRequest(c, "specify one of: available=true, organizer_id, status, or from/to")
	}
}

type joinRequest struct {
	Remark string `json:"remark"`
}

func (s *Server) joinActivity(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		failBadRequest(c, "invalid join request")
		return
	}

	err := s.activities.Join(c.Request.Context(), c.Param("id"), callerID(c), req.Remark)
	if err != nil {
		observability.RecordJoin("conflict")
		fail(c, err)
		return
	}

	observability.RecordJoin("ok")
	ok(c, http.StatusOK, gin.H{"joined": true})
}

func (s *Server) leaveActivity(c *gin.Context) {
	if err := s.activities.Leave(c.Request.Context(), c.Param("id"), callerID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"left": true})
}

func (s *Server) startActivity(c *gin.Context) {
	if err := s.activities.Start(c.Request.Context(), c.Param("id"), callerID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"status": string(models.ActivityOngoing)})
}

func (s *Server) completeActivity(c *gin.Context) {
	if err := s.activities.Complete(c.Request.Context(), c.Param("id"), callerID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"status": string(models.ActivityCompleted)})
}

func (s *Server) cancelActivity(c *gin.Context) {
	if err := s.activities.Cancel(c.Request.Context(), c.Param("id"), callerID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"status": string(models.ActivityCancelled)})
}
