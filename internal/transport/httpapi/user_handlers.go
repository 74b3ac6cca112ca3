package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mleng/courtmate/internal/models"
)

type userResponse struct {
	ID           string `json:"id"`
	Nickname     string `json:"nickname"`
	TotalSettled string `json:"total_settled"`
	CreatedAt    int64  `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Nickname:     u.Nickname,
		TotalSettled: u.TotalSettled.String(),
		CreatedAt:    u.CreatedAt.Unix(),
	}
}

func (s *Server) getUser(c *gin.Context) {
	user, err := s.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, toUserResponse(user))
}

// me returns the calling user's own account, phone included.
func (s *Server) me(c *gin.Context) {
	user, err := s.users.GetUser(c.Request.Context(), callerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	resp := struct {
		userResponse
		Phone string `json:"phone"`
	}{toUserResponse(user), user.Phone}
	ok(c, http.StatusOK, resp)
}
