package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mleng/courtmate/internal/auth"
	"github.com/mleng/courtmate/internal/models"
)

type registerRequest struct {
	Nickname string `json:"nickname" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Token    string `json:"token"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBadRequest(c, "invalid register request")
		return
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		failBadRequest(c, err.Error())
		return
	}

	now := time.Now()
	user := &models.User{
		Nickname:     req.Nickname,
		Phone:        req.Phone,
		PasswordHash: hash,
		Active:       true,
		TotalSettled: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(c.Request.Context(), user); err != nil {
		fail(c, err)
		return
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, sessionResponse{UserID: user.ID, Nickname: user.Nickname, Token: token})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBadRequest(c, "invalid login request")
		return
	}

	user, err := s.passwords.Authenticate(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": errorBody{Code: "unauthorized", Message: err.Error()},
			})
			return
		}
		fail(c, err)
		return
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, sessionResponse{UserID: user.ID, Nickname: user.Nickname, Token: token})
}
