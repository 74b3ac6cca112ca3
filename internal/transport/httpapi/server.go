// Package httpapi exposes the service over HTTP with gin. Handlers only bind
// and translate; every rule lives in the services.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mleng/courtmate/internal/auth"
	"github.com/mleng/courtmate/internal/service"
	"github.com/mleng/courtmate/internal/storage"
)

// Server holds the handler dependencies.
type Server struct {
	activities *service.ActivityService
	expenses   *service.ExpenseService
	users      storage.UserStore
	passwords  *auth.PasswordAuthenticator
	tokens     *auth.JWTManager
}

// NewServer creates the HTTP server facade.
func NewServer(
	activities *service.ActivityService,
	expenses *service.ExpenseService,
	users storage.UserStore,
	passwords *auth.PasswordAuthenticator,
	tokens *auth.JWTManager,
) *Server {
	return &Server{
		activities: activities,
		expenses:   expenses,
		users:      users,
		passwords:  passwords,
		tokens:     tokens,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), recordMetrics())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", s.register)
		authGroup.POST("/login", s.login)
	}

	protected := api.Group("")
	protected.Use(requireAuth(s.tokens))
	{
		protected.POST("/activities", s.createActivity)
		protected.GET("/activities", s.listActivities)
		protected.GET("/activities/:id", s.getActivity)
		protected.POST("/activities/:id/join", s.joinActivity)
		protected.POST("/activities/:id/leave", s.leaveActivity)
		protected.POST("/activities/:id/start", s.startActivity)
		protected.POST("/activities/:id/complete", s.completeActivity)
		protected.POST("/activities/:id/cancel", s.cancelActivity)
		protected.GET("/activities/:id/expenses", s.listActivityExpenses)
		protected.GET("/activities/:id/summary", s.activitySummary)

		protected.POST("/expenses", s.createExpense)
		protected.DELETE("/expenses/:id", s.deleteExpense)
		protected.POST("/expenses/:id/shares", s.createShares)
		protected.GET("/expenses/:id/shares", s.listShares)

		protected.POST("/shares/:id/confirm", s.confirmShare)
		protected.POST("/shares/:id/settle", s.settleShare)

		protected.GET("/users/:id", s.getUser)
		protected.GET("/me", s.me)
		protected.GET("/me/shares", s.myShares)
	}

	return router
}
