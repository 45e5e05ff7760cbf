package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"smarttasker/internal/config"
	"smarttasker/internal/model"
	"smarttasker/internal/repository"
	"smarttasker/internal/service"
)

// Server exposes the generation trigger and the thin task/recurrence CRUD
// over HTTP. Identity is the external gateway's job: requests arrive with a
// shared server key and the already-authenticated user id in a header.
type Server struct {
	Engine *gin.Engine

	cfg           config.Config
	userRepo      *repository.UserRepository
	taskSvc       *service.TaskService
	recurringSvc  *service.RecurringService
	generationSvc *service.GenerationService
}

func NewServer(
	cfg config.Config,
	userRepo *repository.UserRepository,
	taskSvc *service.TaskService,
	recurringSvc *service.RecurringService,
	generationSvc *service.GenerationService,
) *Server {
	s := &Server{
		Engine:        gin.Default(),
		cfg:           cfg,
		userRepo:      userRepo,
		taskSvc:       taskSvc,
		recurringSvc:  recurringSvc,
		generationSvc: generationSvc,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	v1 := s.Engine.Group("/api/v1", s.authMiddleware())
	{
		// Sweep trigger for schedulers and operators; needs no user scope.
		v1.POST("/recurring/generate", s.handleGenerate)

		scoped := v1.Group("", s.requireUser())
		{
			scoped.POST("/tasks", s.handleCreateTask)
			scoped.GET("/tasks", s.handleListTasks)
			scoped.GET("/tasks/:id", s.handleGetTask)
			scoped.POST("/tasks/:id/complete", s.handleCompleteTask)
			scoped.DELETE("/tasks/:id", s.handleDeleteTask)

			scoped.POST("/recurring", s.handleCreateRecurring)
			scoped.GET("/recurring", s.handleListRecurring)
			scoped.GET("/recurring/:id", s.handleGetRecurring)
			scoped.GET("/recurring/:id/instances", s.handleListInstances)
			scoped.DELETE("/recurring/:id", s.handleDeleteRecurring)
		}
	}

	s.Engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// authMiddleware checks the shared server key before any core logic runs.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Server-Key")
		if key == "" {
			key = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if key != s.cfg.ServerKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// requireUser resolves the gateway-supplied user id to a known identity row.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}
		user, err := s.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unknown user"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Set("user", user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *model.User {
	return c.MustGet("user").(*model.User)
}
