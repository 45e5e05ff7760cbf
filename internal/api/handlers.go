package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"smarttasker/internal/service"
)

func (s *Server) handleGenerate(c *gin.Context) {
	lookAhead := s.cfg.LookAheadDays
	if raw := c.Query("lookAhead"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lookAhead must be a positive integer"})
			return
		}
		lookAhead = n
	}

	report, err := s.generationSvc.GenerateDueTasks(c.Request.Context(), time.Now(), lookAhead)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"processed": report.Processed,
		"results":   report.Results,
	})
}

type taskRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	DueDate     string   `json:"due_date"`
	Tags        []string `json:"tags"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Tags:        req.Tags,
	}
	if req.DueDate != "" {
		due, err := parseTimestamp(req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		input.DueDate = &due
	}

	task, err := s.taskSvc.CreateTask(c.Request.Context(), currentUser(c), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.taskSvc.ListTasks(c.Request.Context(), currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.taskSvc.GetTask(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.renderLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	task, err := s.taskSvc.CompleteTask(c.Request.Context(), currentUser(c), c.Param("id"), time.Now().UTC())
	if err != nil {
		s.renderLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.taskSvc.DeleteTask(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type recurringRequest struct {
	TaskTemplateID string `json:"task_template_id" binding:"required"`
	Frequency      string `json:"frequency" binding:"required"`
	IntervalCount  int    `json:"interval_count"`
	Weekdays       []int  `json:"weekdays"`
	MonthDay       *int   `json:"month_day"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date"`
	MaxInstances   *int   `json:"max_instances"`
}

func (s *Server) handleCreateRecurring(c *gin.Context) {
	var req recurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input := service.RecurringInput{
		TaskTemplateID: req.TaskTemplateID,
		Frequency:      req.Frequency,
		IntervalCount:  req.IntervalCount,
		Weekdays:       req.Weekdays,
		MonthDay:       req.MonthDay,
		StartDate:      start,
		MaxInstances:   req.MaxInstances,
	}
	if req.EndDate != "" {
		end, err := parseDate(req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		input.EndDate = &end
	}

	cfg, err := s.recurringSvc.CreateConfig(c.Request.Context(), currentUser(c), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

func (s *Server) handleListRecurring(c *gin.Context) {
	configs, err := s.recurringSvc.ListConfigs(c.Request.Context(), currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, configs)
}

func (s *Server) handleGetRecurring(c *gin.Context) {
	cfg, err := s.recurringSvc.GetConfig(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.renderLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) handleListInstances(c *gin.Context) {
	user := currentUser(c)
	cfg, err := s.recurringSvc.GetConfig(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		s.renderLookupError(c, err)
		return
	}
	instances, err := s.taskSvc.ListInstances(c.Request.Context(), cfg.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, instances)
}

func (s *Server) handleDeleteRecurring(c *gin.Context) {
	if err := s.recurringSvc.DeleteConfig(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) renderLookupError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func parseDate(raw string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", raw, time.UTC)
}

func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return parseDate(raw)
}
