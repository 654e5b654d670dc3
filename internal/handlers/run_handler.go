package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/ema-randomizer/internal/repositories"
	"github.com/ArowuTest/ema-randomizer/internal/services"
)

const defaultRunsLimit = 20

// RunHandler handles assignment run HTTP requests
type RunHandler struct {
	runService services.AssignmentService
	auditRepo  repositories.DrawAuditRepository
	mu         sync.Mutex // one run at a time
}

// NewRunHandler creates a new RunHandler
func NewRunHandler(runService services.AssignmentService, auditRepo repositories.DrawAuditRepository) *RunHandler {
	return &RunHandler{
		runService: runService,
		auditRepo:  auditRepo,
	}
}

// TriggerRun handles POST /runs
func (h *RunHandler) TriggerRun(c *gin.Context) {
	if !h.mu.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "An assignment run is already in progress"})
		return
	}
	defer h.mu.Unlock()

	// a dropped client connection must not interrupt a run halfway through a participant
	ctx := context.WithoutCancel(c.Request.Context())
	report, err := h.runService.Run(ctx)
	if err != nil {
		status := http.StatusInternalServerError
		var invalid *services.ValidationError
		switch {
		case errors.Is(err, services.ErrAuthentication):
			status = http.StatusBadGateway
		case errors.As(err, &invalid):
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": "Assignment run failed: " + err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Assignment run completed", "report": report})
}

// GetRecentRuns handles GET /runs
func (h *RunHandler) GetRecentRuns(c *gin.Context) {
	limit := defaultRunsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}
	runs, err := h.auditRepo.FindRecentRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve runs: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}
