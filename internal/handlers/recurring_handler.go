package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smart-budgeter-backend/internal/repository"
	"smart-budgeter-backend/internal/services/recurring"
)

type RecurringHandler struct {
	detector *recurring.Detector
	patterns *repository.PatternRepository
}

func NewRecurringHandler(detector *recurring.Detector, patterns *repository.PatternRepository) *RecurringHandler {
	return &RecurringHandler{detector: detector, patterns: patterns}
}

func (h *RecurringHandler) List(c *gin.Context) {
	userID := currentUserID(c)

	patterns, err := h.patterns.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"patterns": patterns})
}

// Detect reruns pattern detection synchronously. Ingestion triggers the same
// scan in the background; this endpoint exists for manual refresh.
func (h *RecurringHandler) Detect(c *gin.Context) {
	userID := currentUserID(c)

	detected, err := h.detector.Detect(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "detection complete", "patterns_detected": detected})
}
