package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smart-budgeter-backend/internal/ml"
	"smart-budgeter-backend/internal/services/classify"
)

type MLHandler struct {
	service *classify.Service
}

func NewMLHandler(service *classify.Service) *MLHandler {
	return &MLHandler{service: service}
}

// Initialize trains from the built-in seed corpus, ignoring user data.
func (h *MLHandler) Initialize(c *gin.Context) {
	result, err := h.service.Initialize(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "classifier initialized", "result": result})
}

// Train retrains from the caller's confirmed transactions.
func (h *MLHandler) Train(c *gin.Context) {
	userID := currentUserID(c)

	result, err := h.service.Train(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ml.ErrInsufficientData) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "classifier trained", "result": result})
}

// Predict classifies one or more descriptions without touching stored data.
func (h *MLHandler) Predict(c *gin.Context) {
	var payload struct {
		Description  string   `json:"description"`
		Descriptions []string `json:"descriptions"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if len(payload.Descriptions) > 0 {
		c.JSON(http.StatusOK, gin.H{"predictions": h.service.PredictBatch(payload.Descriptions)})
		return
	}
	if payload.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description or descriptions is required"})
		return
	}

	category, confidence := h.service.Predict(payload.Description)
	c.JSON(http.StatusOK, gin.H{"prediction": ml.Prediction{Category: category, Confidence: confidence}})
}

func (h *MLHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Status())
}

// FeatureImportance lists the strongest vocabulary terms for one category.
func (h *MLHandler) FeatureImportance(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category parameter is required"})
		return
	}

	topN := 20
	if raw := c.Query("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid top_n parameter"})
			return
		}
		topN = n
	}

	features := h.service.FeatureImportance(category, topN)
	if features == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no model loaded or unknown category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "features": features})
}
