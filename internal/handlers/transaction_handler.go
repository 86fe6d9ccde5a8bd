package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smart-budgeter-backend/internal/fingerprint"
	"smart-budgeter-backend/internal/models"
	"smart-budgeter-backend/internal/repository"
)

type TransactionHandler struct {
	transactions *repository.TransactionRepository
	categories   *repository.CategoryRepository
}

func NewTransactionHandler(transactions *repository.TransactionRepository, categories *repository.CategoryRepository) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, categories: categories}
}

func (h *TransactionHandler) List(c *gin.Context) {
	userID := currentUserID(c)

	filter, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txs, err := h.transactions.ListByUser(c.Request.Context(), userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs, "count": len(txs)})
}

func (h *TransactionHandler) Get(c *gin.Context) {
	userID := currentUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	tx, err := h.transactions.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// Create records a manual transaction. It goes through the same fingerprint
// as ingested ones, so manually entering a line that a statement later
// re-imports does not duplicate it.
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := currentUserID(c)

	var payload struct {
		Date        string  `json:"date" binding:"required"`
		Description string  `json:"description" binding:"required"`
		Amount      string  `json:"amount" binding:"required"`
		Type        string  `json:"transaction_type" binding:"required"`
		CategoryID  *string `json:"category_id"`
		Notes       string  `json:"notes"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil || amount.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	txType := models.TransactionType(payload.Type)
	if txType != models.TypeDebit && txType != models.TypeCredit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_type must be debit or credit"})
		return
	}

	tx := models.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        date,
		Description: payload.Description,
		Amount:      amount,
		Type:        txType,
		Notes:       payload.Notes,
		Fingerprint: fingerprint.Compute(userID, date, payload.Description, amount, txType),
	}

	if payload.CategoryID != nil {
		categoryID, err := uuid.Parse(*payload.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category ID"})
			return
		}
		tx.CategoryID = &categoryID
	}

	if err := h.transactions.Create(c.Request.Context(), &tx); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "transaction already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// Summary aggregates income, spending and per-category totals over an
// optional date window.
func (h *TransactionHandler) Summary(c *gin.Context) {
	userID := currentUserID(c)
	ctx := c.Request.Context()

	start, err := dateParam(c, "start_date")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := dateParam(c, "end_date")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	income, err := h.transactions.SumByType(ctx, userID, models.TypeCredit, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	spending, err := h.transactions.SumByType(ctx, userID, models.TypeDebit, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	byCategory, err := h.transactions.DebitTotalsByCategory(ctx, userID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	count, err := h.transactions.CountByUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_income":   income,
		"total_spending": spending,
		"net":            income.Sub(spending),
		"by_category":    byCategory,
		"count":          count,
	})
}

func (h *TransactionHandler) Categories(c *gin.Context) {
	categories, err := h.categories.ListVisible(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func filterFromQuery(c *gin.Context) (repository.TransactionFilter, error) {
	var filter repository.TransactionFilter

	start, err := dateParam(c, "start_date")
	if err != nil {
		return filter, err
	}
	filter.StartDate = start

	end, err := dateParam(c, "end_date")
	if err != nil {
		return filter, err
	}
	filter.EndDate = end

	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, errInvalidParam("category_id")
		}
		filter.CategoryID = &id
	}
	if raw := c.Query("type"); raw != "" {
		t := models.TransactionType(raw)
		if t != models.TypeDebit && t != models.TypeCredit {
			return filter, errInvalidParam("type")
		}
		filter.Type = t
	}
	if raw := c.Query("recurring"); raw != "" {
		recurring := raw == "true"
		filter.IsRecurring = &recurring
	}
	if raw := c.Query("min_amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, errInvalidParam("min_amount")
		}
		filter.MinAmount = &amount
	}
	if raw := c.Query("max_amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, errInvalidParam("max_amount")
		}
		filter.MaxAmount = &amount
	}
	filter.Search = strings.ToLower(strings.TrimSpace(c.Query("search")))

	return filter, nil
}

func dateParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, errInvalidParam(name)
	}
	return &t, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string { return "invalid " + string(e) + " parameter" }
