package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"smart-budgeter-backend/internal/models"
	"smart-budgeter-backend/internal/repository"
	"smart-budgeter-backend/internal/services/ingest"
)

// maxUploadBytes caps statement uploads at 10 MiB.
const maxUploadBytes = 10 << 20

type StatementHandler struct {
	service *ingest.Service
	uploads *repository.UploadRepository
}

func NewStatementHandler(service *ingest.Service, uploads *repository.UploadRepository) *StatementHandler {
	return &StatementHandler{service: service, uploads: uploads}
}

// Upload accepts a multipart statement file and queues it for background
// processing. Re-uploading identical content returns the existing upload
// with 200 instead of creating a second one.
func (h *StatementHandler) Upload(c *gin.Context) {
	userID := currentUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	fileType, ok := fileTypeFromName(fileHeader.Filename)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type, expected .csv or .pdf"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}

	upload, created, err := h.service.CreateUpload(c.Request.Context(), userID, fileHeader.Filename, fileType, content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "file already uploaded", "upload": upload})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "statement queued for processing", "upload": upload})
}

func (h *StatementHandler) List(c *gin.Context) {
	userID := currentUserID(c)

	uploads, err := h.uploads.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploads": uploads})
}

func (h *StatementHandler) Get(c *gin.Context) {
	userID := currentUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload ID"})
		return
	}

	upload, err := h.uploads.GetByUserAndID(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"upload": upload})
}

func fileTypeFromName(name string) (models.FileType, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return models.FileTypeCSV, true
	case ".pdf":
		return models.FileTypePDF, true
	default:
		return "", false
	}
}
