package uploads

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/pkg/storage"
)

// MaxFileSize caps uploads at 10 MiB
const MaxFileSize = 10 << 20

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

type Handler struct {
	uploader storage.Uploader
	logger   *zap.Logger
}

func NewHandler(uploader storage.Uploader, logger *zap.Logger) *Handler {
	return &Handler{uploader: uploader, logger: logger}
}

// RegisterRoutes wires the authenticated upload route
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/uploads", h.Upload)
}

// Upload accepts a multipart file and stores it under uploads/{uuid}.{ext}
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file field"})
		return
	}
	if file.Size > MaxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds 10 MB limit"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File type %q is not allowed", ext)})
		return
	}

	src, err := file.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer src.Close()

	key := "uploads/" + uuid.New().String() + ext
	url, err := h.uploader.Upload(c.Request.Context(), key, contentType, src)
	if err != nil {
		h.logger.Error("Failed to upload file", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url, "key": key})
}
