package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/middleware"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
	"github.com/yigit/greenleaf/internal/pkg/filestorage"
)

// UploadController stores images and hands back the URL clients put in imageUrl
type UploadController struct {
	storage       filestorage.FileStorage
	subPath       string
	maxImageBytes int64
	logger        zerolog.Logger
}

// NewUploadController creates a new UploadController
func NewUploadController(storage filestorage.FileStorage, subPath string, maxImageBytes int64, logger zerolog.Logger) *UploadController {
	return &UploadController{
		storage:       storage,
		subPath:       subPath,
		maxImageBytes: maxImageBytes,
		logger:        logger,
	}
}

// UploadImage saves the multipart "image" file
// POST /api/uploads/image
func (c *UploadController) UploadImage(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("image", "No image uploaded"))
		return
	}
	if fileHeader.Size > c.maxImageBytes {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("image",
			fmt.Sprintf("Image exceeds the %d MB limit", c.maxImageBytes>>20)))
		return
	}

	contentType, err := sniffUpload(fileHeader)
	if err != nil {
		if errors.Is(err, filestorage.ErrUnsupportedType) {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("image", "Uploaded file is not an image"))
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	url, err := c.storage.SaveFile(ctx.Request.Context(), fileHeader, c.subPath)
	if err != nil {
		c.logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to store upload")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewMessageResponse("Image uploaded successfully", dto.UploadResponse{
		URL:         url,
		FileName:    fileHeader.Filename,
		FileSize:    fileHeader.Size,
		ContentType: contentType,
	}))
}

// sniffUpload checks the first bytes of the upload for an image signature
func sniffUpload(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read uploaded file: %w", err)
	}
	return filestorage.DetectImageType(head[:n], fileHeader.Header.Get("Content-Type"))
}
