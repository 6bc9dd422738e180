package controllers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/app/services"
	"github.com/yigit/greenleaf/internal/middleware"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

// AnalysisController proxies plant images to the vision model
type AnalysisController struct {
	analysisService *services.AnalysisService
	maxImageBytes   int64
	logger          zerolog.Logger
}

// NewAnalysisController creates a new AnalysisController
func NewAnalysisController(analysisService *services.AnalysisService, maxImageBytes int64, logger zerolog.Logger) *AnalysisController {
	return &AnalysisController{
		analysisService: analysisService,
		maxImageBytes:   maxImageBytes,
		logger:          logger,
	}
}

// AnalyzePlant takes a multipart "image" file and "plantType" field
// POST /api/analyze-plant
func (c *AnalysisController) AnalyzePlant(ctx *gin.Context) {
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

	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, fmt.Errorf("open uploaded image: %w", err))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, c.maxImageBytes))
	if err != nil {
		middleware.HandleAPIError(ctx, fmt.Errorf("read uploaded image: %w", err))
		return
	}

	result, err := c.analysisService.AnalyzePlant(ctx.Request.Context(), &dto.AnalyzePlantInput{
		PlantType: ctx.PostForm("plantType"),
		Image:     image,
		MimeType:  fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}
