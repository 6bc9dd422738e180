package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
	"github.com/yigit/greenleaf/internal/pkg/filestorage"
	"github.com/yigit/greenleaf/internal/pkg/metrics"
	"github.com/yigit/greenleaf/internal/pkg/vision"
)

// Analysis outcomes, used as metric labels
const (
	outcomeOK         = "ok"
	outcomeModelError = "model_error"
	outcomeParseError = "parse_error"
	outcomeRejected   = "rejected"
)

// ErrMsgNotJSON is reported in ParseError when the model text is not JSON
const ErrMsgNotJSON = "model response is not valid JSON"

const plantPromptTemplate = `You are a tea and cinnamon plant disease detection expert.

The plant type is: %s.

Given the image of this %s plant, analyze it and respond in **JSON format** with:
- Top 3 disease predictions
- Accuracy percentage
- Description of the disease
- Eco-friendly treatment suggestions first (like neem oil, pruning), and only mention 1-2 chemical options at the end if necessary.

Format:
{
    "predictions": [
        {
            "disease": "Disease Name",
            "accuracy": as a percentage,
            "description": "Short explanation of the disease.",
            "treatment": [
                {
                    "type": "eco-friendly",
                    "method": "Description of eco-friendly treatment"
                },
                {
                    "type": "chemical",
                    "method": "Description of chemical treatment"
                }
            ]
        }
    ]
}

If the image does not contain a plant, or if the plant is not a tea or cinnamon plant, or if any other issue arises, respond with an error message in JSON format.

Respond ONLY in JSON Object.`

// BuildPlantPrompt returns the instructions sent along with the image
func BuildPlantPrompt(plantType string) string {
	return fmt.Sprintf(plantPromptTemplate, strings.ToLower(plantType), plantType)
}

// AnalysisService proxies plant images to the vision model
type AnalysisService struct {
	client vision.Client
	logger zerolog.Logger
}

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(client vision.Client, logger zerolog.Logger) *AnalysisService {
	return &AnalysisService{client: client, logger: logger}
}

// AnalyzePlant sends the image to the model and parses what it can from the answer.
// Text that is not JSON is still returned, with ParseError set.
func (s *AnalysisService) AnalyzePlant(ctx context.Context, input *dto.AnalyzePlantInput) (*dto.PlantAnalysisResponse, error) {
	plantType := strings.TrimSpace(input.PlantType)
	if len(input.Image) == 0 {
		metrics.RecordAnalysis(plantType, outcomeRejected, 0)
		return nil, apperrors.NewValidationError("image", "No image uploaded")
	}
	if plantType == "" {
		metrics.RecordAnalysis(plantType, outcomeRejected, 0)
		return nil, apperrors.NewValidationError("plantType", "Plant type is required")
	}
	mimeType, err := filestorage.DetectImageType(input.Image, input.MimeType)
	if err != nil {
		metrics.RecordAnalysis(plantType, outcomeRejected, 0)
		return nil, apperrors.NewValidationError("image", "Uploaded file is not an image")
	}

	start := time.Now()
	text, err := s.client.Analyze(ctx, vision.Request{
		Prompt:   BuildPlantPrompt(plantType),
		Image:    input.Image,
		MimeType: mimeType,
	})
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordAnalysis(plantType, outcomeModelError, elapsed)
		s.logger.Error().Err(err).Str("plantType", plantType).Dur("elapsed", elapsed).Msg("Vision model call failed")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewExternalServiceError("Plant analysis timed out", err)
		}
		return nil, apperrors.NewExternalServiceError("Failed to analyze plant image", err)
	}

	resp := ParseAnalysis(plantType, text)
	outcome := outcomeOK
	if resp.ParseError != "" {
		outcome = outcomeParseError
		s.logger.Warn().Err(apperrors.ErrParse).Str("plantType", plantType).Msg("Vision model returned non-JSON text")
	}
	metrics.RecordAnalysis(plantType, outcome, elapsed)
	return resp, nil
}

// StripCodeFence removes a surrounding markdown code fence such as ```json ... ```
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		// drop the language tag line
		if tag := strings.TrimSpace(text[:nl]); !strings.ContainsAny(tag, "{[") {
			text = text[nl+1:]
		}
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ParseAnalysis builds the response for raw model text
func ParseAnalysis(plantType, text string) *dto.PlantAnalysisResponse {
	resp := &dto.PlantAnalysisResponse{
		PlantType:   plantType,
		Analysis:    text,
		Predictions: []dto.DiseasePrediction{},
	}

	cleaned := StripCodeFence(text)
	if !gjson.Valid(cleaned) || !strings.HasPrefix(cleaned, "{") {
		resp.ParseError = ErrMsgNotJSON
		return resp
	}
	resp.Result = json.RawMessage(cleaned)

	parsed := gjson.Parse(cleaned)
	parsed.Get("predictions").ForEach(func(_, p gjson.Result) bool {
		prediction := dto.DiseasePrediction{
			Disease:     p.Get("disease").String(),
			Accuracy:    accuracyString(p.Get("accuracy")),
			Description: p.Get("description").String(),
			Treatment:   []dto.TreatmentOption{},
		}
		p.Get("treatment").ForEach(func(_, t gjson.Result) bool {
			prediction.Treatment = append(prediction.Treatment, dto.TreatmentOption{
				Type:   t.Get("type").String(),
				Method: t.Get("method").String(),
			})
			return true
		})
		resp.Predictions = append(resp.Predictions, prediction)
		return true
	})

	// the prompt asks for an error object when the photo is unusable
	if len(resp.Predictions) == 0 {
		for _, key := range []string{"error", "message", "error.message"} {
			if v := parsed.Get(key); v.Exists() && v.Type == gjson.String {
				resp.ModelError = v.String()
				break
			}
		}
	}
	return resp
}

// accuracyString renders 85, 0.85 style numbers and "85%" strings alike as "85%"
func accuracyString(v gjson.Result) string {
	switch v.Type {
	case gjson.Number:
		n := v.Float()
		if n > 0 && n < 1 {
			n *= 100
		}
		return strconv.FormatFloat(math.Round(n*100)/100, 'f', -1, 64) + "%"
	case gjson.String:
		s := strings.TrimSpace(v.String())
		if s != "" && !strings.HasSuffix(s, "%") {
			s += "%"
		}
		return s
	}
	return ""
}
