package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
	"github.com/yigit/greenleaf/internal/pkg/vision"
)

// pngHeader sniffs as image/png
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeVision struct {
	text string
	err  error
	got  vision.Request
}

func (f *fakeVision) Analyze(_ context.Context, req vision.Request) (string, error) {
	f.got = req
	return f.text, f.err
}

const modelJSON = `{
  "predictions": [
    {
      "disease": "Blister Blight",
      "accuracy": 87,
      "description": "Fungal disease of young tea leaves.",
      "treatment": [
        {"type": "eco-friendly", "method": "Prune and remove infected shoots"},
        {"type": "chemical", "method": "Copper oxychloride spray"}
      ]
    },
    {"disease": "Grey Blight", "accuracy": "9%", "description": "Leaf spots.", "treatment": []}
  ]
}`

func TestAnalyzePlant(t *testing.T) {
	client := &fakeVision{text: "```json\n" + modelJSON + "\n```"}
	svc := NewAnalysisService(client, zerolog.Nop())

	resp, err := svc.AnalyzePlant(context.Background(), &dto.AnalyzePlantInput{
		PlantType: "Tea",
		Image:     pngHeader,
		MimeType:  "application/octet-stream",
	})
	require.NoError(t, err)

	assert.Equal(t, "image/png", client.got.MimeType)
	assert.Contains(t, client.got.Prompt, "The plant type is: tea.")
	assert.Contains(t, client.got.Prompt, "Respond ONLY in JSON Object.")

	assert.Equal(t, "Tea", resp.PlantType)
	assert.Equal(t, client.text, resp.Analysis)
	assert.JSONEq(t, modelJSON, string(resp.Result))
	assert.Empty(t, resp.ParseError)
	require.Len(t, resp.Predictions, 2)
	assert.Equal(t, "Blister Blight", resp.Predictions[0].Disease)
	assert.Equal(t, "87%", resp.Predictions[0].Accuracy)
	assert.Equal(t, []dto.TreatmentOption{
		{Type: "eco-friendly", Method: "Prune and remove infected shoots"},
		{Type: "chemical", Method: "Copper oxychloride spray"},
	}, resp.Predictions[0].Treatment)
	assert.Equal(t, "9%", resp.Predictions[1].Accuracy)
}

func TestAnalyzePlantNonJSON(t *testing.T) {
	client := &fakeVision{text: "I cannot see a plant in this image."}
	svc := NewAnalysisService(client, zerolog.Nop())

	resp, err := svc.AnalyzePlant(context.Background(), &dto.AnalyzePlantInput{PlantType: "Cinnamon", Image: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, ErrMsgNotJSON, resp.ParseError)
	assert.Equal(t, client.text, resp.Analysis)
	assert.Nil(t, resp.Result)
	assert.Empty(t, resp.Predictions)
}

func TestAnalyzePlantModelReportsError(t *testing.T) {
	client := &fakeVision{text: `{"error": "The image does not contain a tea or cinnamon plant."}`}
	svc := NewAnalysisService(client, zerolog.Nop())

	resp, err := svc.AnalyzePlant(context.Background(), &dto.AnalyzePlantInput{PlantType: "Tea", Image: pngHeader})
	require.NoError(t, err)
	assert.Empty(t, resp.ParseError)
	assert.Equal(t, "The image does not contain a tea or cinnamon plant.", resp.ModelError)
}

func TestAnalyzePlantFailures(t *testing.T) {
	svc := NewAnalysisService(&fakeVision{err: errors.New("quota exceeded")}, zerolog.Nop())

	_, err := svc.AnalyzePlant(context.Background(), &dto.AnalyzePlantInput{PlantType: "Tea", Image: pngHeader})
	assert.ErrorIs(t, err, apperrors.ErrExternalService)

	_, err = svc.AnalyzePlant(context.Background(), &dto.AnalyzePlantInput{PlantType: "Tea"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.AnalyzePlant(context.Background(), &dto.AnalyzePlantInput{PlantType: " ", Image: pngHeader})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.AnalyzePlant(context.Background(), &dto.AnalyzePlantInput{PlantType: "Tea", Image: []byte("plain text"), MimeType: "text/plain"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	disabled := NewAnalysisService(vision.DisabledClient{}, zerolog.Nop())
	_, err = disabled.AnalyzePlant(context.Background(), &dto.AnalyzePlantInput{PlantType: "Tea", Image: pngHeader})
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"  ```json\n{\"a\":1}\n```  ", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```{\"a\":1}```", "{\"a\":1}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripCodeFence(tt.in), tt.in)
	}
}
