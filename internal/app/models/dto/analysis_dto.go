package dto

import "encoding/json"

// AnalyzePlantInput is what the analysis controller extracts from the multipart form
type AnalyzePlantInput struct {
	PlantType string
	Image     []byte
	MimeType  string
}

// TreatmentOption is one treatment suggested by the model
type TreatmentOption struct {
	Type   string `json:"type"`
	Method string `json:"method"`
}

// DiseasePrediction is one candidate diagnosis returned by the model
type DiseasePrediction struct {
	Disease     string            `json:"disease"`
	Accuracy    string            `json:"accuracy"`
	Description string            `json:"description"`
	Treatment   []TreatmentOption `json:"treatment"`
}

// PlantAnalysisResponse carries the raw model text plus whatever could be parsed from it.
// Result is nil and ParseError set when the text is not valid JSON.
type PlantAnalysisResponse struct {
	PlantType   string              `json:"plantType"`
	Analysis    string              `json:"analysis"`
	Result      json.RawMessage     `json:"result,omitempty"`
	Predictions []DiseasePrediction `json:"predictions"`
	ModelError  string              `json:"modelError,omitempty"`
	ParseError  string              `json:"parseError,omitempty"`
}
