package dto

// UploadResponse is returned after an image is stored
type UploadResponse struct {
	URL         string `json:"url"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
}
