package filestorage

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned for uploads that are not images.
var ErrUnsupportedType = errors.New("unsupported file type")

// FileStorage stores user uploaded images and returns a stable URL for them.
type FileStorage interface {
	// SaveFile stores the file under subPath and returns its public URL
	SaveFile(ctx context.Context, fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a file previously returned by SaveFile. Unknown files are not an error.
	DeleteFile(ctx context.Context, fileURL string) error
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// DetectImageType sniffs the first bytes of data and returns the image MIME type.
// Files that do not sniff as an image fall back to the declared header type
// when that one is an image (HEIC is not recognised by the sniffer).
func DetectImageType(data []byte, declared string) (string, error) {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed, nil
	}
	declared = strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	if _, ok := imageExtensions[declared]; ok {
		return declared, nil
	}
	return "", ErrUnsupportedType
}

// extensionFor picks a file extension from the original name, falling back to the content type.
func extensionFor(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	return imageExtensions[contentType]
}
