package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // root directory where files are stored
	baseURL  string // URL prefix under which basePath is served
	logger   zerolog.Logger
}

// NewLocalStorage creates a new LocalStorage instance and ensures basePath exists.
func NewLocalStorage(basePath, baseURL string, logger zerolog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}, nil
}

// BasePath is the directory served as static content.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// SaveFile copies the upload into basePath/subPath under a random name.
func (ls *LocalStorage) SaveFile(ctx context.Context, fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	subPath = strings.Trim(filepath.ToSlash(filepath.Clean("/"+subPath)), "/")
	dir := filepath.Join(ls.basePath, filepath.FromSlash(subPath))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String() + extensionFor(fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	url := ls.baseURL + "/" + path.Join(subPath, name)
	ls.logger.Info().Str("filename", fileHeader.Filename).Str("url", url).Msg("File saved")
	return url, nil
}

// DeleteFile removes a file given the URL returned by SaveFile.
func (ls *LocalStorage) DeleteFile(ctx context.Context, fileURL string) error {
	rel, ok := ls.relativePath(fileURL)
	if !ok {
		return fmt.Errorf("file %q is not managed by this storage", fileURL)
	}

	physicalPath := filepath.Join(ls.basePath, filepath.FromSlash(rel))
	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			ls.logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// relativePath maps a public URL back to a path inside basePath, refusing traversal.
func (ls *LocalStorage) relativePath(fileURL string) (string, bool) {
	if !strings.HasPrefix(fileURL, ls.baseURL+"/") {
		return "", false
	}
	rel := path.Clean(strings.TrimPrefix(fileURL, ls.baseURL+"/"))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || strings.HasPrefix(rel, "/") {
		return "", false
	}
	return rel, true
}
