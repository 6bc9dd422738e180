package filestorage

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// S3Config configures S3Storage.
type S3Config struct {
	Bucket         string
	Region         string
	Endpoint       string // optional, for S3 compatible stores
	ForcePathStyle bool
	PublicURL      string // optional CDN/base URL; defaults to the upload location
	ObjectACL      string
	KeyPrefix      string
}

// S3Storage stores uploads in an S3 bucket.
type S3Storage struct {
	cfg      S3Config
	uploader s3manageriface.UploaderAPI
	client   s3iface.S3API
	logger   zerolog.Logger
}

// NewS3Storage opens an AWS session using the default credential chain.
func NewS3Storage(cfg S3Config, logger zerolog.Logger) (*S3Storage, error) {
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	return newS3Storage(cfg, s3manager.NewUploader(sess), s3.New(sess), logger), nil
}

func newS3Storage(cfg S3Config, uploader s3manageriface.UploaderAPI, client s3iface.S3API, logger zerolog.Logger) *S3Storage {
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	return &S3Storage{cfg: cfg, uploader: uploader, client: client, logger: logger}
}

// SaveFile uploads the file under KeyPrefix/subPath with a random name.
func (s *S3Storage) SaveFile(ctx context.Context, fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	key := path.Join(s.cfg.KeyPrefix, subPath, uuid.New().String()+extensionFor(fileHeader.Filename, contentType))

	input := &s3manager.UploadInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if s.cfg.ObjectACL != "" {
		input.ACL = aws.String(s.cfg.ObjectACL)
	}

	out, err := s.uploader.UploadWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to s3: %w", key, err)
	}

	location := out.Location
	if s.cfg.PublicURL != "" {
		location = s.cfg.PublicURL + "/" + key
	}
	s.logger.Info().Str("bucket", s.cfg.Bucket).Str("key", key).Msg("File uploaded")
	return location, nil
}

// DeleteFile removes the object behind fileURL.
func (s *S3Storage) DeleteFile(ctx context.Context, fileURL string) error {
	key, ok := s.keyFromURL(fileURL)
	if !ok {
		return fmt.Errorf("file %q is not managed by this storage", fileURL)
	}
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from s3: %w", key, err)
	}
	return nil
}

func (s *S3Storage) keyFromURL(fileURL string) (string, bool) {
	if s.cfg.PublicURL != "" && strings.HasPrefix(fileURL, s.cfg.PublicURL+"/") {
		return strings.TrimPrefix(fileURL, s.cfg.PublicURL+"/"), true
	}

	u, err := url.Parse(fileURL)
	if err != nil || u.Path == "" {
		return "", false
	}
	p := strings.TrimPrefix(u.Path, "/")
	switch {
	case strings.HasPrefix(u.Host, s.cfg.Bucket+"."):
		// virtual-hosted style
		return p, p != ""
	case strings.HasPrefix(p, s.cfg.Bucket+"/"):
		// path style
		key := strings.TrimPrefix(p, s.cfg.Bucket+"/")
		return key, key != ""
	}
	return "", false
}
