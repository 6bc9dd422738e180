package filestorage

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

// newFileHeader builds a real multipart.FileHeader by round-tripping a form.
func newFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestDetectImageType(t *testing.T) {
	mime, err := DetectImageType(pngHeader, "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	mime, err = DetectImageType([]byte("ftypheic...."), "image/heic")
	require.NoError(t, err)
	assert.Equal(t, "image/heic", mime)

	_, err = DetectImageType([]byte("plain text"), "text/plain")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestLocalStorageSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads/", zerolog.Nop())
	require.NoError(t, err)

	url, err := ls.SaveFile(context.Background(), newFileHeader(t, "leaf.png", "image/png", pngHeader), "images")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/images/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	rel := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	require.NoError(t, ls.DeleteFile(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))

	// second delete is a no-op
	assert.NoError(t, ls.DeleteFile(context.Background(), url))
}

func TestLocalStorageRejectsForeignAndTraversal(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads", zerolog.Nop())
	require.NoError(t, err)

	assert.Error(t, ls.DeleteFile(context.Background(), "http://elsewhere/x.png"))
	assert.Error(t, ls.DeleteFile(context.Background(), "http://localhost:8080/uploads/../secret"))
}

type fakeUploader struct {
	input *s3manager.UploadInput
	body  []byte
}

func (f *fakeUploader) Upload(in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return f.UploadWithContext(context.Background(), in, opts...)
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3manager.UploadOutput{
		Location: "https://" + aws.StringValue(in.Bucket) + ".s3.amazonaws.com/" + aws.StringValue(in.Key),
	}, nil
}

type fakeS3 struct {
	s3iface.S3API
	deleted []string
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StorageUploadAndDelete(t *testing.T) {
	up := &fakeUploader{}
	client := &fakeS3{}
	st := newS3Storage(S3Config{Bucket: "leaf-bucket", ObjectACL: "public-read", KeyPrefix: "app"}, up, client, zerolog.Nop())

	url, err := st.SaveFile(context.Background(), newFileHeader(t, "leaf.png", "image/png", pngHeader), "images")
	require.NoError(t, err)

	key := aws.StringValue(up.input.Key)
	assert.True(t, strings.HasPrefix(key, "app/images/"))
	assert.Equal(t, "public-read", aws.StringValue(up.input.ACL))
	assert.Equal(t, "image/png", aws.StringValue(up.input.ContentType))
	assert.Equal(t, pngHeader, up.body)
	assert.Equal(t, "https://leaf-bucket.s3.amazonaws.com/"+key, url)

	require.NoError(t, st.DeleteFile(context.Background(), url))
	assert.Equal(t, []string{key}, client.deleted)
}

func TestS3StoragePublicURL(t *testing.T) {
	up := &fakeUploader{}
	client := &fakeS3{}
	st := newS3Storage(S3Config{Bucket: "b", PublicURL: "https://cdn.example.com/"}, up, client, zerolog.Nop())

	url, err := st.SaveFile(context.Background(), newFileHeader(t, "a.jpg", "image/jpeg", []byte{0xff, 0xd8, 0xff}), "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+aws.StringValue(up.input.Key), url)

	require.NoError(t, st.DeleteFile(context.Background(), url))
	assert.Equal(t, []string{aws.StringValue(up.input.Key)}, client.deleted)

	assert.Error(t, st.DeleteFile(context.Background(), "https://other.example.com/x.jpg"))
}
