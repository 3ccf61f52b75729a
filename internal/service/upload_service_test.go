package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educonnect-api/pkg/storage"
)

var (
	pngHeader  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pdfHeader  = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
)

func newMemoryUploads(t *testing.T, maxSizeMB int) (UploadService, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store := storage.NewLocalFs(afero.NewBasePathFs(fs, "/uploads"), testLogger())
	return NewUploadService(store, maxSizeMB, testLogger()), fs
}

func TestUploadServiceRejectsSize(t *testing.T) {
	svc, _ := newMemoryUploads(t, 1)

	file := buildFileHeader(t, "file.pdf", append(append([]byte{}, pdfHeader...), bytes.Repeat([]byte("a"), 2*1024*1024)...))

	_, err := svc.Inspect(context.Background(), file, PaperPolicy)
	require.ErrorIs(t, err, ErrUploadTooLarge)
	require.ErrorIs(t, err, ErrValidation)
}

func TestUploadServiceChecksExtensionAndContent(t *testing.T) {
	svc, _ := newMemoryUploads(t, 5)

	_, err := svc.Inspect(context.Background(), buildFileHeader(t, "notes.txt", []byte("plain text")), SolutionImagePolicy)
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)

	_, err = svc.Inspect(context.Background(), buildFileHeader(t, "disguised.png", []byte("plain text")), SolutionImagePolicy)
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)

	_, err = svc.Inspect(context.Background(), buildFileHeader(t, "paper.pdf", pngHeader), PaperPolicy)
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)

	_, err = svc.Inspect(context.Background(), nil, SolutionImagePolicy)
	require.ErrorIs(t, err, ErrUploadMissing)
}

func TestUploadServiceInspectStoreOpenDiscard(t *testing.T) {
	svc, _ := newMemoryUploads(t, 5)

	inspected, err := svc.Inspect(context.Background(), buildFileHeader(t, "My Page 1.JPG", jpegHeader), SolutionImagePolicy)
	require.NoError(t, err)
	require.Equal(t, "my-page-1.jpg", inspected.Name)
	require.Equal(t, "image/jpeg", inspected.MIMEType)
	require.Len(t, inspected.Checksum, 64)

	ref, err := svc.Store(context.Background(), inspected)
	require.NoError(t, err)

	reader, err := svc.Open(context.Background(), ref)
	require.NoError(t, err)
	payload, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	require.Equal(t, jpegHeader, payload)

	svc.Discard(context.Background(), ref, "")
	_, err = svc.Open(context.Background(), ref)
	require.ErrorIs(t, err, ErrFileNotFound)
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}
