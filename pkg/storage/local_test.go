package storage

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestLocalUploadOpenDelete(t *testing.T) {
	store := NewLocalFs(afero.NewMemMapFs(), zerolog.Nop())
	store.now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }

	ref, err := store.Upload(context.Background(), "page-1.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, "2024/03/"))
	require.True(t, strings.HasSuffix(ref, "_page-1.png"))

	other, err := store.Upload(context.Background(), "page-1.png", strings.NewReader("other"))
	require.NoError(t, err)
	require.NotEqual(t, ref, other)

	reader, err := store.Open(context.Background(), ref)
	require.NoError(t, err)
	payload, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	require.Equal(t, "png-bytes", string(payload))

	require.NoError(t, store.Delete(context.Background(), ref))
	_, err = store.Open(context.Background(), ref)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, store.Delete(context.Background(), ref), "deleting twice is harmless")
}

func TestLocalRejectsEmptyReference(t *testing.T) {
	store := NewLocalFs(afero.NewMemMapFs(), zerolog.Nop())

	_, err := store.Open(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidReference)
	require.ErrorIs(t, store.Delete(context.Background(), "/"), ErrInvalidReference)
}

func TestCleanRefStaysInsideRoot(t *testing.T) {
	clean, err := cleanRef("../../etc/passwd")
	require.NoError(t, err)
	require.Equal(t, "etc/passwd", clean)
}
