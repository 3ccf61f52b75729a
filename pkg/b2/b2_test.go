package b2

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestObjectKeyIsPartitionedAndUnique(t *testing.T) {
	now := time.Date(2024, 11, 2, 8, 0, 0, 0, time.UTC)

	first := objectKey("../solutions/page.png", now)
	second := objectKey("../solutions/page.png", now)

	require.True(t, strings.HasPrefix(first, "2024/11/"))
	require.True(t, strings.HasSuffix(first, "_page.png"))
	require.NotEqual(t, first, second)
	require.True(t, strings.HasSuffix(objectKey("", now), "_upload.bin"))
}

func TestKeyFromRef(t *testing.T) {
	prefix := "https://f001.backblazeb2.com/file/papers/"

	key, err := keyFromRef(prefix, prefix+"2024/11/abcd1234_page.png")
	require.NoError(t, err)
	require.Equal(t, "2024/11/abcd1234_page.png", key)

	_, err = keyFromRef(prefix, "https://elsewhere.example.com/page.png")
	require.Error(t, err)

	_, err = keyFromRef(prefix, prefix)
	require.Error(t, err)
}
