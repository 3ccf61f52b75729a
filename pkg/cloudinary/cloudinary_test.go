package cloudinary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAssetURL(t *testing.T) {
	resourceType, publicID, err := parseAssetURL("https://res.cloudinary.com/demo/image/upload/v1712345/educonnect/page-1-1712345.png")
	require.NoError(t, err)
	require.Equal(t, "image", resourceType)
	require.Equal(t, "educonnect/page-1-1712345", publicID)

	resourceType, publicID, err = parseAssetURL("https://res.cloudinary.com/demo/raw/upload/paper.pdf")
	require.NoError(t, err)
	require.Equal(t, "raw", resourceType)
	require.Equal(t, "paper", publicID)

	_, _, err = parseAssetURL("2024/03/abc_page.png")
	require.Error(t, err)

	_, _, err = parseAssetURL("https://example.com/files/page.png")
	require.Error(t, err)
}

func TestBuildPublicIDStripsUnsafeCharacters(t *testing.T) {
	id := buildPublicID("Exam Paper #1.pdf")
	require.True(t, strings.HasPrefix(id, "exam-paper-1-"))
	require.Len(t, id, len("exam-paper-1-")+8)
	require.NotEqual(t, id, buildPublicID("Exam Paper #1.pdf"))

	require.True(t, strings.HasPrefix(buildPublicID("###.png"), "upload-"))
}
