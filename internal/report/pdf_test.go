package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educonnect-api/internal/models"
)

func TestRenderProducesPDF(t *testing.T) {
	obtained := 72.5
	passing := 50.0
	status := models.ResultPass
	total := 10

	var buf bytes.Buffer
	err := Render(&buf, Data{
		StudentName: "Zoë",
		PaperTitle:  "Algebra I",
		GeneratedAt: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		Grading: models.Grading{
			TotalQuestions: &total,
			ObtainedMarks:  &obtained,
			PassingMarks:   &passing,
			ResultStatus:   &status,
		},
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	require.Greater(t, buf.Len(), 500)
}

func TestFormatHelpers(t *testing.T) {
	v := 3
	f := 12.25
	require.Equal(t, "-", formatInt(nil))
	require.Equal(t, "3", formatInt(&v))
	require.Equal(t, "-", formatFloat(nil))
	require.Equal(t, "12.25", formatFloat(&f))
}
