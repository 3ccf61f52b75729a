package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/noah-isme/educonnect-api/internal/models"
)

// SubmissionCreateResponse is returned after a student uploads a group.
type SubmissionCreateResponse struct {
	GroupID     string    `json:"group_id"`
	PaperID     uint      `json:"paper_id"`
	Files       int       `json:"files"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// GradeValue is one raw grading input. Form values bind as text; JSON strings
// and numbers are both accepted and any other JSON value decodes to empty.
type GradeValue string

// UnmarshalJSON keeps grading lenient for JSON bodies.
func (v *GradeValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*v = ""
		return nil
	}

	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			*v = ""
			return nil
		}
		*v = GradeValue(text)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var number json.Number
		if err := json.Unmarshal(data, &number); err != nil {
			*v = ""
			return nil
		}
		*v = GradeValue(number.String())
	default:
		*v = ""
	}
	return nil
}

// GradeRequest carries raw grading values. Values are parsed leniently.
type GradeRequest struct {
	TotalQuestions GradeValue `json:"total_questions" form:"total_questions"`
	Attempted      GradeValue `json:"attempted" form:"attempted"`
	Correct        GradeValue `json:"correct" form:"correct"`
	Incorrect      GradeValue `json:"incorrect" form:"incorrect"`
	TotalMarks     GradeValue `json:"total_marks" form:"total_marks"`
	ObtainedMarks  GradeValue `json:"obtained_marks" form:"obtained_marks"`
	PassingMarks   GradeValue `json:"passing_marks" form:"passing_marks"`
}

// GradeResponse reports the derived status of a grading action.
type GradeResponse struct {
	GroupID      string         `json:"group_id"`
	ResultStatus string         `json:"result_status"`
	UpdatedRows  int64          `json:"updated_rows"`
	Grading      models.Grading `json:"grading"`
}

// GroupPageResponse describes one page of a submission group.
type GroupPageResponse struct {
	GroupID         string         `json:"group_id"`
	PaperID         uint           `json:"paper_id"`
	StudentUsername string         `json:"student_username"`
	SubmittedAt     time.Time      `json:"submitted_at"`
	Page            int            `json:"page"`
	TotalPages      int            `json:"total_pages"`
	File            string         `json:"file"`
	Grading         models.Grading `json:"grading"`
}

// SubmissionGroupResponse is a group as shown on dashboards.
type SubmissionGroupResponse struct {
	GroupID         string    `json:"group_id"`
	PaperID         uint      `json:"paper_id"`
	PaperTitle      string    `json:"paper_title"`
	StudentUsername string    `json:"student_username"`
	StudentName     string    `json:"student_name"`
	SubmittedAt     time.Time `json:"submitted_at"`
	Files           []string  `json:"files"`
	ObtainedMarks   *float64  `json:"obtained_marks"`
	ResultStatus    *string   `json:"result_status"`
}

// StudentResultResponse is a graded or pending group with every grading field.
type StudentResultResponse struct {
	GroupID     string         `json:"group_id"`
	PaperID     uint           `json:"paper_id"`
	PaperTitle  string         `json:"paper_title"`
	SubmittedAt time.Time      `json:"submitted_at"`
	Files       []string       `json:"files"`
	Graded      bool           `json:"graded"`
	Grading     models.Grading `json:"grading"`
}
