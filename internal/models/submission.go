package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Result statuses derived by grading.
const (
	ResultPass = "PASS"
	ResultFail = "FAIL"
)

// LegacyGroupPrefix keys solution rows that predate submission groups.
const LegacyGroupPrefix = "legacy_"

// Grading holds the teacher-assigned fields shared by every row of a group.
// All fields are nil until the group is graded.
type Grading struct {
	TotalQuestions *int     `json:"total_questions"`
	Attempted      *int     `json:"attempted"`
	Correct        *int     `json:"correct"`
	Incorrect      *int     `json:"incorrect"`
	TotalMarks     *float64 `json:"total_marks"`
	ObtainedMarks  *float64 `json:"obtained_marks"`
	PassingMarks   *float64 `json:"passing_marks"`
	ResultStatus   *string  `gorm:"size:8" json:"result_status"`
}

// IsGraded reports whether marks have been assigned.
func (g Grading) IsGraded() bool {
	return g.ObtainedMarks != nil
}

// SubmissionGroup is the aggregate record for one upload action by one
// student for one paper. It owns its solution rows.
type SubmissionGroup struct {
	ID              string     `gorm:"primaryKey;size:64" json:"id"`
	PaperID         uint       `gorm:"not null;uniqueIndex:idx_group_paper_student" json:"paper_id"`
	StudentUsername string     `gorm:"size:64;not null;uniqueIndex:idx_group_paper_student" json:"student_username"`
	SubmittedAt     time.Time  `gorm:"not null" json:"submitted_at"`
	Grading         Grading    `gorm:"embedded" json:"grading"`
	GradedAt        *time.Time `json:"graded_at"`
	Files           []Solution `gorm:"foreignKey:GroupID;references:ID;constraint:OnDelete:CASCADE" json:"files,omitempty"`
}

// TableName pins the table name used by the schema.
func (SubmissionGroup) TableName() string {
	return "submission_groups"
}

// Solution is one uploaded page of a submission group.
type Solution struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PaperID         uint      `gorm:"not null;index" json:"paper_id"`
	StudentUsername string    `gorm:"size:64;not null;index" json:"student_username"`
	Filename        string    `gorm:"size:512;not null" json:"filename"`
	SubmittedAt     time.Time `gorm:"not null" json:"submitted_at"`
	GroupID         *string   `gorm:"column:submission_group;size:64;index" json:"submission_group"`
	Grading         Grading   `gorm:"embedded" json:"grading"`
}

// TableName pins the table name used by the schema.
func (Solution) TableName() string {
	return "solutions"
}

// GroupKey returns the submission group identifier, falling back to the
// synthetic legacy key for rows without one.
func (s Solution) GroupKey() string {
	if s.GroupID != nil && strings.TrimSpace(*s.GroupID) != "" {
		return *s.GroupID
	}
	return LegacyGroupKey(s.ID)
}

// LegacyGroupKey builds the key used for an ungrouped row.
func LegacyGroupKey(id uint) string {
	return fmt.Sprintf("%s%d", LegacyGroupPrefix, id)
}

// ParseLegacyGroupKey extracts the row id from a legacy key.
func ParseLegacyGroupKey(key string) (uint, bool) {
	if !strings.HasPrefix(key, LegacyGroupPrefix) {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(key, LegacyGroupPrefix), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
