package service

import (
	"math"
	"time"

	"github.com/noah-isme/educonnect-api/internal/models"
)

// GroupView is one logical submission group reduced from its rows.
type GroupView struct {
	Key             string
	PaperID         uint
	StudentUsername string
	SubmittedAt     time.Time
	Files           []string
	Grading         models.Grading
}

// Graded reports whether the group carries marks.
func (g GroupView) Graded() bool {
	return g.Grading.IsGraded()
}

// StudentStat is the zero-default per-student summary used by the dashboard.
type StudentStat struct {
	Username    string
	Name        string
	GradedCount int
	Average     float64
}

// StudentAverage is the left-joined per-student average used by analytics.
type StudentAverage struct {
	Username    string
	Name        string
	GradedCount int
	Average     *float64
}

// PaperAverage is the left-joined per-paper average used by analytics.
type PaperAverage struct {
	PaperID     uint
	Title       string
	Groups      int
	GradedCount int
	Average     *float64
}

// Coverage counts papers with and without at least one submission group.
type Coverage struct {
	Answered    int
	NotAnswered int
}

// GroupSubmissions reduces rows into groups keyed by submission group, or
// legacy_<id> for ungrouped rows. Groups keep first-seen order and files keep
// row order.
func GroupSubmissions(rows []models.Solution) []GroupView {
	index := make(map[string]int, len(rows))
	groups := make([]GroupView, 0)

	for _, row := range rows {
		key := row.GroupKey()
		pos, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, GroupView{
				Key:             key,
				PaperID:         row.PaperID,
				StudentUsername: row.StudentUsername,
				SubmittedAt:     row.SubmittedAt,
				Files:           []string{row.Filename},
				Grading:         row.Grading,
			})
			continue
		}

		group := &groups[pos]
		group.Files = append(group.Files, row.Filename)
		if row.SubmittedAt.Before(group.SubmittedAt) {
			group.SubmittedAt = row.SubmittedAt
		}
		if !group.Grading.IsGraded() && row.Grading.IsGraded() {
			group.Grading = row.Grading
		}
	}

	return groups
}

// UngradedQueue returns the groups without obtained marks.
func UngradedQueue(groups []GroupView) []GroupView {
	queue := make([]GroupView, 0)
	for _, group := range groups {
		if !group.Graded() {
			queue = append(queue, group)
		}
	}
	return queue
}

// StudentStatistics summarises graded groups per student. Students without a
// graded group report an average of 0.
func StudentStatistics(students []models.User, groups []GroupView) []StudentStat {
	marks := marksByStudent(groups)

	stats := make([]StudentStat, 0, len(students))
	for _, student := range students {
		values := marks[student.Username]
		stats = append(stats, StudentStat{
			Username:    student.Username,
			Name:        displayName(student),
			GradedCount: len(values),
			Average:     zeroDefault(mean(values)),
		})
	}
	return stats
}

// BestStudent returns the highest average; the earliest entry wins ties.
func BestStudent(stats []StudentStat) *StudentStat {
	if len(stats) == 0 {
		return nil
	}

	best := stats[0]
	for _, stat := range stats[1:] {
		if stat.Average > best.Average {
			best = stat
		}
	}
	return &best
}

// PaperCoverage counts papers answered by at least one group. Both counts are
// floored at zero.
func PaperCoverage(totalPapers int, groups []GroupView) Coverage {
	answered := make(map[uint]struct{})
	for _, group := range groups {
		answered[group.PaperID] = struct{}{}
	}

	return Coverage{
		Answered:    maxInt(len(answered), 0),
		NotAnswered: maxInt(totalPapers-len(answered), 0),
	}
}

// OverallAverage is the mean obtained mark across graded groups, 0 when none.
func OverallAverage(groups []GroupView) float64 {
	values := make([]float64, 0, len(groups))
	for _, group := range groups {
		if group.Graded() {
			values = append(values, *group.Grading.ObtainedMarks)
		}
	}
	return zeroDefault(mean(values))
}

// StudentAverages lists every student with a nil average when nothing is graded.
func StudentAverages(students []models.User, groups []GroupView) []StudentAverage {
	marks := marksByStudent(groups)

	averages := make([]StudentAverage, 0, len(students))
	for _, student := range students {
		values := marks[student.Username]
		averages = append(averages, StudentAverage{
			Username:    student.Username,
			Name:        displayName(student),
			GradedCount: len(values),
			Average:     mean(values),
		})
	}
	return averages
}

// PaperAverages lists every paper with a nil average when nothing is graded.
func PaperAverages(papers []models.Paper, groups []GroupView) []PaperAverage {
	counts := make(map[uint]int)
	marks := make(map[uint][]float64)
	for _, group := range groups {
		counts[group.PaperID]++
		if group.Graded() {
			marks[group.PaperID] = append(marks[group.PaperID], *group.Grading.ObtainedMarks)
		}
	}

	averages := make([]PaperAverage, 0, len(papers))
	for _, paper := range papers {
		values := marks[paper.ID]
		averages = append(averages, PaperAverage{
			PaperID:     paper.ID,
			Title:       paper.Title,
			Groups:      counts[paper.ID],
			GradedCount: len(values),
			Average:     mean(values),
		})
	}
	return averages
}

func marksByStudent(groups []GroupView) map[string][]float64 {
	marks := make(map[string][]float64)
	for _, group := range groups {
		if group.Graded() {
			marks[group.StudentUsername] = append(marks[group.StudentUsername], *group.Grading.ObtainedMarks)
		}
	}
	return marks
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	avg := round2(total / float64(len(values)))
	return &avg
}

func zeroDefault(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func displayName(user models.User) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Username
}
