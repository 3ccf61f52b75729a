package dto

// DashboardTotals holds the headline counters of the teacher dashboard.
type DashboardTotals struct {
	Papers           int `json:"papers"`
	SolutionGroups   int `json:"solution_groups"`
	GradedGroups     int `json:"graded_groups"`
	NotGradedGroups  int `json:"not_graded_groups"`
	Students         int `json:"students"`
	AnsweredPapers   int `json:"answered_papers"`
	UnansweredPapers int `json:"not_answered_papers"`
}

// StudentStatResponse is one row of per-student statistics.
type StudentStatResponse struct {
	Username    string  `json:"username"`
	Name        string  `json:"name"`
	GradedCount int     `json:"graded_count"`
	Average     float64 `json:"average"`
}

// StudentGroupsResponse lists the groups submitted by one student.
type StudentGroupsResponse struct {
	Username string                    `json:"username"`
	Name     string                    `json:"name"`
	Groups   []SubmissionGroupResponse `json:"groups"`
}

// TeacherDashboardResponse aggregates everything the teacher home page shows.
type TeacherDashboardResponse struct {
	Papers          []PaperResponse           `json:"papers"`
	UngradedQueue   []SubmissionGroupResponse `json:"ungraded_queue"`
	Totals          DashboardTotals           `json:"totals"`
	OverallAverage  float64                   `json:"overall_average"`
	StudentStats    []StudentStatResponse     `json:"student_stats"`
	BestStudent     *StudentStatResponse      `json:"best_student"`
	GroupsByStudent []StudentGroupsResponse   `json:"groups_by_student"`
}

// StudentAverageResponse is a left-joined per-student average; nil when the
// student has no graded group.
type StudentAverageResponse struct {
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	GradedCount int      `json:"graded_count"`
	Average     *float64 `json:"average"`
}

// PaperAverageResponse is a left-joined per-paper average.
type PaperAverageResponse struct {
	PaperID     uint     `json:"paper_id"`
	Title       string   `json:"title"`
	Groups      int      `json:"groups"`
	GradedCount int      `json:"graded_count"`
	Average     *float64 `json:"average"`
}

// AnalyticsResponse carries the teacher analytics page.
type AnalyticsResponse struct {
	Students []StudentAverageResponse `json:"students"`
	Papers   []PaperAverageResponse   `json:"papers"`
}

// StudentDashboardResponse aggregates the student home page.
type StudentDashboardResponse struct {
	Papers            []PaperResponse           `json:"papers"`
	Submissions       []SubmissionGroupResponse `json:"submissions"`
	SubmittedPaperIDs []uint                    `json:"submitted_paper_ids"`
	AvailablePapers   []PaperResponse           `json:"available_papers"`
	HasPapersLeft     bool                      `json:"has_papers_left"`
}
