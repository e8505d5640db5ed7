package models

// ReportSummary holds the headline counts shown on the admin dashboard.
type ReportSummary struct {
	TotalStudents int64 `json:"total_students"`
	TotalTeachers int64 `json:"total_teachers"`
	TotalAdmins   int64 `json:"total_admins"`
	TotalClasses  int64 `json:"total_classes"`
	TotalExams    int64 `json:"total_exams"`
	TotalSubjects int64 `json:"total_subjects"`
}

// ImportSummary describes the outcome of a roster spreadsheet import.
type ImportSummary struct {
	Created  int           `json:"created"`
	Enrolled int           `json:"enrolled"`
	Skipped  []ImportIssue `json:"skipped,omitempty"`
}

type ImportIssue struct {
	Row    int    `json:"row"`
	Email  string `json:"email,omitempty"`
	Reason string `json:"reason"`
}
