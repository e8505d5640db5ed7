package models

import "time"

type ResultStatus string

const (
	ResultDraft     ResultStatus = "DRAFT"
	ResultSubmitted ResultStatus = "SUBMITTED"
)

type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
	GradeF Grade = "F"
)

type ExamResult struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	ExamID    uint         `json:"exam_id" gorm:"not null;index"`
	StudentID uint         `json:"student_id" gorm:"not null;index"`
	Marks     float64      `json:"marks" gorm:"not null"`
	Grade     *Grade       `json:"grade,omitempty" gorm:"size:2"`
	Status    ResultStatus `json:"status" gorm:"not null;size:20;default:DRAFT;index"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Relations
	Exam    *Exam `json:"-" gorm:"foreignKey:ExamID"`
	Student *User `json:"-" gorm:"foreignKey:StudentID"`
}

func (ExamResult) TableName() string {
	return "exam_results"
}

// IsSubmitted reports whether the result is frozen.
func (r *ExamResult) IsSubmitted() bool {
	return r.Status == ResultSubmitted
}
