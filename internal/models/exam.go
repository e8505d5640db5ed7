package models

import (
	"time"

	"gorm.io/datatypes"
)

type Exam struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null;size:200"`
	ClasseID  uint           `json:"classe_id" gorm:"not null;index"`
	SubjectID uint           `json:"subject_id" gorm:"not null;index"`
	Date      datatypes.Date `json:"date" gorm:"not null"`
	StartTime datatypes.Time `json:"start_time" gorm:"not null"`
	EndTime   datatypes.Time `json:"end_time" gorm:"not null"`
	CreatedBy uint           `json:"created_by" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Relations
	Classe  *Classe  `json:"-" gorm:"foreignKey:ClasseID"`
	Subject *Subject `json:"-" gorm:"foreignKey:SubjectID"`
}

func (Exam) TableName() string {
	return "exams"
}
