package models

import "gorm.io/datatypes"

type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

type TimetableEntry struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ClasseID  uint           `json:"classe_id" gorm:"not null;index"`
	SubjectID uint           `json:"subject_id" gorm:"not null;index"`
	DayOfWeek DayOfWeek      `json:"day_of_week" gorm:"not null;size:10"`
	StartTime datatypes.Time `json:"start_time" gorm:"not null"`
	EndTime   datatypes.Time `json:"end_time" gorm:"not null"`

	Classe  *Classe  `json:"-" gorm:"foreignKey:ClasseID"`
	Subject *Subject `json:"-" gorm:"foreignKey:SubjectID"`
}

func (TimetableEntry) TableName() string {
	return "timetables"
}
