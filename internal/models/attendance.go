package models

import "gorm.io/datatypes"

// Attendance is one presence mark. Repeated submissions for the same
// student and day are stored as separate rows.
type Attendance struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ClasseID  uint           `json:"classe_id" gorm:"not null;index"`
	StudentID uint           `json:"student_id" gorm:"not null;index"`
	Date      datatypes.Date `json:"date" gorm:"not null;index"`
	Present   bool           `json:"present" gorm:"column:status;not null"`

	Classe  *Classe `json:"-" gorm:"foreignKey:ClasseID"`
	Student *User   `json:"-" gorm:"foreignKey:StudentID"`
}

func (Attendance) TableName() string {
	return "attendances"
}
