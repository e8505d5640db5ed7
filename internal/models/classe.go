package models

import "time"

type Classe struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;size:100"`
	Grade     string    `json:"grade" gorm:"size:20"`
	TeacherID *uint     `json:"teacher_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Teacher *User `json:"teacher,omitempty" gorm:"foreignKey:TeacherID;constraint:OnDelete:SET NULL"`
}

// ClasseStudent is the membership row of the classe_students join table.
// The composite primary key makes a student a member of a class at most once.
type ClasseStudent struct {
	ClasseID  uint `json:"classe_id" gorm:"primaryKey"`
	StudentID uint `json:"student_id" gorm:"primaryKey;index"`

	Classe  *Classe `json:"-" gorm:"foreignKey:ClasseID"`
	Student *User   `json:"-" gorm:"foreignKey:StudentID"`
}

func (Classe) TableName() string {
	return "classes"
}

func (ClasseStudent) TableName() string {
	return "classe_students"
}
