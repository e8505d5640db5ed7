package models

import "time"

// TeacherProfile exists for every user with the TEACHER role.
type TeacherProfile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:uk_teacher_profiles_user;not null"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// StudentProfile exists for every user with the STUDENT role. ClasseID
// mirrors the class the student was last enrolled into.
type StudentProfile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:uk_student_profiles_user;not null"`
	ClasseID  *uint     `json:"classe_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`

	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Classe *Classe `json:"-" gorm:"foreignKey:ClasseID;constraint:OnDelete:SET NULL"`
}

func (TeacherProfile) TableName() string {
	return "teacher_profiles"
}

func (StudentProfile) TableName() string {
	return "student_profiles"
}
