package models

type Subject struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex:uk_subjects_name;not null;size:100"`
}

func (Subject) TableName() string {
	return "subjects"
}
