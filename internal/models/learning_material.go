package models

import "time"

type LearningMaterial struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ClasseID  uint      `json:"classe_id" gorm:"not null;index"`
	Title     string    `json:"title,omitempty" gorm:"size:200"`
	URL       string    `json:"url" gorm:"not null;size:1000"`
	Timestamp time.Time `json:"timestamp" gorm:"autoCreateTime;<-:create"`

	Classe *Classe `json:"-" gorm:"foreignKey:ClasseID"`
}

func (LearningMaterial) TableName() string {
	return "learning_materials"
}
