package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback is a star rating plus optional comment about a hazard
type Feedback struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	HazardID  string    `json:"hazard_id" gorm:"type:varchar(36);not null;index"`
	Rating    int       `json:"rating" gorm:"type:int;not null"`
	Comment   string    `json:"comment" gorm:"type:text"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Hazard *Hazard `json:"-" gorm:"foreignKey:HazardID;references:HazardID;constraint:OnDelete:CASCADE"`
}

func (Feedback) TableName() string { return "feedback" }

// BeforeCreate is a GORM hook that runs before creating a feedback row
func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
