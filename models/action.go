package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Action is an immutable audit-log entry describing staff activity on a
// hazard. Rows are only ever inserted.
type Action struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	HazardID    string    `json:"hazard_id" gorm:"type:varchar(36);not null;index"`
	Description string    `json:"description" gorm:"type:text;not null"`
	StaffID     string    `json:"staff_id" gorm:"type:varchar(36);not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	Hazard *Hazard `json:"-" gorm:"foreignKey:HazardID;references:HazardID;constraint:OnDelete:CASCADE"`
}

func (Action) TableName() string {
	return "actions"
}

// BeforeCreate is a GORM hook that runs before creating an action
func (a *Action) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
