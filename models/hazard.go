package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HazardStatus string

const (
	StatusPending      HazardStatus = "pending"
	StatusAcknowledged HazardStatus = "acknowledged"
	StatusRejected     HazardStatus = "rejected"
	StatusSolved       HazardStatus = "solved"
)

// Hazard is a reported campus safety issue. Status is a free string on
// purpose: any value may follow any other and unknown values round-trip
// unchanged (permissive open state set).
type Hazard struct {
	HazardID          string    `json:"hazard_id" gorm:"type:varchar(36);primaryKey"`
	HazardTitle       string    `json:"hazard_title" gorm:"size:255;not null"`
	HazardDescription string    `json:"hazard_description" gorm:"type:text"`
	IsUrgent          bool      `json:"is_urgent" gorm:"default:false"`
	ImageURL          *string   `json:"image_url" gorm:"size:512"`
	UserID            string    `json:"user_id" gorm:"type:varchar(36);not null;index"`
	Status            string    `json:"status" gorm:"size:50;not null;default:'pending'"`
	ReportedTime      time.Time `json:"reported_time"`
}

// HazardWithReporter is a hazard annotated with the reporter's username
// for the staff list view.
type HazardWithReporter struct {
	Hazard
	Username string `json:"username"`
}

func (Hazard) TableName() string {
	return "hazard"
}

// BeforeCreate is a GORM hook that runs before creating a hazard
func (h *Hazard) BeforeCreate(tx *gorm.DB) error {
	if h.HazardID == "" {
		h.HazardID = uuid.NewString()
	}
	if h.Status == "" {
		h.Status = string(StatusPending)
	}
	if h.ReportedTime.IsZero() {
		h.ReportedTime = time.Now().UTC()
	}
	return nil
}
