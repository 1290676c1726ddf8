package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment types
const (
	AppointmentCall         = "CALL"
	AppointmentMeeting      = "MEETING"
	AppointmentSiteVisit    = "SITE_VISIT"
	AppointmentDemo         = "DEMO"
	AppointmentConsultation = "CONSULTATION"
	AppointmentFollowUp     = "FOLLOW_UP"
)

// Appointment is a scheduled activity on a lead
type Appointment struct {
	ID          string     `json:"id" gorm:"type:uuid;primaryKey"`
	LeadID      string     `json:"leadId" gorm:"type:uuid;not null;index"`
	Type        string     `json:"type" gorm:"type:varchar(20);not null"`
	Title       string     `json:"title" gorm:"type:varchar(200);not null"`
	Description string     `json:"description" gorm:"type:text"`
	StartsAt    time.Time  `json:"startsAt" gorm:"not null;index"`
	EndsAt      *time.Time `json:"endsAt"`
	Location    string     `json:"location" gorm:"type:varchar(255)"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Relations
	Lead Lead `json:"lead,omitempty" gorm:"foreignKey:LeadID"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
