package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TenantSettings holds per-tenant branding and business configuration
type TenantSettings struct {
	ID                 string         `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID           string         `json:"tenantId" gorm:"type:uuid;uniqueIndex;not null"`
	BusinessName       string         `json:"businessName" gorm:"type:varchar(100)"`
	BusinessAddress    string         `json:"businessAddress" gorm:"type:text"`
	BusinessPhone      string         `json:"businessPhone" gorm:"type:varchar(30)"`
	BusinessEmail      string         `json:"businessEmail" gorm:"type:varchar(100)"`
	Website            string         `json:"website" gorm:"type:varchar(255)"`
	WorkingHoursStart  string         `json:"workingHoursStart" gorm:"type:varchar(5);default:'09:00'"`
	WorkingHoursEnd    string         `json:"workingHoursEnd" gorm:"type:varchar(5);default:'17:00'"`
	WorkingDays        datatypes.JSON `json:"workingDays" gorm:"type:jsonb"`
	DefaultEmailSender string         `json:"defaultEmailSender" gorm:"type:varchar(100)"`
	DefaultSmsSender   string         `json:"defaultSmsSender" gorm:"type:varchar(30)"`
	AutoAssignLeads    bool           `json:"autoAssignLeads" gorm:"default:false"`
	LeadSlaHours       int            `json:"leadSlaHours" gorm:"default:24"`
	PrimaryColor       string         `json:"primaryColor" gorm:"type:varchar(7);default:'#3b82f6'"`
	Logo               string         `json:"logo" gorm:"type:text"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

func (s *TenantSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
