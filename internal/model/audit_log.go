package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is an append-only record of a mutating action. Rows are never
// updated or deleted after creation.
type AuditLog struct {
	ID        string            `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  string            `json:"tenantId" gorm:"type:uuid;not null;index"`
	LeadID    *string           `json:"leadId" gorm:"type:uuid;index"`
	UserID    *string           `json:"userId" gorm:"type:uuid"`
	Action    string            `json:"action" gorm:"type:varchar(50);not null;index"`
	Meta      datatypes.JSONMap `json:"meta" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"createdAt" gorm:"index"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Lead *Lead `json:"lead,omitempty" gorm:"foreignKey:LeadID"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
