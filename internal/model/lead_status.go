package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadStatus is one stage of a tenant's pipeline. IsFinal marks pipeline
// exit stages such as won/lost; at most one status per tenant should carry
// IsDefault.
type LeadStatus struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  string    `json:"tenantId" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Slug      string    `json:"slug" gorm:"type:varchar(100);not null"`
	Color     string    `json:"color" gorm:"type:varchar(7);default:'#6b7280'"`
	Order     int       `json:"order" gorm:"column:display_order;default:0"`
	IsDefault bool      `json:"isDefault" gorm:"default:false"`
	IsFinal   bool      `json:"isFinal" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *LeadStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
