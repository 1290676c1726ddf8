package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Membership links a User to a Tenant with an access role
type Membership struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  string    `json:"tenantId" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_tenant_user"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_tenant_user"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Tenant Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	User   User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
