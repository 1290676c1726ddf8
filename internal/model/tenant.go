package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant represents an isolated business account.
// Every domain row in the system is scoped by tenant ID.
type Tenant struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Slug      string    `json:"slug" gorm:"type:varchar(50);uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Industry  string    `json:"industry" gorm:"type:varchar(100)"`
	Timezone  string    `json:"timezone" gorm:"type:varchar(50);default:'Europe/London'"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Settings     *TenantSettings `json:"settings,omitempty" gorm:"foreignKey:TenantID"`
	Leads        []Lead          `json:"-" gorm:"foreignKey:TenantID"`
	LeadStatuses []LeadStatus    `json:"-" gorm:"foreignKey:TenantID"`
	ProductTypes []ProductType   `json:"-" gorm:"foreignKey:TenantID"`
	CustomFields []CustomField   `json:"-" gorm:"foreignKey:TenantID"`
	Templates    []Template      `json:"-" gorm:"foreignKey:TenantID"`
	Memberships  []Membership    `json:"-" gorm:"foreignKey:TenantID"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
