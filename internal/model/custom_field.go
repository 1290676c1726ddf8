package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Custom field type tags
const (
	FieldTypeText        = "TEXT"
	FieldTypeNumber      = "NUMBER"
	FieldTypeSelect      = "SELECT"
	FieldTypeMultiselect = "MULTISELECT"
	FieldTypeDate        = "DATE"
	FieldTypeBoolean     = "BOOLEAN"
	FieldTypeTextarea    = "TEXTAREA"
)

// CustomField describes a tenant-defined lead attribute. Options holds the
// selectable values for SELECT/MULTISELECT fields as a JSON array.
type CustomField struct {
	ID         string         `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID   string         `json:"tenantId" gorm:"type:uuid;not null;index"`
	Name       string         `json:"name" gorm:"type:varchar(100);not null"`
	Slug       string         `json:"slug" gorm:"type:varchar(100);not null"`
	Type       string         `json:"type" gorm:"type:varchar(20);not null"`
	Options    datatypes.JSON `json:"options" gorm:"type:jsonb"`
	IsRequired bool           `json:"isRequired" gorm:"default:false"`
	IsActive   bool           `json:"isActive" gorm:"default:true"`
	Order      int            `json:"order" gorm:"column:display_order;default:0"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (f *CustomField) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
