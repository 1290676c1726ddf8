package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lead priorities
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Lead is a prospective customer moving through the tenant's pipeline.
// StatusID and ProductTypeID must reference rows of the same tenant; the
// handlers enforce this before writing.
type Lead struct {
	ID                string            `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID          string            `json:"tenantId" gorm:"type:uuid;not null;index"`
	CreatedByID       string            `json:"createdById" gorm:"type:uuid;not null"`
	AssignedUserID    *string           `json:"assignedUserId" gorm:"type:uuid"`
	ProductTypeID     *string           `json:"productTypeId" gorm:"type:uuid"`
	StatusID          string            `json:"statusId" gorm:"type:uuid;not null;index"`
	Name              string            `json:"name" gorm:"type:varchar(100);not null"`
	Email             string            `json:"email" gorm:"type:varchar(100)"`
	Phone             string            `json:"phone" gorm:"type:varchar(30)"`
	Address           string            `json:"address" gorm:"type:text"`
	Postcode          string            `json:"postcode" gorm:"type:varchar(20)"`
	JobValue          *float64          `json:"jobValue"`
	EstimatedValue    *float64          `json:"estimatedValue"`
	Priority          string            `json:"priority" gorm:"type:varchar(10);default:'MEDIUM'"`
	Source            string            `json:"source" gorm:"type:varchar(100)"`
	Notes             string            `json:"notes" gorm:"type:text"`
	CustomFieldValues datatypes.JSONMap `json:"customFieldValues" gorm:"type:jsonb"`
	CreatedAt         time.Time         `json:"createdAt" gorm:"index"`
	UpdatedAt         time.Time         `json:"updatedAt"`

	// Relations
	Status       LeadStatus    `json:"status,omitempty" gorm:"foreignKey:StatusID"`
	ProductType  *ProductType  `json:"productType,omitempty" gorm:"foreignKey:ProductTypeID"`
	CreatedBy    User          `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID"`
	AssignedUser *User         `json:"assignedUser,omitempty" gorm:"foreignKey:AssignedUserID"`
	Appointments []Appointment `json:"appointments,omitempty" gorm:"foreignKey:LeadID"`
	Messages     []Message     `json:"messages,omitempty" gorm:"foreignKey:LeadID"`
	AuditLogs    []AuditLog    `json:"auditLogs,omitempty" gorm:"foreignKey:LeadID"`
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CustomFieldValues == nil {
		l.CustomFieldValues = datatypes.JSONMap{}
	}
	return nil
}

// Value returns the lead's monetary value: estimated value first, then job
// value, then zero.
func (l *Lead) Value() float64 {
	if l.EstimatedValue != nil {
		return *l.EstimatedValue
	}
	if l.JobValue != nil {
		return *l.JobValue
	}
	return 0
}

// HasValue reports whether either value field is set
func (l *Lead) HasValue() bool {
	return l.EstimatedValue != nil || l.JobValue != nil
}
