package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Template is a tenant-scoped reusable message body. Bodies may contain
// {{dotted.path}} placeholder tokens resolved at send time.
type Template struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  string    `json:"tenantId" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Channel   string    `json:"channel" gorm:"type:varchar(10);not null"`
	Subject   string    `json:"subject" gorm:"type:varchar(200)"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
