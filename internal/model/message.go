package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message delivery states
const (
	MessageStatusSent   = "SENT"
	MessageStatusFailed = "FAILED"
)

// Message is a communication sent to a lead through one of the channels
type Message struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey"`
	LeadID     string    `json:"leadId" gorm:"type:uuid;not null;index"`
	UserID     string    `json:"userId" gorm:"type:uuid;not null"`
	Channel    string    `json:"channel" gorm:"type:varchar(10);not null"`
	To         string    `json:"to" gorm:"type:varchar(100);not null"`
	Subject    string    `json:"subject" gorm:"type:varchar(200)"`
	Body       string    `json:"body" gorm:"type:text;not null"`
	Status     string    `json:"status" gorm:"type:varchar(10);not null"`
	ProviderID string    `json:"providerId" gorm:"type:varchar(100)"`
	Error      string    `json:"error,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Relations
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
