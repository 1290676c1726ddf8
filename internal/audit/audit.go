package audit

import (
	"crm-service/internal/model"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions
const (
	ActionLeadCreated        = "LEAD_CREATED"
	ActionLeadUpdated        = "LEAD_UPDATED"
	ActionLeadDeleted        = "LEAD_DELETED"
	ActionStatusChanged      = "STATUS_CHANGED"
	ActionAppointmentCreated = "APPOINTMENT_CREATED"
	ActionMessageSent        = "MESSAGE_SENT"
)

// Entry describes one mutating action to be recorded
type Entry struct {
	TenantID string
	LeadID   string
	UserID   string
	Action   string
	Meta     map[string]interface{}
}

// Recorder appends audit log rows. Callers pass the same *gorm.DB handle the
// mutation runs on, so recording inside a transaction makes the mutation and
// its audit row commit or roll back together.
type Recorder struct {
	log *zap.Logger
}

func NewRecorder(log *zap.Logger) *Recorder {
	return &Recorder{log: log}
}

// Record appends one audit row on the given handle
func (r *Recorder) Record(db *gorm.DB, entry Entry) error {
	row := model.AuditLog{
		TenantID: entry.TenantID,
		Action:   entry.Action,
		Meta:     datatypes.JSONMap(entry.Meta),
	}
	if entry.LeadID != "" {
		row.LeadID = &entry.LeadID
	}
	if entry.UserID != "" {
		row.UserID = &entry.UserID
	}

	if err := db.Create(&row).Error; err != nil {
		r.log.Error("Failed to write audit log",
			zap.String("tenant_id", entry.TenantID),
			zap.String("action", entry.Action),
			zap.Error(err))
		return err
	}
	return nil
}
