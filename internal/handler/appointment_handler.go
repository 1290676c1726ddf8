package handler

import (
	"errors"
	"net/http"
	"time"

	"crm-service/internal/audit"
	"crm-service/internal/model"
	"crm-service/internal/tenancy"
	"crm-service/internal/validation"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppointmentHandler logs and lists appointments on a lead
type AppointmentHandler struct {
	db       *gorm.DB
	gate     *tenancy.Gate
	recorder *audit.Recorder
}

func NewAppointmentHandler(db *gorm.DB, gate *tenancy.Gate, recorder *audit.Recorder) *AppointmentHandler {
	return &AppointmentHandler{db: db, gate: gate, recorder: recorder}
}

// List handles GET /api/:tenant/leads/:id/appointments
func (h *AppointmentHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	membership, _, ok := requireMembership(c, h.gate, model.RoleAgent)
	if !ok {
		return nil
	}

	lead, err := h.findLead(c, membership.TenantID)
	if err != nil {
		return err
	}
	if lead == nil {
		return nil
	}

	var appointments []model.Appointment
	err = h.db.WithContext(c.Request().Context()).
		Where("lead_id = ?", lead.ID).
		Order("starts_at asc").
		Find(&appointments).Error
	if err != nil {
		log.Error("Failed to list appointments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve appointments"})
	}

	return c.JSON(http.StatusOK, appointments)
}

// Create handles POST /api/:tenant/leads/:id/appointments
func (h *AppointmentHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	membership, claims, ok := requireMembership(c, h.gate, model.RoleAgent)
	if !ok {
		return nil
	}

	var req validation.CreateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse appointment request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if issues := validation.Validate(&req); issues != nil {
		return validationFailed(c, issues)
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "validation error",
			"details": []validation.FieldIssue{{Field: "startsAt", Message: "startsAt must be a valid timestamp"}},
		})
	}
	var endsAt *time.Time
	if req.EndsAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.EndsAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   "validation error",
				"details": []validation.FieldIssue{{Field: "endsAt", Message: "endsAt must be a valid timestamp"}},
			})
		}
		endsAt = &parsed
	}

	lead, findErr := h.findLead(c, membership.TenantID)
	if findErr != nil {
		return findErr
	}
	if lead == nil {
		return nil
	}

	appointment := model.Appointment{
		LeadID:      lead.ID,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Location:    req.Location,
		Notes:       req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	ctx := c.Request().Context()
	tx := h.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if result := tx.Create(&appointment); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create appointment", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "appointment creation failed"})
	}

	if err := h.recorder.Record(tx, audit.Entry{
		TenantID: membership.TenantID,
		LeadID:   lead.ID,
		UserID:   claims.UserID,
		Action:   audit.ActionAppointmentCreated,
		Meta: map[string]interface{}{
			"type":     appointment.Type,
			"title":    appointment.Title,
			"startsAt": appointment.StartsAt.Format(time.RFC3339),
		},
	}); err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "appointment creation failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	log.Info("Appointment created",
		zap.String("appointment_id", appointment.ID),
		zap.String("lead_id", lead.ID))

	return c.JSON(http.StatusCreated, appointment)
}

func (h *AppointmentHandler) findLead(c echo.Context, tenantID string) (*model.Lead, error) {
	log := logger.FromEcho(c)

	var lead model.Lead
	err := h.db.WithContext(c.Request().Context()).
		Where("id = ? AND tenant_id = ?", c.Param("id"), tenantID).
		First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "lead not found"})
		}
		log.Error("Lead lookup failed", zap.Error(err))
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return &lead, nil
}
