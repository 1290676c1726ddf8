package handler

import (
	"errors"
	"net/http"
	"time"

	"crm-service/internal/audit"
	"crm-service/internal/messaging"
	"crm-service/internal/model"
	"crm-service/internal/template"
	"crm-service/internal/tenancy"
	"crm-service/internal/validation"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessageHandler sends templated messages to leads and lists the history
type MessageHandler struct {
	db         *gorm.DB
	gate       *tenancy.Gate
	recorder   *audit.Recorder
	dispatcher *messaging.Dispatcher
}

func NewMessageHandler(db *gorm.DB, gate *tenancy.Gate, recorder *audit.Recorder, dispatcher *messaging.Dispatcher) *MessageHandler {
	return &MessageHandler{db: db, gate: gate, recorder: recorder, dispatcher: dispatcher}
}

// List handles GET /api/:tenant/leads/:id/messages
func (h *MessageHandler) List(c echo.Context) error {
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

	var messages []model.Message
	err = h.db.WithContext(c.Request().Context()).
		Preload("User").
		Where("lead_id = ?", lead.ID).
		Order("created_at desc").
		Limit(50).
		Find(&messages).Error
	if err != nil {
		log.Error("Failed to list messages", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve messages"})
	}

	return c.JSON(http.StatusOK, messages)
}

// Send handles POST /api/:tenant/leads/:id/messages. The body is either a
// raw message or a template reference; templates are rendered against the
// lead/tenant variable bag before dispatch.
func (h *MessageHandler) Send(c echo.Context) error {
	log := logger.FromEcho(c)

	membership, claims, ok := requireMembership(c, h.gate, model.RoleAgent)
	if !ok {
		return nil
	}

	var req validation.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse send message request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if issues := validation.Validate(&req); issues != nil {
		return validationFailed(c, issues)
	}
	if req.TemplateID == "" && req.Body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "either templateId or body is required"})
	}

	lead, err := h.findLead(c, membership.TenantID)
	if err != nil {
		return err
	}
	if lead == nil {
		return nil
	}

	ctx := c.Request().Context()
	body := req.Body
	subject := req.Subject

	if req.TemplateID != "" {
		var tmpl model.Template
		err := h.db.WithContext(ctx).
			Where("id = ? AND tenant_id = ?", req.TemplateID, membership.TenantID).
			First(&tmpl).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template"})
			}
			log.Error("Template lookup failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
		}
		body = tmpl.Body
		if subject == "" {
			subject = tmpl.Subject
		}
	}

	vars := messageVars(lead, &membership.Tenant, &membership.User)
	body = template.Render(body, vars)
	subject = template.Render(subject, vars)

	result := h.dispatcher.Send(ctx, messaging.Request{
		Channel: req.Channel,
		To:      req.To,
		Subject: subject,
		Body:    body,
		From:    req.From,
	})

	message := model.Message{
		LeadID:     lead.ID,
		UserID:     claims.UserID,
		Channel:    req.Channel,
		To:         req.To,
		Subject:    subject,
		Body:       body,
		ProviderID: result.ProviderID,
		Error:      result.Error,
		Status:     model.MessageStatusSent,
	}
	if !result.Success {
		message.Status = model.MessageStatusFailed
		prometheus.RecordMessageSend(req.Channel, "failure")
	} else {
		prometheus.RecordMessageSend(req.Channel, "success")
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	tx := h.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if createErr := tx.Create(&message); createErr.Error != nil {
		tx.Rollback()
		log.Error("Failed to persist message", zap.Error(createErr.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record message"})
	}

	if err := h.recorder.Record(tx, audit.Entry{
		TenantID: membership.TenantID,
		LeadID:   lead.ID,
		UserID:   claims.UserID,
		Action:   audit.ActionMessageSent,
		Meta: map[string]interface{}{
			"channel": req.Channel,
			"to":      req.To,
			"success": result.Success,
		},
	}); err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record message"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"result":  result,
		"message": message,
	})
}

func (h *MessageHandler) findLead(c echo.Context, tenantID string) (*model.Lead, error) {
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

// messageVars builds the nested variable bag templates are rendered against
func messageVars(lead *model.Lead, tenant *model.Tenant, sender *model.User) map[string]interface{} {
	return map[string]interface{}{
		"lead": map[string]interface{}{
			"name":     lead.Name,
			"email":    lead.Email,
			"phone":    lead.Phone,
			"address":  lead.Address,
			"postcode": lead.Postcode,
		},
		"tenant": map[string]interface{}{
			"name": tenant.Name,
		},
		"user": map[string]interface{}{
			"name":  sender.Name,
			"email": sender.Email,
		},
	}
}
