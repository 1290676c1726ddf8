package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"crm-service/internal/audit"
	"crm-service/internal/model"
	"crm-service/internal/validation"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PublicHandler serves the unauthenticated embed endpoints. Submissions are
// attributed to a synthetic system user.
type PublicHandler struct {
	db              *gorm.DB
	recorder        *audit.Recorder
	allowedOrigins  []string
	systemUserEmail string
}

func NewPublicHandler(db *gorm.DB, recorder *audit.Recorder, allowedOrigins []string, systemUserEmail string) *PublicHandler {
	return &PublicHandler{
		db:              db,
		recorder:        recorder,
		allowedOrigins:  allowedOrigins,
		systemUserEmail: systemUserEmail,
	}
}

// originAllowed applies the embed allow-list: an empty list accepts any
// origin, and requests without an Origin header are never rejected here.
func originAllowed(origin string, allowed []string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if candidate == origin {
			return true
		}
	}
	return false
}

// CreateLead handles POST /api/public/:tenant/leads
func (h *PublicHandler) CreateLead(c echo.Context) error {
	log := logger.FromEcho(c)

	origin := c.Request().Header.Get("Origin")
	if !originAllowed(origin, h.allowedOrigins) {
		log.Warn("Public lead submission from disallowed origin",
			zap.String("origin", origin))
		prometheus.RecordPublicLead("origin_rejected")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "origin not allowed"})
	}

	ctx := c.Request().Context()

	var tenant model.Tenant
	err := h.db.WithContext(ctx).Where("slug = ?", c.Param("tenant")).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Tenant lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	var defaultStatus model.LeadStatus
	err = h.db.WithContext(ctx).
		Where("tenant_id = ? AND is_default = ?", tenant.ID, true).
		First(&defaultStatus).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("No default status configured", zap.String("tenant_id", tenant.ID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no default status configured for this tenant"})
		}
		log.Error("Default status lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	var req validation.PublicLeadRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse public lead submission", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.ApplyDefaults()
	if issues := validation.Validate(&req); issues != nil {
		prometheus.RecordPublicLead("invalid")
		return validationFailed(c, issues)
	}

	systemUser, err := h.systemUser(ctx)
	if err != nil {
		log.Error("Failed to resolve system user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	// UTM attribution rides along in the custom-field bag
	customFields := datatypes.JSONMap(req.CustomFieldValues)
	if req.UTMSource != "" {
		customFields["utm_source"] = req.UTMSource
	}
	if req.UTMMedium != "" {
		customFields["utm_medium"] = req.UTMMedium
	}
	if req.UTMCampaign != "" {
		customFields["utm_campaign"] = req.UTMCampaign
	}

	lead := model.Lead{
		TenantID:          tenant.ID,
		CreatedByID:       systemUser.ID,
		StatusID:          defaultStatus.ID,
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Address:           req.Address,
		Postcode:          req.Postcode,
		Notes:             req.Message,
		Source:            req.Source,
		Priority:          model.PriorityMedium,
		CustomFieldValues: customFields,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	tx := h.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	if result := tx.Create(&lead); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create public lead", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	if err := h.recorder.Record(tx, audit.Entry{
		TenantID: tenant.ID,
		LeadID:   lead.ID,
		UserID:   systemUser.ID,
		Action:   audit.ActionLeadCreated,
		Meta: map[string]interface{}{
			"source": "public_form",
			"origin": origin,
			"utm": map[string]interface{}{
				"source":   req.UTMSource,
				"medium":   req.UTMMedium,
				"campaign": req.UTMCampaign,
			},
		},
	}); err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	log.Info("Public lead captured",
		zap.String("lead_id", lead.ID),
		zap.String("tenant_id", tenant.ID),
		zap.String("source", lead.Source))
	prometheus.RecordPublicLead("created")

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"leadId":  lead.ID,
		"message": "Thank you! We'll be in touch soon.",
	})
}

// FormConfig handles GET /api/public/:tenant/leads, returning the embed
// form configuration
func (h *PublicHandler) FormConfig(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	var tenant model.Tenant
	err := h.db.WithContext(ctx).
		Preload("Settings").
		Where("slug = ?", c.Param("tenant")).
		First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Tenant lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	var productTypes []model.ProductType
	if err := h.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenant.ID, true).
		Order("display_order asc").
		Find(&productTypes).Error; err != nil {
		log.Error("Failed to load product types", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	var customFields []model.CustomField
	if err := h.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenant.ID, true).
		Order("display_order asc").
		Find(&customFields).Error; err != nil {
		log.Error("Failed to load custom fields", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	businessName := tenant.Name
	primaryColor := "#3b82f6"
	if tenant.Settings != nil {
		if tenant.Settings.BusinessName != "" {
			businessName = tenant.Settings.BusinessName
		}
		if tenant.Settings.PrimaryColor != "" {
			primaryColor = tenant.Settings.PrimaryColor
		}
	}

	types := make([]echo.Map, 0, len(productTypes))
	for _, pt := range productTypes {
		types = append(types, echo.Map{"id": pt.ID, "name": pt.Name, "slug": pt.Slug})
	}

	fields := make([]echo.Map, 0, len(customFields))
	for _, cf := range customFields {
		fields = append(fields, echo.Map{
			"id":         cf.ID,
			"name":       cf.Name,
			"slug":       cf.Slug,
			"type":       cf.Type,
			"options":    cf.Options,
			"isRequired": cf.IsRequired,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"tenant": echo.Map{
			"name":         tenant.Name,
			"businessName": businessName,
			"primaryColor": primaryColor,
		},
		"productTypes": types,
		"customFields": fields,
	})
}

// systemUser finds or creates the synthetic user public submissions are
// attributed to
func (h *PublicHandler) systemUser(ctx context.Context) (*model.User, error) {
	var user model.User
	err := h.db.WithContext(ctx).Where("email = ?", h.systemUserEmail).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = model.User{Email: h.systemUserEmail, Name: "System"}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
