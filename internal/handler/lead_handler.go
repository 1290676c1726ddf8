package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"crm-service/internal/audit"
	"crm-service/internal/model"
	"crm-service/internal/tenancy"
	"crm-service/internal/validation"
	"crm-service/pkg/jwtutil"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LeadHandler serves the tenant-scoped lead CRUD surface
type LeadHandler struct {
	db       *gorm.DB
	gate     *tenancy.Gate
	recorder *audit.Recorder
}

func NewLeadHandler(db *gorm.DB, gate *tenancy.Gate, recorder *audit.Recorder) *LeadHandler {
	return &LeadHandler{db: db, gate: gate, recorder: recorder}
}

// List handles GET /api/:tenant/leads with filters and pagination
func (h *LeadHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	membership, _, ok := requireMembership(c, h.gate, model.RoleAgent)
	if !ok {
		return nil
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	page, limit = clampPaging(page, limit)

	statusSlug := c.QueryParam("status")
	productTypeSlug := c.QueryParam("productType")
	priority := c.QueryParam("priority")
	search := c.QueryParam("search")

	ctx := c.Request().Context()
	buildQuery := func() *gorm.DB {
		query := h.db.WithContext(ctx).Model(&model.Lead{}).
			Where("leads.tenant_id = ?", membership.TenantID)
		if statusSlug != "" {
			query = query.
				Joins("JOIN lead_statuses ON lead_statuses.id = leads.status_id").
				Where("lead_statuses.slug = ?", statusSlug)
		}
		if productTypeSlug != "" {
			query = query.
				Joins("JOIN product_types ON product_types.id = leads.product_type_id").
				Where("product_types.slug = ?", productTypeSlug)
		}
		if priority != "" {
			query = query.Where("leads.priority = ?", priority)
		}
		if search != "" {
			like := "%" + search + "%"
			query = query.Where(
				"(leads.name ILIKE ? OR leads.email ILIKE ? OR leads.phone ILIKE ? OR leads.postcode ILIKE ?)",
				like, like, like, like)
		}
		return query
	}

	// List page and total count are independent reads, issued together
	var (
		leads []model.Lead
		total int64
	)
	var group errgroup.Group
	group.Go(func() error {
		return buildQuery().Count(&total).Error
	})
	group.Go(func() error {
		return buildQuery().
			Preload("Status").
			Preload("ProductType").
			Preload("AssignedUser").
			Order("leads.created_at desc").
			Limit(limit).
			Offset((page - 1) * limit).
			Find(&leads).Error
	})
	if err := group.Wait(); err != nil {
		log.Error("Failed to list leads", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve leads"})
	}

	prometheus.RecordLeadOperation("list")
	return c.JSON(http.StatusOK, echo.Map{
		"leads": leads,
		"pagination": Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: totalPages(total, limit),
		},
	})
}

// Create handles POST /api/:tenant/leads
func (h *LeadHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	membership, claims, ok := requireMembership(c, h.gate, model.RoleAgent)
	if !ok {
		return nil
	}

	var req validation.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse lead creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.ApplyDefaults()
	if issues := validation.Validate(&req); issues != nil {
		return validationFailed(c, issues)
	}

	ctx := c.Request().Context()

	status, err := h.resolveStatus(c, membership.TenantID, req.StatusID)
	if err != nil {
		return err
	}
	if status == nil {
		return nil // response already written
	}

	if req.ProductTypeID != "" {
		if !h.productTypeBelongsToTenant(ctx, req.ProductTypeID, membership.TenantID) {
			log.Warn("Invalid product type reference",
				zap.String("product_type_id", req.ProductTypeID),
				zap.String("tenant_id", membership.TenantID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product type"})
		}
	}

	lead := model.Lead{
		TenantID:          membership.TenantID,
		CreatedByID:       claims.UserID,
		StatusID:          status.ID,
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Address:           req.Address,
		Postcode:          req.Postcode,
		JobValue:          req.JobValue,
		EstimatedValue:    req.EstimatedValue,
		Priority:          req.Priority,
		Source:            req.Source,
		Notes:             req.Notes,
		CustomFieldValues: datatypes.JSONMap(req.CustomFieldValues),
	}
	if req.ProductTypeID != "" {
		lead.ProductTypeID = &req.ProductTypeID
	}
	if req.AssignedUserID != "" {
		lead.AssignedUserID = &req.AssignedUserID
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	tx := h.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if result := tx.Create(&lead); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create lead", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lead creation failed"})
	}

	if err := h.recorder.Record(tx, audit.Entry{
		TenantID: membership.TenantID,
		LeadID:   lead.ID,
		UserID:   claims.UserID,
		Action:   audit.ActionLeadCreated,
		Meta:     map[string]interface{}{"leadName": lead.Name},
	}); err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lead creation failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	log.Info("Lead created",
		zap.String("lead_id", lead.ID),
		zap.String("tenant_id", membership.TenantID),
		zap.String("status_id", lead.StatusID))
	prometheus.RecordLeadOperation("create")

	return c.JSON(http.StatusCreated, lead)
}

// Get handles GET /api/:tenant/leads/:id
func (h *LeadHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)

	membership, _, ok := requireMembership(c, h.gate, model.RoleAgent)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var lead model.Lead
	err := h.db.WithContext(c.Request().Context()).
		Preload("Status").
		Preload("ProductType").
		Preload("CreatedBy").
		Preload("AssignedUser").
		Preload("Appointments", func(db *gorm.DB) *gorm.DB {
			return db.Order("starts_at asc").Limit(10)
		}).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc").Limit(20)
		}).
		Preload("Messages.User").
		Preload("AuditLogs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc").Limit(50)
		}).
		Preload("AuditLogs.User").
		Where("id = ? AND tenant_id = ?", c.Param("id"), membership.TenantID).
		First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lead not found"})
		}
		log.Error("Failed to fetch lead", zap.String("lead_id", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve lead"})
	}

	prometheus.RecordLeadOperation("get")
	return c.JSON(http.StatusOK, lead)
}

// Update handles PATCH /api/:tenant/leads/:id. A payload carrying a
// non-empty statusId is a status-only change; anything else, including an
// empty or non-string statusId, is a general field update.
func (h *LeadHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)

	membership, claims, ok := requireMembership(c, h.gate, model.RoleAgent)
	if !ok {
		return nil
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		log.Error("Failed to parse lead update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if raw, ok := probe["statusId"]; ok {
		var statusID string
		if err := json.Unmarshal(raw, &statusID); err == nil && statusID != "" {
			return h.updateStatus(c, membership, claims, body)
		}
	}
	return h.updateFields(c, membership, claims, body)
}

func (h *LeadHandler) updateStatus(c echo.Context, membership *model.Membership, claims *jwtutil.UserClaims, body []byte) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	var req validation.UpdateLeadStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if issues := validation.Validate(&req); issues != nil {
		return validationFailed(c, issues)
	}

	// The new status must belong to the same tenant
	var status model.LeadStatus
	err := h.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", req.StatusID, membership.TenantID).
		First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Invalid status reference",
				zap.String("status_id", req.StatusID),
				zap.String("tenant_id", membership.TenantID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		log.Error("Status lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	var lead model.Lead
	err = h.db.WithContext(ctx).
		Preload("Status").
		Where("id = ? AND tenant_id = ?", c.Param("id"), membership.TenantID).
		First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lead not found"})
		}
		log.Error("Lead lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	tx := h.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if result := tx.Model(&model.Lead{}).Where("id = ?", lead.ID).Update("status_id", status.ID); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to update lead status", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status update failed"})
	}

	if err := h.recorder.Record(tx, audit.Entry{
		TenantID: membership.TenantID,
		LeadID:   lead.ID,
		UserID:   claims.UserID,
		Action:   audit.ActionStatusChanged,
		Meta: map[string]interface{}{
			"oldStatus": lead.Status.Name,
			"newStatus": status.Name,
		},
	}); err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status update failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	log.Info("Lead status changed",
		zap.String("lead_id", lead.ID),
		zap.String("old_status", lead.Status.Name),
		zap.String("new_status", status.Name))
	prometheus.RecordLeadOperation("status_change")

	return h.respondWithLead(c, lead.ID, membership.TenantID)
}

// updateColumns maps update payload fields to their database columns
var updateColumns = map[string]string{
	"name":           "name",
	"email":          "email",
	"phone":          "phone",
	"address":        "address",
	"postcode":       "postcode",
	"productTypeId":  "product_type_id",
	"assignedUserId": "assigned_user_id",
	"jobValue":       "job_value",
	"estimatedValue": "estimated_value",
	"priority":       "priority",
	"source":         "source",
	"notes":          "notes",
}

func (h *LeadHandler) updateFields(c echo.Context, membership *model.Membership, claims *jwtutil.UserClaims, body []byte) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	var req validation.UpdateLeadRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if issues := validation.Validate(&req); issues != nil {
		return validationFailed(c, issues)
	}

	if req.ProductTypeID != nil && *req.ProductTypeID != "" {
		if !h.productTypeBelongsToTenant(ctx, *req.ProductTypeID, membership.TenantID) {
			log.Warn("Invalid product type reference",
				zap.String("product_type_id", *req.ProductTypeID),
				zap.String("tenant_id", membership.TenantID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product type"})
		}
	}

	var lead model.Lead
	err := h.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", c.Param("id"), membership.TenantID).
		First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lead not found"})
		}
		log.Error("Lead lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	updates, changedFields := buildLeadUpdates(&req)
	if len(updates) == 0 {
		return h.respondWithLead(c, lead.ID, membership.TenantID)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	tx := h.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if result := tx.Model(&model.Lead{}).Where("id = ?", lead.ID).Updates(updates); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to update lead", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lead update failed"})
	}

	if err := h.recorder.Record(tx, audit.Entry{
		TenantID: membership.TenantID,
		LeadID:   lead.ID,
		UserID:   claims.UserID,
		Action:   audit.ActionLeadUpdated,
		Meta:     map[string]interface{}{"updatedFields": changedFields},
	}); err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lead update failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	log.Info("Lead updated",
		zap.String("lead_id", lead.ID),
		zap.Strings("fields", changedFields))
	prometheus.RecordLeadOperation("update")

	return h.respondWithLead(c, lead.ID, membership.TenantID)
}

// Delete handles DELETE /api/:tenant/leads/:id, restricted to managers and
// above
func (h *LeadHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)

	membership, claims, ok := requireMembership(c, h.gate, model.RoleManager)
	if !ok {
		return nil
	}

	ctx := c.Request().Context()
	var lead model.Lead
	err := h.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", c.Param("id"), membership.TenantID).
		First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lead not found"})
		}
		log.Error("Lead lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	tx := h.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if err := h.recorder.Record(tx, audit.Entry{
		TenantID: membership.TenantID,
		LeadID:   lead.ID,
		UserID:   claims.UserID,
		Action:   audit.ActionLeadDeleted,
		Meta:     map[string]interface{}{"leadName": lead.Name},
	}); err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lead deletion failed"})
	}

	for _, child := range []interface{}{&model.Appointment{}, &model.Message{}} {
		if result := tx.Where("lead_id = ?", lead.ID).Delete(child); result.Error != nil {
			tx.Rollback()
			log.Error("Failed to delete lead children", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lead deletion failed"})
		}
	}

	if result := tx.Delete(&lead); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to delete lead", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lead deletion failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	log.Info("Lead deleted",
		zap.String("lead_id", lead.ID),
		zap.String("tenant_id", membership.TenantID))
	prometheus.RecordLeadOperation("delete")

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// resolveStatus returns the status the new lead should start in: the
// referenced one when present (checked against the tenant), otherwise the
// tenant's configured default. Writes the 400 response and returns nil,nil
// when neither resolves.
func (h *LeadHandler) resolveStatus(c echo.Context, tenantID, statusID string) (*model.LeadStatus, error) {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	var status model.LeadStatus
	if statusID != "" {
		err := h.db.WithContext(ctx).
			Where("id = ? AND tenant_id = ?", statusID, tenantID).
			First(&status).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warn("Invalid status reference",
					zap.String("status_id", statusID),
					zap.String("tenant_id", tenantID))
				return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
			}
			log.Error("Status lookup failed", zap.Error(err))
			return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
		}
		return &status, nil
	}

	err := h.db.WithContext(ctx).
		Where("tenant_id = ? AND is_default = ?", tenantID, true).
		First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("No default status configured", zap.String("tenant_id", tenantID))
			return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "no default status configured for this tenant"})
		}
		log.Error("Default status lookup failed", zap.Error(err))
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return &status, nil
}

func (h *LeadHandler) productTypeBelongsToTenant(ctx context.Context, productTypeID, tenantID string) bool {
	var count int64
	h.db.WithContext(ctx).Model(&model.ProductType{}).
		Where("id = ? AND tenant_id = ?", productTypeID, tenantID).
		Count(&count)
	return count > 0
}

// respondWithLead returns the lead with its display relations preloaded
func (h *LeadHandler) respondWithLead(c echo.Context, leadID, tenantID string) error {
	var lead model.Lead
	err := h.db.WithContext(c.Request().Context()).
		Preload("Status").
		Preload("ProductType").
		Preload("CreatedBy").
		Preload("AssignedUser").
		Where("id = ? AND tenant_id = ?", leadID, tenantID).
		First(&lead).Error
	if err != nil {
		logger.FromEcho(c).Error("Failed to reload lead", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve lead"})
	}
	return c.JSON(http.StatusOK, lead)
}

// buildLeadUpdates converts the non-nil fields of a partial update into a
// column map, returning the JSON names of the changed fields for the audit
// entry
func buildLeadUpdates(req *validation.UpdateLeadRequest) (map[string]interface{}, []string) {
	updates := map[string]interface{}{}
	var changed []string

	set := func(jsonName string, value interface{}) {
		updates[updateColumns[jsonName]] = value
		changed = append(changed, jsonName)
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Email != nil {
		set("email", *req.Email)
	}
	if req.Phone != nil {
		set("phone", *req.Phone)
	}
	if req.Address != nil {
		set("address", *req.Address)
	}
	if req.Postcode != nil {
		set("postcode", *req.Postcode)
	}
	if req.ProductTypeID != nil {
		set("productTypeId", *req.ProductTypeID)
	}
	if req.AssignedUserID != nil {
		set("assignedUserId", *req.AssignedUserID)
	}
	if req.JobValue != nil {
		set("jobValue", *req.JobValue)
	}
	if req.EstimatedValue != nil {
		set("estimatedValue", *req.EstimatedValue)
	}
	if req.Priority != nil {
		set("priority", *req.Priority)
	}
	if req.Source != nil {
		set("source", *req.Source)
	}
	if req.Notes != nil {
		set("notes", *req.Notes)
	}
	if req.CustomFieldValues != nil {
		updates["custom_field_values"] = datatypes.JSONMap(req.CustomFieldValues)
		changed = append(changed, "customFieldValues")
	}

	return updates, changed
}
