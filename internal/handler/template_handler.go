package handler

import (
	"net/http"

	"crm-service/internal/model"
	"crm-service/internal/tenancy"
	"crm-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TemplateHandler lists the tenant's reusable message templates
type TemplateHandler struct {
	db   *gorm.DB
	gate *tenancy.Gate
}

func NewTemplateHandler(db *gorm.DB, gate *tenancy.Gate) *TemplateHandler {
	return &TemplateHandler{db: db, gate: gate}
}

// List handles GET /api/:tenant/templates with an optional channel filter
func (h *TemplateHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	membership, _, ok := requireMembership(c, h.gate, model.RoleAgent)
	if !ok {
		return nil
	}

	query := h.db.WithContext(c.Request().Context()).
		Where("tenant_id = ?", membership.TenantID)
	if channel := c.QueryParam("channel"); channel != "" {
		query = query.Where("channel = ?", channel)
	}

	var templates []model.Template
	if err := query.Order("name asc").Find(&templates).Error; err != nil {
		log.Error("Failed to list templates", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve templates"})
	}

	return c.JSON(http.StatusOK, templates)
}
