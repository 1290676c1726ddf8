package handler

import (
	"net/http"
	"strconv"
	"time"

	"crm-service/internal/model"
	"crm-service/internal/stats"
	"crm-service/internal/tenancy"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// StatsHandler serves the tenant reporting payload
type StatsHandler struct {
	svc  *stats.Service
	gate *tenancy.Gate
}

func NewStatsHandler(svc *stats.Service, gate *tenancy.Gate) *StatsHandler {
	return &StatsHandler{svc: svc, gate: gate}
}

// Overview handles GET /api/:tenant/stats?days=N (default 30)
func (h *StatsHandler) Overview(c echo.Context) error {
	log := logger.FromEcho(c)

	membership, _, ok := requireMembership(c, h.gate, model.RoleAgent)
	if !ok {
		return nil
	}

	days := 30
	if raw := c.QueryParam("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			days = parsed
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	overview, err := h.svc.Overview(c.Request().Context(), membership.TenantID, days)
	if err != nil {
		log.Error("Failed to compute stats",
			zap.String("tenant_id", membership.TenantID),
			zap.Int("days", days),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute stats"})
	}

	return c.JSON(http.StatusOK, overview)
}
