package handler

import (
	"net/http"

	"crm-service/internal/middleware"
	"crm-service/internal/model"
	"crm-service/internal/tenancy"
	"crm-service/internal/validation"
	"crm-service/pkg/jwtutil"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Pagination is the paging envelope included in list responses
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// clampPaging normalizes page/limit query values to their allowed ranges
func clampPaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// totalPages computes ceil(total / limit)
func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// requireMembership resolves the caller's membership for the :tenant path
// segment. On failure it writes the error response and returns ok=false, so
// callers bail out with a plain `return nil`.
func requireMembership(c echo.Context, gate *tenancy.Gate, minRole model.Role) (*model.Membership, *jwtutil.UserClaims, bool) {
	log := logger.FromEcho(c)

	claims := middleware.CurrentUser(c)
	if claims == nil {
		log.Error("Missing user claims in authenticated route")
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		return nil, nil, false
	}

	tenantSlug := c.Param("tenant")
	membership, err := gate.Require(c.Request().Context(), tenantSlug, claims.UserID, minRole)
	if err != nil {
		switch err {
		case tenancy.ErrNoAccess:
			log.Warn("Tenant access denied",
				zap.String("tenant", tenantSlug),
				zap.String("user_id", claims.UserID))
			prometheus.RecordAccessDenied("no_membership")
			_ = c.JSON(http.StatusForbidden, echo.Map{"error": "no access to tenant"})
		case tenancy.ErrForbidden:
			log.Warn("Insufficient role for operation",
				zap.String("tenant", tenantSlug),
				zap.String("user_id", claims.UserID))
			prometheus.RecordAccessDenied("insufficient_role")
			_ = c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
		default:
			log.Error("Membership lookup failed", zap.Error(err))
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
		}
		return nil, nil, false
	}

	return membership, claims, true
}

// validationFailed writes the 400 response for schema validation issues
func validationFailed(c echo.Context, issues []validation.FieldIssue) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"error":   "validation error",
		"details": issues,
	})
}
