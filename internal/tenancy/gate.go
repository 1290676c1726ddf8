package tenancy

import (
	"context"
	"errors"

	"crm-service/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrNoAccess means the tenant does not exist or the caller is not a member
	ErrNoAccess = errors.New("no access to tenant")
	// ErrForbidden means the caller is a member but ranks below the required role
	ErrForbidden = errors.New("insufficient permissions")
)

// Gate resolves a caller's membership for a tenant. Every tenant-scoped
// handler goes through it before touching tenant data.
type Gate struct {
	db *gorm.DB
}

func NewGate(db *gorm.DB) *Gate {
	return &Gate{db: db}
}

// Require returns the caller's membership for the tenant named by slug,
// with the tenant and its settings preloaded. Membership lookup failure and
// unknown tenants both map to ErrNoAccess so the response does not reveal
// whether the tenant exists.
func (g *Gate) Require(ctx context.Context, tenantSlug, userID string, minRole model.Role) (*model.Membership, error) {
	var tenant model.Tenant
	if err := g.db.WithContext(ctx).Where("slug = ?", tenantSlug).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoAccess
		}
		return nil, err
	}

	var membership model.Membership
	err := g.db.WithContext(ctx).
		Preload("Tenant").
		Preload("Tenant.Settings").
		Preload("User").
		Where("tenant_id = ? AND user_id = ?", tenant.ID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoAccess
		}
		return nil, err
	}

	if !membership.Role.AtLeast(minRole) {
		return nil, ErrForbidden
	}

	return &membership, nil
}
