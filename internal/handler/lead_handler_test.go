package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"crm-service/internal/audit"
	"crm-service/internal/model"
	"crm-service/internal/tenancy"
	"crm-service/pkg/jwtutil"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type leadFixture struct {
	db              *gorm.DB
	tenant          model.Tenant
	other           model.Tenant
	agent           model.User
	statusNew       model.LeadStatus
	statusContacted model.LeadStatus
	otherStatus     model.LeadStatus
	otherProduct    model.ProductType
	lead            model.Lead
}

// newLeadFixture opens an in-memory database with the full schema and seeds
// two tenants so cross-tenant references can be exercised
func newLeadFixture(t *testing.T) (*LeadHandler, *leadFixture) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every session on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Tenant{},
		&model.TenantSettings{},
		&model.User{},
		&model.Membership{},
		&model.LeadStatus{},
		&model.ProductType{},
		&model.CustomField{},
		&model.Lead{},
		&model.Appointment{},
		&model.Message{},
		&model.Template{},
		&model.AuditLog{},
	))

	fx := &leadFixture{db: db}

	fx.tenant = model.Tenant{Slug: "acme", Name: "Acme Roofing"}
	require.NoError(t, db.Create(&fx.tenant).Error)
	fx.other = model.Tenant{Slug: "rival", Name: "Rival Windows"}
	require.NoError(t, db.Create(&fx.other).Error)

	fx.agent = model.User{Email: "agent@acme.test", Name: "Agent Jones"}
	require.NoError(t, db.Create(&fx.agent).Error)
	require.NoError(t, db.Create(&model.Membership{
		TenantID: fx.tenant.ID,
		UserID:   fx.agent.ID,
		Role:     model.RoleAgent,
	}).Error)

	fx.statusNew = model.LeadStatus{TenantID: fx.tenant.ID, Name: "New", Slug: "new", IsDefault: true}
	require.NoError(t, db.Create(&fx.statusNew).Error)
	fx.statusContacted = model.LeadStatus{TenantID: fx.tenant.ID, Name: "Contacted", Slug: "contacted", Order: 1}
	require.NoError(t, db.Create(&fx.statusContacted).Error)
	fx.otherStatus = model.LeadStatus{TenantID: fx.other.ID, Name: "New", Slug: "new", IsDefault: true}
	require.NoError(t, db.Create(&fx.otherStatus).Error)
	fx.otherProduct = model.ProductType{TenantID: fx.other.ID, Name: "Windows", Slug: "windows"}
	require.NoError(t, db.Create(&fx.otherProduct).Error)

	fx.lead = model.Lead{
		TenantID:    fx.tenant.ID,
		CreatedByID: fx.agent.ID,
		StatusID:    fx.statusNew.ID,
		Name:        "Jane Smith",
		Priority:    model.PriorityMedium,
	}
	require.NoError(t, db.Create(&fx.lead).Error)

	handler := NewLeadHandler(db, tenancy.NewGate(db), audit.NewRecorder(zap.NewNop()))
	return handler, fx
}

// request builds an echo context as the middleware chain would leave it for
// the seeded agent on the seeded lead
func (fx *leadFixture) request(method, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("tenant", "id")
	c.SetParamValues(fx.tenant.Slug, fx.lead.ID)
	c.Set("user", &jwtutil.UserClaims{UserID: fx.agent.ID, Email: fx.agent.Email})
	return c, rec
}

func (fx *leadFixture) auditRows(t *testing.T, action string) []model.AuditLog {
	t.Helper()
	var rows []model.AuditLog
	require.NoError(t, fx.db.Where("tenant_id = ? AND action = ?", fx.tenant.ID, action).Find(&rows).Error)
	return rows
}

func (fx *leadFixture) reloadLead(t *testing.T) model.Lead {
	t.Helper()
	var lead model.Lead
	require.NoError(t, fx.db.First(&lead, "id = ?", fx.lead.ID).Error)
	return lead
}

func TestUpdateStatusWritesSingleAuditEntry(t *testing.T) {
	h, fx := newLeadFixture(t)

	c, rec := fx.request(http.MethodPatch, `{"statusId":"`+fx.statusContacted.ID+`"}`)
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, fx.statusContacted.ID, fx.reloadLead(t).StatusID)

	rows := fx.auditRows(t, audit.ActionStatusChanged)
	require.Len(t, rows, 1)
	assert.Equal(t, "New", rows[0].Meta["oldStatus"])
	assert.Equal(t, "Contacted", rows[0].Meta["newStatus"])
	require.NotNil(t, rows[0].LeadID)
	assert.Equal(t, fx.lead.ID, *rows[0].LeadID)
	require.NotNil(t, rows[0].UserID)
	assert.Equal(t, fx.agent.ID, *rows[0].UserID)
}

func TestUpdateStatusRejectsCrossTenantStatus(t *testing.T) {
	h, fx := newLeadFixture(t)

	c, rec := fx.request(http.MethodPatch, `{"statusId":"`+fx.otherStatus.ID+`"}`)
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Rejected reference leaves the lead and the audit trail untouched
	assert.Equal(t, fx.statusNew.ID, fx.reloadLead(t).StatusID)
	assert.Empty(t, fx.auditRows(t, audit.ActionStatusChanged))
}

func TestUpdateWithEmptyStatusIDPerformsFieldUpdate(t *testing.T) {
	h, fx := newLeadFixture(t)

	c, rec := fx.request(http.MethodPatch, `{"statusId":"","name":"Janet Smith"}`)
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	lead := fx.reloadLead(t)
	assert.Equal(t, "Janet Smith", lead.Name)
	assert.Equal(t, fx.statusNew.ID, lead.StatusID)

	rows := fx.auditRows(t, audit.ActionLeadUpdated)
	require.Len(t, rows, 1)
	assert.Equal(t, []interface{}{"name"}, rows[0].Meta["updatedFields"])
	assert.Empty(t, fx.auditRows(t, audit.ActionStatusChanged))
}

func TestCreateRejectsCrossTenantStatus(t *testing.T) {
	h, fx := newLeadFixture(t)

	c, rec := fx.request(http.MethodPost, `{"name":"Bob","statusId":"`+fx.otherStatus.ID+`"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	require.NoError(t, fx.db.Model(&model.Lead{}).Where("tenant_id = ?", fx.tenant.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Empty(t, fx.auditRows(t, audit.ActionLeadCreated))
}

func TestCreateRejectsCrossTenantProductType(t *testing.T) {
	h, fx := newLeadFixture(t)

	c, rec := fx.request(http.MethodPost, `{"name":"Bob","productTypeId":"`+fx.otherProduct.ID+`"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	require.NoError(t, fx.db.Model(&model.Lead{}).Where("tenant_id = ?", fx.tenant.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Empty(t, fx.auditRows(t, audit.ActionLeadCreated))
}

func TestCreateRoundTripsCustomFieldBag(t *testing.T) {
	h, fx := newLeadFixture(t)

	c, rec := fx.request(http.MethodPost, `{"name":"Bob","customFieldValues":{"roofType":"slate","floors":2}}`)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	var lead model.Lead
	require.NoError(t, fx.db.First(&lead, "id = ?", created.ID).Error)
	assert.Equal(t, "slate", lead.CustomFieldValues["roofType"])
	assert.Equal(t, float64(2), lead.CustomFieldValues["floors"])
	assert.Equal(t, fx.statusNew.ID, lead.StatusID)

	rows := fx.auditRows(t, audit.ActionLeadCreated)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bob", rows[0].Meta["leadName"])
}
