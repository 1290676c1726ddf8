package stats

import (
	"context"
	"time"

	"crm-service/internal/model"

	"gorm.io/gorm"
)

// Overview is the full reporting payload for a tenant and date window
type Overview struct {
	Summary              Summary               `json:"summary"`
	LeadsByStatus        []StatusCount         `json:"leadsByStatus"`
	LeadsBySource        []SourceCount         `json:"leadsBySource"`
	UpcomingAppointments []UpcomingAppointment `json:"upcomingAppointments"`
	RecentActivity       []ActivityEntry       `json:"recentActivity"`
	DailyTrend           []DailyCount          `json:"dailyTrend"`
}

// StatusCount is the lead count for one pipeline stage, ordered by the
// stage's configured display order
type StatusCount struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Color   string `json:"color"`
	Count   int    `json:"count"`
	IsFinal bool   `json:"isFinal"`
}

// UpcomingAppointment is one entry of the near-term appointment feed
type UpcomingAppointment struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"startsAt"`
	Lead     LeadRef   `json:"lead"`
}

// LeadRef is the lead contact summary embedded in feeds
type LeadRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// ActivityEntry is one entry of the recent audit feed
type ActivityEntry struct {
	ID        string                 `json:"id"`
	Action    string                 `json:"action"`
	CreatedAt time.Time              `json:"createdAt"`
	User      string                 `json:"user"`
	Lead      string                 `json:"lead,omitempty"`
	Meta      map[string]interface{} `json:"meta"`
}

// Service computes the reporting payload. Read-only: no mutation, no
// external call, deterministic given the database state at query time.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Overview computes the full payload for the last `days` days (inclusive
// start-of-day to end-of-day)
func (s *Service) Overview(ctx context.Context, tenantID string, days int) (*Overview, error) {
	if days <= 0 {
		days = 30
	}

	now := time.Now()
	windowStart := startOfDay(now.AddDate(0, 0, -days))
	windowEnd := endOfDay(now)

	leads, err := s.leadsInWindow(ctx, tenantID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.countByStatus(ctx, tenantID, leads)
	if err != nil {
		return nil, err
	}

	appointments, err := s.upcomingAppointments(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}

	activity, err := s.recentActivity(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Summary:              summarize(leads),
		LeadsByStatus:        byStatus,
		LeadsBySource:        countBySource(leads),
		UpcomingAppointments: appointments,
		RecentActivity:       activity,
		DailyTrend:           dailyTrend(leads),
	}, nil
}

func (s *Service) leadsInWindow(ctx context.Context, tenantID string, start, end time.Time) ([]model.Lead, error) {
	var leads []model.Lead
	err := s.db.WithContext(ctx).
		Preload("Status").
		Where("tenant_id = ? AND created_at >= ? AND created_at <= ?", tenantID, start, end).
		Find(&leads).Error
	if err != nil {
		return nil, err
	}
	return leads, nil
}

// countByStatus returns every pipeline stage of the tenant with its count of
// window leads, in display order. Stages with no leads still appear.
func (s *Service) countByStatus(ctx context.Context, tenantID string, leads []model.Lead) ([]StatusCount, error) {
	var statuses []model.LeadStatus
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("display_order asc").
		Find(&statuses).Error
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for i := range leads {
		counts[leads[i].StatusID]++
	}

	result := make([]StatusCount, 0, len(statuses))
	for _, status := range statuses {
		result = append(result, StatusCount{
			ID:      status.ID,
			Name:    status.Name,
			Slug:    status.Slug,
			Color:   status.Color,
			Count:   counts[status.ID],
			IsFinal: status.IsFinal,
		})
	}
	return result, nil
}

func (s *Service) upcomingAppointments(ctx context.Context, tenantID string, now time.Time) ([]UpcomingAppointment, error) {
	var appointments []model.Appointment
	err := s.db.WithContext(ctx).
		Preload("Lead").
		Joins("JOIN leads ON leads.id = appointments.lead_id").
		Where("leads.tenant_id = ?", tenantID).
		Where("appointments.starts_at >= ? AND appointments.starts_at <= ?", now, endOfDay(now.AddDate(0, 0, 7))).
		Order("appointments.starts_at asc").
		Limit(10).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}

	result := make([]UpcomingAppointment, 0, len(appointments))
	for _, a := range appointments {
		result = append(result, UpcomingAppointment{
			ID:       a.ID,
			Type:     a.Type,
			Title:    a.Title,
			StartsAt: a.StartsAt,
			Lead: LeadRef{
				ID:    a.Lead.ID,
				Name:  a.Lead.Name,
				Phone: a.Lead.Phone,
				Email: a.Lead.Email,
			},
		})
	}
	return result, nil
}

func (s *Service) recentActivity(ctx context.Context, tenantID string, now time.Time) ([]ActivityEntry, error) {
	var logs []model.AuditLog
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Lead").
		Where("tenant_id = ? AND created_at >= ?", tenantID, now.AddDate(0, 0, -7)).
		Order("created_at desc").
		Limit(20).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	result := make([]ActivityEntry, 0, len(logs))
	for _, entry := range logs {
		userName := "System"
		if entry.User != nil && entry.User.Name != "" {
			userName = entry.User.Name
		}
		leadName := ""
		if entry.Lead != nil {
			leadName = entry.Lead.Name
		}
		result = append(result, ActivityEntry{
			ID:        entry.ID,
			Action:    entry.Action,
			CreatedAt: entry.CreatedAt,
			User:      userName,
			Lead:      leadName,
			Meta:      map[string]interface{}(entry.Meta),
		})
	}
	return result, nil
}
