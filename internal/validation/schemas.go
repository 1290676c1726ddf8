package validation

import "crm-service/internal/model"

// CreateLeadRequest is the payload for authenticated lead creation. StatusID
// is optional; the handler resolves the tenant's default status when absent.
type CreateLeadRequest struct {
	Name              string                 `json:"name" validate:"required"`
	Email             string                 `json:"email" validate:"omitempty,email"`
	Phone             string                 `json:"phone"`
	Address           string                 `json:"address"`
	Postcode          string                 `json:"postcode"`
	ProductTypeID     string                 `json:"productTypeId"`
	StatusID          string                 `json:"statusId"`
	AssignedUserID    string                 `json:"assignedUserId"`
	JobValue          *float64               `json:"jobValue" validate:"omitempty,gt=0"`
	EstimatedValue    *float64               `json:"estimatedValue" validate:"omitempty,gt=0"`
	Priority          string                 `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Source            string                 `json:"source"`
	Notes             string                 `json:"notes"`
	CustomFieldValues map[string]interface{} `json:"customFieldValues"`
}

// ApplyDefaults fills the documented defaults before validation
func (r *CreateLeadRequest) ApplyDefaults() {
	if r.Priority == "" {
		r.Priority = model.PriorityMedium
	}
	if r.CustomFieldValues == nil {
		r.CustomFieldValues = map[string]interface{}{}
	}
}

// UpdateLeadRequest is a partial update: nil fields are left untouched
type UpdateLeadRequest struct {
	Name              *string                `json:"name" validate:"omitempty,min=1"`
	Email             *string                `json:"email" validate:"omitempty,email"`
	Phone             *string                `json:"phone"`
	Address           *string                `json:"address"`
	Postcode          *string                `json:"postcode"`
	ProductTypeID     *string                `json:"productTypeId"`
	AssignedUserID    *string                `json:"assignedUserId"`
	JobValue          *float64               `json:"jobValue" validate:"omitempty,gt=0"`
	EstimatedValue    *float64               `json:"estimatedValue" validate:"omitempty,gt=0"`
	Priority          *string                `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Source            *string                `json:"source"`
	Notes             *string                `json:"notes"`
	CustomFieldValues map[string]interface{} `json:"customFieldValues"`
}

// UpdateLeadStatusRequest is the status-only PATCH payload
type UpdateLeadStatusRequest struct {
	StatusID string `json:"statusId" validate:"required"`
}

// PublicLeadRequest is the unauthenticated embed form submission
type PublicLeadRequest struct {
	Name              string                 `json:"name" validate:"required"`
	Email             string                 `json:"email" validate:"omitempty,email"`
	Phone             string                 `json:"phone"`
	Address           string                 `json:"address"`
	Postcode          string                 `json:"postcode"`
	Message           string                 `json:"message"`
	Source            string                 `json:"source"`
	UTMSource         string                 `json:"utmSource"`
	UTMMedium         string                 `json:"utmMedium"`
	UTMCampaign       string                 `json:"utmCampaign"`
	CustomFieldValues map[string]interface{} `json:"customFieldValues"`
}

// ApplyDefaults fills the documented defaults before validation
func (r *PublicLeadRequest) ApplyDefaults() {
	if r.Source == "" {
		r.Source = "website"
	}
	if r.CustomFieldValues == nil {
		r.CustomFieldValues = map[string]interface{}{}
	}
}

// CreateAppointmentRequest is the payload for logging an appointment
type CreateAppointmentRequest struct {
	Type        string `json:"type" validate:"required,oneof=CALL MEETING SITE_VISIT DEMO CONSULTATION FOLLOW_UP"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	StartsAt    string `json:"startsAt" validate:"required"`
	EndsAt      string `json:"endsAt"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
}

// SendMessageRequest is the payload for dispatching a message to a lead.
// Either TemplateID or Body must be present; the handler checks that after
// schema validation.
type SendMessageRequest struct {
	Channel    string `json:"channel" validate:"required,oneof=SMS WHATSAPP EMAIL"`
	TemplateID string `json:"templateId"`
	To         string `json:"to" validate:"required"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	From       string `json:"from"`
}
