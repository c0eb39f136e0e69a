package lead

import (
	"time"

	"github.com/trezcool/academia/core"
)

// Statuses
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusEnrolled  = "enrolled"
	StatusLost      = "lost"
)

var Statuses = []string{StatusNew, StatusContacted, StatusEnrolled, StatusLost}

// Lead is a prospective student.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CourseID  string    `json:"course_id,omitempty"`
	Status    string    `json:"status"`
	Source    string    `json:"source,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewLead contains information needed to record a new Lead.
type NewLead struct {
	Name     string `json:"name" validate:"required,notblank,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=50"`
	CourseID string `json:"course_id"`
	Status   string `json:"status" validate:"omitempty,leadstatus"`
	Source   string `json:"source" validate:"omitempty,max=100"`
	Notes    string `json:"notes"`
}

func (nl *NewLead) Clean() {
	nl.Name = core.CleanString(nl.Name)
	nl.Email = core.CleanString(nl.Email, true /* lower */)
	nl.Phone = core.CleanString(nl.Phone)
	nl.CourseID = core.CleanString(nl.CourseID)
	nl.Status = core.CleanString(nl.Status, true /* lower */)
	nl.Source = core.CleanString(nl.Source)
	nl.Notes = core.CleanString(nl.Notes)
}

// UpdateLead defines what may be changed on an existing Lead.
type UpdateLead struct {
	Name     *string `json:"name" validate:"omitempty,notblank,max=255"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
	CourseID *string `json:"course_id"`
	Status   *string `json:"status" validate:"omitempty,leadstatus"`
	Source   *string `json:"source" validate:"omitempty,max=100"`
	Notes    *string `json:"notes"`
}

type QueryFilter struct {
	Search   string   `query:"search"`
	Statuses []string `query:"status"`
	CourseID string   `query:"course_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.CourseID = core.CleanString(qf.CourseID)
}
