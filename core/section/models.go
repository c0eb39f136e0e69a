package section

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/trezcool/academia/core"
)

// Section is one offering of a course, taught by at most one instructor.
type Section struct {
	ID            string     `json:"id"`
	CourseID      string     `json:"course_id"`
	SectionNumber int        `json:"section_number"` // dense per course, starting at 1
	InstructorID  string     `json:"instructor_id,omitempty"`
	StartDate     civil.Date `json:"start_date"`
	Location      string     `json:"location,omitempty"`
	Capacity      int        `json:"capacity"`
	CreatedAt     time.Time  `json:"created_at"` // UTC
	UpdatedAt     time.Time  `json:"updated_at"` // UTC
}

// NewSection contains information needed to open a new Section.
type NewSection struct {
	CourseID     string      `json:"course_id" validate:"required"`
	InstructorID string      `json:"instructor_id"`
	StartDate    *civil.Date `json:"start_date" validate:"required"`
	Location     string      `json:"location" validate:"omitempty,max=255"`
	Capacity     int         `json:"capacity" validate:"gte=0"`
}

func (ns *NewSection) Clean() {
	ns.CourseID = core.CleanString(ns.CourseID)
	ns.InstructorID = core.CleanString(ns.InstructorID)
	ns.Location = core.CleanString(ns.Location)
}

// UpdateSection defines what may be changed on an existing Section.
// An empty InstructorID unassigns the instructor.
type UpdateSection struct {
	InstructorID *string     `json:"instructor_id"`
	StartDate    *civil.Date `json:"start_date"`
	Location     *string     `json:"location" validate:"omitempty,max=255"`
	Capacity     *int        `json:"capacity" validate:"omitempty,gte=0"`
}

type QueryFilter struct {
	CourseID     string `query:"course_id"`
	InstructorID string `query:"instructor_id"`
	Location     string `query:"location"`
}

func (qf *QueryFilter) Clean() {
	qf.CourseID = core.CleanString(qf.CourseID)
	qf.InstructorID = core.CleanString(qf.InstructorID)
	qf.Location = core.CleanString(qf.Location)
}
