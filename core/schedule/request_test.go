package schedule

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/academia/core"
)

func TestRequest_Validate(t *testing.T) {
	today := date("2024-06-01")

	tests := []struct {
		name         string
		modify       func(r *Request)
		sectionStart civil.Date
		wantFields   []string
		wantEarliest civil.Date
	}{
		{name: "valid", modify: func(r *Request) {}},
		{name: "starts today", modify: func(r *Request) { r.StartDate = today }},
		{
			name:       "missing everything",
			modify:     func(r *Request) { *r = Request{StartTime: -1} },
			wantFields: []string{"weekdays", "start_date", "start_time", "course_hours", "total_meetings"},
		},
		{
			name:       "too many meetings",
			modify:     func(r *Request) { r.TotalMeetings, r.CourseHours = 5, 3 },
			wantFields: []string{"total_meetings"},
		},
		{
			name:       "negative meetings",
			modify:     func(r *Request) { r.TotalMeetings = -1 },
			wantFields: []string{"total_meetings"},
		},
		{
			name:       "weekday out of range",
			modify:     func(r *Request) { r.Weekdays = []time.Weekday{time.Sunday, -1} },
			wantFields: []string{"weekdays"},
		},
		{
			name:         "before today",
			modify:       func(r *Request) { r.StartDate = date("2024-05-31") },
			wantEarliest: today,
		},
		{
			name:         "before section start",
			modify:       func(r *Request) {},
			sectionStart: date("2024-06-10"),
			wantEarliest: date("2024-06-10"),
		},
		{
			name:         "section started in the past",
			modify:       func(r *Request) { r.StartDate = date("2024-05-20") },
			sectionStart: date("2024-05-01"),
			wantEarliest: today,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sundaysAndTuesdays()
			tt.modify(&req)
			err := req.Validate(today, tt.sectionStart)

			switch {
			case len(tt.wantFields) > 0:
				var valErr *core.ValidationError
				if assert.True(t, errors.As(err, &valErr), "got %v", err) {
					var fields []string
					for _, fld := range valErr.Fields {
						fields = append(fields, fld.Field)
					}
					assert.Equal(t, tt.wantFields, fields)
				}
			case tt.wantEarliest.IsValid():
				var dateErr *DateTooEarlyError
				if assert.True(t, errors.As(err, &dateErr), "got %v", err) {
					assert.Equal(t, tt.wantEarliest, dateErr.Earliest)
				}
			default:
				assert.NoError(t, err)
			}
		})
	}
}
