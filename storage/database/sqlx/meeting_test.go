package sqlxrepos

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/academia/core/meeting"
)

func TestMeetingWhere(t *testing.T) {
	instructorID := uuid.New().String()
	sectionID := uuid.New().String()

	tests := []struct {
		name      string
		filter    *meeting.QueryFilter
		wantOK    bool
		wantWhere string
		wantArgs  []interface{}
	}{
		{name: "no filter", wantOK: true},
		{name: "malformed id", filter: &meeting.QueryFilter{SectionID: "lol"}},
		{
			name:      "location is matched literally",
			filter:    &meeting.QueryFilter{Location: "Room_1%"},
			wantOK:    true,
			wantWhere: " WHERE LOWER(m.location) = LOWER(?)",
			wantArgs:  []interface{}{"Room_1%"},
		},
		{
			name: "pool",
			filter: &meeting.QueryFilter{
				ExcludeSectionID: sectionID,
				PoolInstructorID: instructorID,
				PoolLocation:     "Room_1",
				DateFrom:         civil.Date{Year: 2030, Month: 1, Day: 7},
			},
			wantOK:    true,
			wantWhere: " WHERE m.section_id <> ? AND (m.instructor_id = ? OR LOWER(m.location) = LOWER(?)) AND m.date >= ?",
			wantArgs:  []interface{}{sectionID, instructorID, "Room_1", "2030-01-07"},
		},
		{
			name:      "pool by location only",
			filter:    &meeting.QueryFilter{PoolLocation: "Room_1"},
			wantOK:    true,
			wantWhere: " WHERE LOWER(m.location) = LOWER(?)",
			wantArgs:  []interface{}{"Room_1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := meetingWhere(tt.filter)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantWhere, w.String())
			assert.Equal(t, tt.wantArgs, w.args)
			assert.NotContains(t, w.String(), "LIKE")
		})
	}
}
