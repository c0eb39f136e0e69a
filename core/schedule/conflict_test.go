package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/academia/core/meeting"
)

func TestFindConflict(t *testing.T) {
	events := BuildEvents(
		[]meeting.Meeting{newMeeting("own", "s1", 1, 1, "2024-06-02", "09:00", "11:00")},
		[]meeting.Meeting{
			newMeeting("foreign-a", "s2", 2, 1, "2024-06-04", "10:00", "10:30"),
			newMeeting("foreign-b", "s3", 3, 1, "2024-06-04", "10:15", "12:00"),
		},
	)

	tests := []struct {
		name    string
		cand    Candidate
		exclude []string
		wantID  string
	}{
		{
			name: "free day",
			cand: Candidate{Date: date("2024-06-03"), StartTime: tod("09:00"), EndTime: tod("11:00")},
		},
		{
			name: "same time on another date",
			cand: Candidate{Date: date("2024-06-09"), StartTime: tod("09:00"), EndTime: tod("11:00")},
		},
		{
			name: "touching end is free",
			cand: Candidate{Date: date("2024-06-02"), StartTime: tod("11:00"), EndTime: tod("12:00")},
		},
		{
			name: "touching start is free",
			cand: Candidate{Date: date("2024-06-02"), StartTime: tod("08:00"), EndTime: tod("09:00")},
		},
		{
			name:   "overlaps owned",
			cand:   Candidate{Date: date("2024-06-02"), StartTime: tod("10:00"), EndTime: tod("12:00")},
			wantID: "own",
		},
		{
			name:   "first match in order wins",
			cand:   Candidate{Date: date("2024-06-04"), StartTime: tod("10:00"), EndTime: tod("11:00")},
			wantID: "foreign-a",
		},
		{
			name:    "excluded event is skipped",
			cand:    Candidate{Date: date("2024-06-04"), StartTime: tod("10:00"), EndTime: tod("11:00")},
			exclude: []string{"foreign-a"},
			wantID:  "foreign-b",
		},
		{
			name:    "editing a meeting onto itself",
			cand:    Candidate{Date: date("2024-06-02"), StartTime: tod("09:30"), EndTime: tod("11:30")},
			exclude: []string{"own"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := FindConflict(tt.cand, events, tt.exclude...)
			if tt.wantID == "" {
				assert.False(t, found, "unexpected conflict with %q", got.ID)
				return
			}
			if assert.True(t, found) {
				assert.Equal(t, tt.wantID, got.ID)
			}
		})
	}
}

func TestFindConflict_EmptyIDNotExcluded(t *testing.T) {
	events := []CalendarInterval{Project(newMeeting("", "s1", 1, 1, "2024-06-02", "09:00", "11:00"), true)}
	cand := Candidate{Date: date("2024-06-02"), StartTime: tod("10:00"), EndTime: tod("11:00")}

	_, found := FindConflict(cand, events, "")
	assert.True(t, found)
}
