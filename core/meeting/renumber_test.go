package meeting

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/academia/core"
)

func mtg(id string, num int, day int, start string) Meeting {
	return Meeting{
		ID:            id,
		MeetingNumber: num,
		Date:          civil.Date{Year: 2024, Month: 3, Day: day},
		StartTime:     core.MustParseTimeOfDay(start),
		EndTime:       core.MustParseTimeOfDay(start).Add(time.Hour),
	}
}

func TestDenseRenumberer_Renumber(t *testing.T) {
	tests := []struct {
		name     string
		meetings []Meeting
		want     map[string]int
	}{
		{name: "empty", meetings: nil, want: map[string]int{}},
		{
			name:     "already dense",
			meetings: []Meeting{mtg("a", 1, 4, "09:00"), mtg("b", 2, 6, "09:00")},
			want:     map[string]int{},
		},
		{
			name:     "gap after deletion",
			meetings: []Meeting{mtg("a", 1, 4, "09:00"), mtg("c", 3, 8, "09:00"), mtg("d", 4, 11, "09:00")},
			want:     map[string]int{"c": 2, "d": 3},
		},
		{
			name:     "chronological order wins over previous numbers",
			meetings: []Meeting{mtg("late", 1, 20, "09:00"), mtg("early", 5, 2, "09:00"), mtg("mid", 3, 10, "14:00")},
			want:     map[string]int{"early": 1, "mid": 2, "late": 3},
		},
		{
			name:     "same day ordered by start time",
			meetings: []Meeting{mtg("pm", 1, 4, "15:00"), mtg("am", 2, 4, "09:00")},
			want:     map[string]int{"am": 1, "pm": 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(map[string]int)
			for _, m := range (DenseRenumberer{}).Renumber(tt.meetings) {
				got[m.ID] = m.MeetingNumber
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeepNumbers_Renumber(t *testing.T) {
	assert.Empty(t, KeepNumbers{}.Renumber([]Meeting{mtg("c", 3, 8, "09:00")}))
}

func TestValidateTimes(t *testing.T) {
	tests := []struct {
		name       string
		start, end core.TimeOfDay
		wantErr    bool
	}{
		{name: "valid", start: core.NewTimeOfDay(9, 0), end: core.NewTimeOfDay(11, 0)},
		{name: "equal", start: core.NewTimeOfDay(9, 0), end: core.NewTimeOfDay(9, 0), wantErr: true},
		{name: "reversed", start: core.NewTimeOfDay(11, 0), end: core.NewTimeOfDay(9, 0), wantErr: true},
		{name: "past midnight", start: core.NewTimeOfDay(23, 0), end: core.NewTimeOfDay(25, 0), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimes(tt.start, tt.end)
			if tt.wantErr {
				_, ok := err.(*core.ValidationError)
				assert.True(t, ok, "expected a validation error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
