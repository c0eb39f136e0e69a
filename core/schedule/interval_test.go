package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/meeting"
)

func TestBuildEvents(t *testing.T) {
	owned := []meeting.Meeting{
		newMeeting("o1", "s1", 1, 1, "2024-06-02", "09:00", "11:00"),
		newMeeting("o2", "s1", 1, 2, "2024-06-04", "09:00", "11:00"),
	}
	foreign := []meeting.Meeting{
		newMeeting("f1", "s2", 2, 1, "2024-06-02", "10:00", "10:30"),
	}

	events := BuildEvents(owned, foreign)
	require.Len(t, events, 3)

	ids := []string{events[0].ID, events[1].ID, events[2].ID}
	assert.Equal(t, []string{"o1", "o2", "f1"}, ids)
	assert.True(t, events[0].Owned)
	assert.True(t, events[1].Owned)
	assert.False(t, events[2].Owned)

	f1 := events[2]
	assert.Equal(t, "s2", f1.SectionID)
	assert.Equal(t, 2, f1.SectionNumber)
	assert.Equal(t, time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC), f1.Start)
	assert.Equal(t, time.Date(2024, 6, 2, 10, 30, 0, 0, time.UTC), f1.End)
}

func TestBuildEvents_Empty(t *testing.T) {
	assert.Empty(t, BuildEvents(nil, nil))
}

func TestCalendarInterval_RoundTrip(t *testing.T) {
	mtg := newMeeting("m", "s1", 1, 7, "2024-11-03", "08:15", "20:00")
	iv := Project(mtg, true)

	assert.Equal(t, mtg.Date, iv.Date)
	assert.Equal(t, mtg.StartTime, iv.StartTime())
	assert.Equal(t, mtg.EndTime, iv.EndTime())
	assert.Equal(t, iv, Project(mtg, true))
}

func TestCalendarInterval_Overlaps(t *testing.T) {
	iv := Project(newMeeting("m", "s1", 1, 1, "2024-06-02", "10:00", "12:00"), false)
	at := func(hh, mm int) time.Time { return time.Date(2024, 6, 2, hh, mm, 0, 0, time.UTC) }

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{name: "before", start: at(8, 0), end: at(9, 0), want: false},
		{name: "touching start", start: at(9, 0), end: at(10, 0), want: false},
		{name: "touching end", start: at(12, 0), end: at(13, 0), want: false},
		{name: "overlaps start", start: at(9, 0), end: at(10, 1), want: true},
		{name: "overlaps end", start: at(11, 59), end: at(13, 0), want: true},
		{name: "inside", start: at(10, 30), end: at(11, 0), want: true},
		{name: "covers", start: at(9, 0), end: at(13, 0), want: true},
		{name: "identical", start: at(10, 0), end: at(12, 0), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, iv.Overlaps(tt.start, tt.end))
		})
	}
}
