package inmemdb

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/meeting"
	"github.com/trezcool/academia/core/section"
)

func TestMeetingRepository(t *testing.T) {
	ctx := context.Background()
	db := Open()
	secRepo := NewSectionRepository(db)
	repo := NewMeetingRepository(db)

	secA, err := secRepo.CreateSection(ctx, section.Section{CourseID: "go", InstructorID: "grace", Location: "Room A"})
	require.NoError(t, err)
	secB, err := secRepo.CreateSection(ctx, section.Section{CourseID: "go", InstructorID: "alan", Location: "Room B"})
	require.NoError(t, err)
	assert.Equal(t, 2, secB.SectionNumber)

	mtg := func(sec section.Section, number, day int, start, end string) meeting.Meeting {
		return meeting.Meeting{
			SectionID:     sec.ID,
			CourseID:      sec.CourseID,
			InstructorID:  sec.InstructorID,
			MeetingNumber: number,
			Date:          civil.Date{Year: 2030, Month: 1, Day: day},
			StartTime:     core.MustParseTimeOfDay(start),
			EndTime:       core.MustParseTimeOfDay(end),
			Location:      sec.Location,
		}
	}

	_, err = repo.CreateMeetings(ctx, []meeting.Meeting{mtg(secA, 1, 7, "09:00", "11:00"), {SectionID: "lol"}})
	require.Error(t, err)
	all, err := repo.QueryMeetings(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, all, "a batch with an unknown section stores nothing")

	created, err := repo.CreateMeetings(ctx, []meeting.Meeting{
		mtg(secA, 2, 9, "09:00", "11:00"),
		mtg(secA, 1, 7, "09:00", "11:00"),
		mtg(secB, 1, 7, "13:00", "15:00"),
	})
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, 2, created[2].SectionNumber)

	t.Run("query", func(t *testing.T) {
		archived := true
		tests := []struct {
			name    string
			filter  *meeting.QueryFilter
			wantIDs []string
		}{
			{name: "all, by date then time", wantIDs: []string{created[1].ID, created[2].ID, created[0].ID}},
			{name: "section", filter: &meeting.QueryFilter{SectionID: secA.ID}, wantIDs: []string{created[1].ID, created[0].ID}},
			{name: "exclude section", filter: &meeting.QueryFilter{ExcludeSectionID: secA.ID}, wantIDs: []string{created[2].ID}},
			{name: "location ignores case", filter: &meeting.QueryFilter{Location: "room b"}, wantIDs: []string{created[2].ID}},
			{name: "pool by instructor", filter: &meeting.QueryFilter{PoolInstructorID: "alan", PoolLocation: "Room C"}, wantIDs: []string{created[2].ID}},
			{name: "date range", filter: &meeting.QueryFilter{DateFrom: civil.Date{Year: 2030, Month: 1, Day: 8}}, wantIDs: []string{created[0].ID}},
			{name: "archived", filter: &meeting.QueryFilter{IsArchived: &archived}, wantIDs: []string{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.QueryMeetings(ctx, tt.filter, nil)
				require.NoError(t, err)
				ids := make([]string, 0, len(got))
				for _, m := range got {
					ids = append(ids, m.ID)
				}
				assert.Equal(t, tt.wantIDs, ids)
			})
		}
	})

	t.Run("max number", func(t *testing.T) {
		last, err := repo.MaxMeetingNumber(ctx, secA.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, last)
		last, err = repo.MaxMeetingNumber(ctx, "lol")
		require.NoError(t, err)
		assert.Zero(t, last)
	})

	t.Run("archive", func(t *testing.T) {
		n, err := repo.ArchiveMeetingsBefore(ctx, civil.Date{Year: 2030, Month: 1, Day: 8})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		n, err = repo.ArchiveMeetingsBefore(ctx, civil.Date{Year: 2030, Month: 1, Day: 8})
		require.NoError(t, err)
		assert.Zero(t, n)

		got, err := repo.GetMeeting(ctx, created[0].ID)
		require.NoError(t, err)
		assert.False(t, got.IsArchived)
	})

	t.Run("update keeps ownership", func(t *testing.T) {
		moved := created[0]
		moved.SectionID = secB.ID
		moved.Location = "Room C"
		got, err := repo.UpdateMeeting(ctx, moved)
		require.NoError(t, err)
		assert.Equal(t, secA.ID, got.SectionID)
		assert.Equal(t, 1, got.SectionNumber)
		assert.Equal(t, "Room C", got.Location)

		_, err = repo.UpdateMeeting(ctx, meeting.Meeting{ID: "lol"})
		assert.Equal(t, meeting.ErrNotFound, err)
	})

	t.Run("delete", func(t *testing.T) {
		n, err := repo.DeleteSectionMeetings(ctx, secA.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		n, err = repo.DeleteMeetingsByID(ctx, []string{created[2].ID, "lol"})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = repo.GetMeeting(ctx, created[2].ID)
		assert.Equal(t, meeting.ErrNotFound, err)
	})
}
