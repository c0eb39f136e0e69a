package section_test

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/meeting"
	"github.com/trezcool/academia/core/section"
	"github.com/trezcool/academia/tests"
)

func TestService_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	crs := testutil.CreateCourse(t, env.CourseSvc, "go_101", "Go", 10)
	grace := testutil.CreateInstructor(t, env.UserSvc, "Grace", "grace")
	desk := testutil.CreateUser(t, env.UserSvc, "Desk", "desk")

	start := civil.Date{Year: 2030, Month: 1, Day: 6}
	tests := []struct {
		name      string
		ns        section.NewSection
		wantField string
	}{
		{name: "missing course", ns: section.NewSection{StartDate: &start}, wantField: "course_id"},
		{name: "unknown course", ns: section.NewSection{CourseID: "lol", StartDate: &start}, wantField: "course_id"},
		{name: "not an instructor", ns: section.NewSection{CourseID: crs.ID, InstructorID: desk.ID, StartDate: &start}, wantField: "instructor_id"},
		{name: "unknown instructor", ns: section.NewSection{CourseID: crs.ID, InstructorID: "lol", StartDate: &start}, wantField: "instructor_id"},
		{name: "valid", ns: section.NewSection{CourseID: " " + crs.ID + " ", InstructorID: grace.ID, StartDate: &start, Location: " Room A "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec, err := env.SectionSvc.Create(ctx, tt.ns)
			if tt.wantField != "" {
				require.Error(t, err)
				var vErr *core.ValidationError
				if errors.As(err, &vErr) {
					assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
				} else {
					assert.Contains(t, err.Error(), tt.wantField)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, crs.ID, sec.CourseID)
			assert.Equal(t, "Room A", sec.Location)
			assert.Equal(t, 1, sec.SectionNumber)
		})
	}

	t.Run("numbers are per course", func(t *testing.T) {
		other := testutil.CreateCourse(t, env.CourseSvc, "py_101", "Python", 10)
		assert.Equal(t, 2, testutil.CreateSection(t, env.SectionSvc, crs.ID, "", start, "").SectionNumber)
		assert.Equal(t, 1, testutil.CreateSection(t, env.SectionSvc, other.ID, "", start, "").SectionNumber)
	})

	t.Run("inactive course", func(t *testing.T) {
		inactive := false
		crs, err := env.CourseSvc.Update(ctx, crs, course.UpdateCourse{Code: crs.Code, Name: crs.Name, IsActive: &inactive})
		require.NoError(t, err)
		_, err = env.SectionSvc.Create(ctx, section.NewSection{CourseID: crs.ID, StartDate: &start})
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, course.ErrInactive.Error(), vErr.Fields[0].Error)
	})
}

func TestService_UpdateAndDelete(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	crs := testutil.CreateCourse(t, env.CourseSvc, "go_101", "Go", 10)
	grace := testutil.CreateInstructor(t, env.UserSvc, "Grace", "grace")
	sec := testutil.CreateSection(t, env.SectionSvc, crs.ID, grace.ID, civil.Date{Year: 2030, Month: 1, Day: 6}, "Room A")
	testutil.CreateMeetings(t, env.Meetings, testutil.SectionMeeting(sec, 1, civil.Date{Year: 2030, Month: 1, Day: 7}, "09:00", "11:00"))

	unassign, room, capacity := "", "Room B", 30
	updated, err := env.SectionSvc.Update(ctx, sec, section.UpdateSection{InstructorID: &unassign, Location: &room, Capacity: &capacity})
	require.NoError(t, err)
	assert.Empty(t, updated.InstructorID)
	assert.Equal(t, "Room B", updated.Location)
	assert.Equal(t, 30, updated.Capacity)

	mtgs, err := env.Meetings.QueryMeetings(ctx, &meeting.QueryFilter{SectionID: sec.ID}, nil)
	require.NoError(t, err)
	require.Len(t, mtgs, 1)
	assert.Equal(t, grace.ID, mtgs[0].InstructorID, "scheduled meetings keep their instructor")
	assert.Equal(t, "Room A", mtgs[0].Location)

	negative := -1
	_, err = env.SectionSvc.Update(ctx, sec, section.UpdateSection{Capacity: &negative})
	assert.Error(t, err)

	n, err := env.SectionSvc.Delete(ctx, sec.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = env.SectionSvc.GetByID(ctx, sec.ID)
	assert.Equal(t, section.ErrNotFound, errors.Cause(err))
	mtgs, err = env.Meetings.QueryMeetings(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, mtgs)
}
