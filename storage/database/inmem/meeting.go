package inmemdb

import (
	"context"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/meeting"
)

type meetingRepository struct {
	db *DB
}

var _ meeting.Repository = (*meetingRepository)(nil) // interface compliance check

func NewMeetingRepository(db *DB) meeting.Repository {
	return &meetingRepository{db: db}
}

// withSection fills in the read-only section number. Callers hold the section lock.
func (repo *meetingRepository) withSection(mtg meeting.Meeting) meeting.Meeting {
	if sec, ok := repo.db.section.table[mtg.SectionID]; ok {
		mtg.SectionNumber = sec.SectionNumber
	}
	return mtg
}

func matchMeeting(mtg meeting.Meeting, filter *meeting.QueryFilter) bool {
	if filter.SectionID != "" && mtg.SectionID != filter.SectionID {
		return false
	}
	if filter.ExcludeSectionID != "" && mtg.SectionID == filter.ExcludeSectionID {
		return false
	}
	if filter.CourseID != "" && mtg.CourseID != filter.CourseID {
		return false
	}
	if filter.InstructorID != "" && mtg.InstructorID != filter.InstructorID {
		return false
	}
	if filter.Location != "" && !strings.EqualFold(mtg.Location, filter.Location) {
		return false
	}
	if filter.PoolInstructorID != "" || filter.PoolLocation != "" {
		sameInstructor := filter.PoolInstructorID != "" && mtg.InstructorID == filter.PoolInstructorID
		sameLocation := filter.PoolLocation != "" && strings.EqualFold(mtg.Location, filter.PoolLocation)
		if !sameInstructor && !sameLocation {
			return false
		}
	}
	if filter.DateFrom.IsValid() && mtg.Date.Before(filter.DateFrom) {
		return false
	}
	if filter.DateTo.IsValid() && mtg.Date.After(filter.DateTo) {
		return false
	}
	if filter.IsArchived != nil && mtg.IsArchived != *filter.IsArchived {
		return false
	}
	return true
}

func (repo *meetingRepository) QueryMeetings(_ context.Context, filter *meeting.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]meeting.Meeting, error) {
	repo.db.section.RLock()
	repo.db.meeting.RLock()
	defer func() {
		repo.db.meeting.RUnlock()
		repo.db.section.RUnlock()
	}()

	meetings := make([]meeting.Meeting, 0)
	for _, mtg := range repo.db.meeting.table {
		if filter != nil && !matchMeeting(*mtg, filter) {
			continue
		}
		meetings = append(meetings, repo.withSection(*mtg))
	}

	ordering = withDefaults(ordering,
		core.DBOrdering{Field: "date", Ascending: true},
		core.DBOrdering{Field: "start_time", Ascending: true},
		core.DBOrdering{Field: "meeting_number", Ascending: true},
		core.DBOrdering{Field: "id", Ascending: true},
	)
	sort.SliceStable(meetings, func(i, j int) bool {
		a, b := meetings[i], meetings[j]
		return orderedLess(ordering, func(field string) int {
			switch field {
			case "date":
				return compareDates(a.Date, b.Date)
			case "start_time":
				return compareInts(int(a.StartTime), int(b.StartTime))
			case "meeting_number":
				return compareInts(a.MeetingNumber, b.MeetingNumber)
			case "location":
				return compareFold(a.Location, b.Location)
			case "created_at":
				return compareTimes(a.CreatedAt, b.CreatedAt)
			case "id":
				return strings.Compare(a.ID, b.ID)
			}
			return 0
		})
	})
	return meetings, nil
}

func (repo *meetingRepository) GetMeeting(_ context.Context, id string, _ ...core.DBExecutor) (meeting.Meeting, error) {
	repo.db.section.RLock()
	repo.db.meeting.RLock()
	defer func() {
		repo.db.meeting.RUnlock()
		repo.db.section.RUnlock()
	}()

	if mtg, ok := repo.db.meeting.table[id]; ok {
		return repo.withSection(*mtg), nil
	}
	return meeting.Meeting{}, meeting.ErrNotFound
}

// CreateMeetings stores every meeting, or none of them when one references an unknown section.
func (repo *meetingRepository) CreateMeetings(_ context.Context, meetings []meeting.Meeting, _ ...core.DBExecutor) ([]meeting.Meeting, error) {
	repo.db.section.RLock()
	repo.db.meeting.Lock()
	defer func() {
		repo.db.meeting.Unlock()
		repo.db.section.RUnlock()
	}()

	for _, mtg := range meetings {
		if _, ok := repo.db.section.table[mtg.SectionID]; !ok {
			return nil, errors.Errorf("inserting meeting: unknown section %q", mtg.SectionID)
		}
	}

	created := make([]meeting.Meeting, 0, len(meetings))
	for _, mtg := range meetings {
		mtg.ID = uuid.New().String()
		stored := mtg
		repo.db.meeting.table[mtg.ID] = &stored
		created = append(created, repo.withSection(mtg))
	}
	return created, nil
}

func (repo *meetingRepository) UpdateMeeting(_ context.Context, mtg meeting.Meeting, _ ...core.DBExecutor) (meeting.Meeting, error) {
	repo.db.section.RLock()
	repo.db.meeting.Lock()
	defer func() {
		repo.db.meeting.Unlock()
		repo.db.section.RUnlock()
	}()

	orig, ok := repo.db.meeting.table[mtg.ID]
	if !ok {
		return meeting.Meeting{}, meeting.ErrNotFound
	}
	mtg.SectionID = orig.SectionID
	mtg.CourseID = orig.CourseID
	mtg.CreatedAt = orig.CreatedAt
	mtg.SectionNumber = 0
	repo.db.meeting.table[mtg.ID] = &mtg
	return repo.withSection(mtg), nil
}

func (repo *meetingRepository) DeleteMeetingsByID(_ context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	repo.db.meeting.Lock()
	defer repo.db.meeting.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.meeting.table[id]; ok {
			delete(repo.db.meeting.table, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *meetingRepository) DeleteSectionMeetings(_ context.Context, sectionID string, _ ...core.DBExecutor) (int, error) {
	repo.db.meeting.Lock()
	defer repo.db.meeting.Unlock()

	var cnt int
	for id, mtg := range repo.db.meeting.table {
		if mtg.SectionID == sectionID {
			delete(repo.db.meeting.table, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *meetingRepository) ArchiveMeetingsBefore(_ context.Context, date civil.Date, _ ...core.DBExecutor) (int, error) {
	repo.db.meeting.Lock()
	defer repo.db.meeting.Unlock()

	var cnt int
	for _, mtg := range repo.db.meeting.table {
		if !mtg.IsArchived && mtg.Date.Before(date) {
			mtg.IsArchived = true
			cnt++
		}
	}
	return cnt, nil
}

func (repo *meetingRepository) MaxMeetingNumber(_ context.Context, sectionID string, _ ...core.DBExecutor) (int, error) {
	repo.db.meeting.RLock()
	defer repo.db.meeting.RUnlock()

	var last int
	for _, mtg := range repo.db.meeting.table {
		if mtg.SectionID == sectionID && mtg.MeetingNumber > last {
			last = mtg.MeetingNumber
		}
	}
	return last, nil
}
