package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/section"
)

type sectionRepository struct {
	db *DB
}

var _ section.Repository = (*sectionRepository)(nil) // interface compliance check

func NewSectionRepository(db *DB) section.Repository {
	return &sectionRepository{db: db}
}

func (repo *sectionRepository) CreateSection(_ context.Context, sec section.Section, _ ...core.DBExecutor) (section.Section, error) {
	repo.db.section.Lock()
	defer repo.db.section.Unlock()

	var last int
	for _, other := range repo.db.section.table {
		if other.CourseID == sec.CourseID && other.SectionNumber > last {
			last = other.SectionNumber
		}
	}
	sec.ID = uuid.New().String()
	sec.SectionNumber = last + 1
	repo.db.section.table[sec.ID] = &sec
	return sec, nil
}

func (repo *sectionRepository) QuerySections(_ context.Context, filter *section.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]section.Section, error) {
	repo.db.section.RLock()
	defer repo.db.section.RUnlock()

	sections := make([]section.Section, 0, len(repo.db.section.table))
	for _, sec := range repo.db.section.table {
		if filter != nil {
			if filter.CourseID != "" && sec.CourseID != filter.CourseID {
				continue
			}
			if filter.InstructorID != "" && sec.InstructorID != filter.InstructorID {
				continue
			}
			if filter.Location != "" && !strings.EqualFold(sec.Location, filter.Location) {
				continue
			}
		}
		sections = append(sections, *sec)
	}

	ordering = withDefaults(ordering,
		core.DBOrdering{Field: "course_id", Ascending: true},
		core.DBOrdering{Field: "section_number", Ascending: true},
	)
	sort.SliceStable(sections, func(i, j int) bool {
		a, b := sections[i], sections[j]
		return orderedLess(ordering, func(field string) int {
			switch field {
			case "course_id":
				return strings.Compare(a.CourseID, b.CourseID)
			case "section_number":
				return compareInts(a.SectionNumber, b.SectionNumber)
			case "start_date":
				return compareDates(a.StartDate, b.StartDate)
			case "location":
				return compareFold(a.Location, b.Location)
			case "capacity":
				return compareInts(a.Capacity, b.Capacity)
			case "created_at":
				return compareTimes(a.CreatedAt, b.CreatedAt)
			}
			return 0
		})
	})
	return sections, nil
}

func (repo *sectionRepository) GetSection(_ context.Context, id string, _ ...core.DBExecutor) (section.Section, error) {
	repo.db.section.RLock()
	defer repo.db.section.RUnlock()

	if sec, ok := repo.db.section.table[id]; ok {
		return *sec, nil
	}
	return section.Section{}, section.ErrNotFound
}

func (repo *sectionRepository) UpdateSection(_ context.Context, sec section.Section, _ ...core.DBExecutor) (section.Section, error) {
	repo.db.section.Lock()
	defer repo.db.section.Unlock()

	orig, ok := repo.db.section.table[sec.ID]
	if !ok {
		return section.Section{}, section.ErrNotFound
	}
	// course and number are fixed once created
	sec.CourseID = orig.CourseID
	sec.SectionNumber = orig.SectionNumber
	repo.db.section.table[sec.ID] = &sec
	return sec, nil
}

func (repo *sectionRepository) DeleteSectionsByID(_ context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	repo.db.section.Lock()
	repo.db.meeting.Lock()
	defer func() {
		repo.db.meeting.Unlock()
		repo.db.section.Unlock()
	}()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.section.table[id]; ok {
			delete(repo.db.section.table, id)
			cnt++
		}
	}
	for id, mtg := range repo.db.meeting.table {
		if core.StringInSlice(mtg.SectionID, ids) {
			delete(repo.db.meeting.table, id)
		}
	}
	return cnt, nil
}
