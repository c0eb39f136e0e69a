package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CheckCodeUniqueness(_ context.Context, code string, excluded []course.Course, _ ...core.DBExecutor) error {
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

outer:
	for _, crs := range repo.db.course.table {
		for _, excl := range excluded {
			if excl.ID == crs.ID {
				continue outer
			}
		}
		if crs.Code == code {
			return course.ErrCodeExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course, _ ...core.DBExecutor) (course.Course, error) {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()

	crs.ID = uuid.New().String()
	repo.db.course.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter *course.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]course.Course, error) {
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.course.table))
	for _, crs := range repo.db.course.table {
		if filter != nil {
			if filter.Search != "" && !(containsFold(crs.Code, filter.Search) || containsFold(crs.Name, filter.Search)) {
				continue
			}
			if filter.IsActive != nil && crs.IsActive != *filter.IsActive {
				continue
			}
		}
		courses = append(courses, *crs)
	}

	ordering = withDefaults(ordering, core.DBOrdering{Field: "code", Ascending: true})
	sort.SliceStable(courses, func(i, j int) bool {
		a, b := courses[i], courses[j]
		return orderedLess(ordering, func(field string) int {
			switch field {
			case "code":
				return strings.Compare(a.Code, b.Code)
			case "name":
				return compareFold(a.Name, b.Name)
			case "total_hours":
				return compareInts(a.TotalHours, b.TotalHours)
			case "is_active":
				return compareBools(a.IsActive, b.IsActive)
			case "created_at":
				return compareTimes(a.CreatedAt, b.CreatedAt)
			case "updated_at":
				return compareTimes(a.UpdatedAt, b.UpdatedAt)
			}
			return 0
		})
	})
	return courses, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id string, _ ...core.DBExecutor) (course.Course, error) {
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

	if crs, ok := repo.db.course.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course, _ ...core.DBExecutor) (course.Course, error) {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()

	if _, ok := repo.db.course.table[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.course.table[crs.ID] = &crs
	return crs, nil
}

// DeleteCoursesByID cascades to the sections and meetings of the courses, and unlinks their leads.
func (repo *courseRepository) DeleteCoursesByID(_ context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	repo.db.course.Lock()
	repo.db.section.Lock()
	repo.db.meeting.Lock()
	repo.db.lead.Lock()
	defer func() {
		repo.db.lead.Unlock()
		repo.db.meeting.Unlock()
		repo.db.section.Unlock()
		repo.db.course.Unlock()
	}()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.course.table[id]; ok {
			delete(repo.db.course.table, id)
			cnt++
		}
	}
	for id, sec := range repo.db.section.table {
		if core.StringInSlice(sec.CourseID, ids) {
			delete(repo.db.section.table, id)
		}
	}
	for id, mtg := range repo.db.meeting.table {
		if core.StringInSlice(mtg.CourseID, ids) {
			delete(repo.db.meeting.table, id)
		}
	}
	for _, ld := range repo.db.lead.table {
		if core.StringInSlice(ld.CourseID, ids) {
			ld.CourseID = ""
		}
	}
	return cnt, nil
}
