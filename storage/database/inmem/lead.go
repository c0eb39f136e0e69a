package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/lead"
)

type leadRepository struct {
	db *leadTable
}

var _ lead.Repository = (*leadRepository)(nil) // interface compliance check

func NewLeadRepository(db *DB) lead.Repository {
	return &leadRepository{db: db.lead}
}

func (repo *leadRepository) CreateLead(_ context.Context, ld lead.Lead, _ ...core.DBExecutor) (lead.Lead, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ld.ID = uuid.New().String()
	repo.db.table[ld.ID] = &ld
	return ld, nil
}

func (repo *leadRepository) QueryLeads(_ context.Context, filter *lead.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]lead.Lead, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	leads := make([]lead.Lead, 0, len(repo.db.table))
	for _, ld := range repo.db.table {
		if filter != nil {
			if filter.Search != "" &&
				!(containsFold(ld.Name, filter.Search) || containsFold(ld.Email, filter.Search) || containsFold(ld.Phone, filter.Search)) {
				continue
			}
			if len(filter.Statuses) > 0 && !core.StringInSlice(ld.Status, filter.Statuses) {
				continue
			}
			if filter.CourseID != "" && ld.CourseID != filter.CourseID {
				continue
			}
		}
		leads = append(leads, *ld)
	}

	ordering = withDefaults(ordering,
		core.DBOrdering{Field: "created_at", Ascending: true},
		core.DBOrdering{Field: "id", Ascending: true},
	)
	sort.SliceStable(leads, func(i, j int) bool {
		a, b := leads[i], leads[j]
		return orderedLess(ordering, func(field string) int {
			switch field {
			case "name":
				return compareFold(a.Name, b.Name)
			case "email":
				return strings.Compare(a.Email, b.Email)
			case "status":
				return strings.Compare(a.Status, b.Status)
			case "created_at":
				return compareTimes(a.CreatedAt, b.CreatedAt)
			case "updated_at":
				return compareTimes(a.UpdatedAt, b.UpdatedAt)
			case "id":
				return strings.Compare(a.ID, b.ID)
			}
			return 0
		})
	})
	return leads, nil
}

func (repo *leadRepository) GetLead(_ context.Context, id string, _ ...core.DBExecutor) (lead.Lead, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ld, ok := repo.db.table[id]; ok {
		return *ld, nil
	}
	return lead.Lead{}, lead.ErrNotFound
}

func (repo *leadRepository) FindLeadByEmail(_ context.Context, email, courseID string, _ ...core.DBExecutor) (lead.Lead, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, ld := range repo.db.table {
		if strings.EqualFold(ld.Email, email) && ld.CourseID == courseID {
			return *ld, nil
		}
	}
	return lead.Lead{}, lead.ErrNotFound
}

func (repo *leadRepository) UpdateLead(_ context.Context, ld lead.Lead, _ ...core.DBExecutor) (lead.Lead, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[ld.ID]; !ok {
		return lead.Lead{}, lead.ErrNotFound
	}
	repo.db.table[ld.ID] = &ld
	return ld, nil
}

func (repo *leadRepository) DeleteLeadsByID(_ context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}
