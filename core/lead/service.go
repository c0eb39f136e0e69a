package lead

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
)

var (
	// errors
	ErrNotFound  = errors.New("lead not found")
	ErrDuplicate = errors.New("this email is already registered for this course")

	NowFunc = time.Now // mockable

	// SimilarityThreshold is the minimum name similarity ratio for two leads to be considered the same person.
	SimilarityThreshold = .8
)

type (
	Repository interface {
		CreateLead(ctx context.Context, ld Lead, exec ...core.DBExecutor) (Lead, error)
		// QueryLeads matches QueryFilter.Search case-insensitively against Lead.Name, Lead.Email and Lead.Phone.
		QueryLeads(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Lead, error)
		GetLead(ctx context.Context, id string, exec ...core.DBExecutor) (Lead, error)
		// FindLeadByEmail returns ErrNotFound when no lead with this email is interested in courseID.
		FindLeadByEmail(ctx context.Context, email, courseID string, exec ...core.DBExecutor) (Lead, error)
		UpdateLead(ctx context.Context, ld Lead, exec ...core.DBExecutor) (Lead, error)
		DeleteLeadsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, nl NewLead) (Lead, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Lead, error)
		GetByID(ctx context.Context, id string) (Lead, error)
		Update(ctx context.Context, ld Lead, ul UpdateLead) (Lead, error)
		Delete(ctx context.Context, ids ...string) (int, error)
		Similar(ctx context.Context, ld Lead) ([]Lead, error)
	}

	Service struct {
		repo     Repository
		courses  course.ServiceInterface
		validate *validator.Validate
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

var orderingFields = []string{"name", "email", "status", "created_at", "updated_at"}

func NewService(repo Repository, courses course.ServiceInterface, validate *validator.Validate) *Service {
	return &Service{repo: repo, courses: courses, validate: validate}
}

func (svc *Service) checkCourse(ctx context.Context, courseID string) error {
	if courseID == "" {
		return nil
	}
	if _, err := svc.courses.GetByID(ctx, courseID); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return core.NewFieldError("course_id", "invalid course")
		}
		return errors.Wrap(err, "getting course")
	}
	return nil
}

func (svc *Service) checkDuplicate(ctx context.Context, email, courseID, excludedID string) error {
	dup, err := svc.repo.FindLeadByEmail(ctx, email, courseID)
	switch {
	case errors.Cause(err) == ErrNotFound:
		return nil
	case err != nil:
		return errors.Wrap(err, "looking up lead by email")
	case dup.ID == excludedID:
		return nil
	}
	return core.NewValidationError(ErrDuplicate, core.FieldError{Field: "email", Error: ErrDuplicate.Error()})
}

func (svc *Service) Create(ctx context.Context, nl NewLead) (Lead, error) {
	nl.Clean()
	if err := svc.validate.Struct(nl); err != nil {
		return Lead{}, err
	}
	if err := svc.checkCourse(ctx, nl.CourseID); err != nil {
		return Lead{}, err
	}
	if err := svc.checkDuplicate(ctx, nl.Email, nl.CourseID, ""); err != nil {
		return Lead{}, err
	}

	status := nl.Status
	if status == "" {
		status = StatusNew
	}
	now := NowFunc().UTC()
	return svc.repo.CreateLead(ctx, Lead{
		Name:      nl.Name,
		Email:     nl.Email,
		Phone:     nl.Phone,
		CourseID:  nl.CourseID,
		Status:    status,
		Source:    nl.Source,
		Notes:     nl.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Lead, error) {
	return svc.repo.QueryLeads(ctx, filter, core.FilterOrderings(ordering, orderingFields...))
}

func (svc *Service) GetByID(ctx context.Context, id string) (Lead, error) {
	return svc.repo.GetLead(ctx, id)
}

func (svc *Service) Update(ctx context.Context, ld Lead, ul UpdateLead) (Lead, error) {
	if err := svc.validate.Struct(ul); err != nil {
		return Lead{}, err
	}

	if ul.Name != nil {
		ld.Name = core.CleanString(*ul.Name)
	}
	if ul.Email != nil {
		ld.Email = core.CleanString(*ul.Email, true /* lower */)
	}
	if ul.Phone != nil {
		ld.Phone = core.CleanString(*ul.Phone)
	}
	if ul.CourseID != nil {
		ld.CourseID = core.CleanString(*ul.CourseID)
		if err := svc.checkCourse(ctx, ld.CourseID); err != nil {
			return Lead{}, err
		}
	}
	if ul.Status != nil {
		ld.Status = core.CleanString(*ul.Status, true /* lower */)
	}
	if ul.Source != nil {
		ld.Source = core.CleanString(*ul.Source)
	}
	if ul.Notes != nil {
		ld.Notes = core.CleanString(*ul.Notes)
	}
	if ul.Email != nil || ul.CourseID != nil {
		if err := svc.checkDuplicate(ctx, ld.Email, ld.CourseID, ld.ID); err != nil {
			return Lead{}, err
		}
	}

	ld.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateLead(ctx, ld)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) (int, error) {
	return svc.repo.DeleteLeadsByID(ctx, ids)
}

// Similar returns the other leads whose name closely matches ld's, or who share its email or phone,
// most similar first.
func (svc *Service) Similar(ctx context.Context, ld Lead) ([]Lead, error) {
	all, err := svc.repo.QueryLeads(ctx, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying leads")
	}

	type scored struct {
		lead  Lead
		ratio float64
	}
	var matches []scored
	for _, other := range all {
		if other.ID == ld.ID {
			continue
		}
		ratio := NameSimilarity(ld.Name, other.Name)
		sameContact := strings.EqualFold(other.Email, ld.Email) || (ld.Phone != "" && other.Phone == ld.Phone)
		if ratio >= SimilarityThreshold || sameContact {
			matches = append(matches, scored{lead: other, ratio: ratio})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].ratio > matches[j].ratio })

	similar := make([]Lead, 0, len(matches))
	for _, m := range matches {
		similar = append(similar, m.lead)
	}
	return similar, nil
}

// NameSimilarity is the difflib ratio of two names, compared case-insensitively character by character.
func NameSimilarity(a, b string) float64 {
	a, b = core.CleanString(a, true), core.CleanString(b, true)
	if a == "" || b == "" {
		return 0
	}
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
