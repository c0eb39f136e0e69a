package section

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/meeting"
	"github.com/trezcool/academia/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("section not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CreateSection stores sec with the next free section number of its course.
		CreateSection(ctx context.Context, sec Section, exec ...core.DBExecutor) (Section, error)
		QuerySections(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Section, error)
		GetSection(ctx context.Context, id string, exec ...core.DBExecutor) (Section, error)
		UpdateSection(ctx context.Context, sec Section, exec ...core.DBExecutor) (Section, error)
		DeleteSectionsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, ns NewSection) (Section, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Section, error)
		GetByID(ctx context.Context, id string) (Section, error)
		Update(ctx context.Context, sec Section, us UpdateSection) (Section, error)
		Delete(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo     Repository
		meetings meeting.Repository
		courses  course.ServiceInterface
		users    user.ServiceInterface
		validate *validator.Validate
		tx       core.Transactor
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

var orderingFields = []string{"section_number", "start_date", "location", "capacity", "created_at"}

func NewService(
	repo Repository,
	meetings meeting.Repository,
	courses course.ServiceInterface,
	users user.ServiceInterface,
	validate *validator.Validate,
	tx core.Transactor,
) *Service {
	return &Service{
		repo:     repo,
		meetings: meetings,
		courses:  courses,
		users:    users,
		validate: validate,
		tx:       tx,
	}
}

func (svc *Service) checkInstructor(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := svc.users.GetInstructor(ctx, id); err != nil {
		switch errors.Cause(err) {
		case user.ErrNotFound, user.ErrNotInstructor:
			return core.NewFieldError("instructor_id", "invalid instructor")
		default:
			return errors.Wrap(err, "getting instructor")
		}
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewSection) (Section, error) {
	ns.Clean()
	if err := svc.validate.Struct(ns); err != nil {
		return Section{}, err
	}

	crs, err := svc.courses.GetByID(ctx, ns.CourseID)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return Section{}, core.NewFieldError("course_id", "invalid course")
		}
		return Section{}, errors.Wrap(err, "getting course")
	}
	if !crs.IsActive {
		return Section{}, core.NewFieldError("course_id", course.ErrInactive.Error())
	}
	if err = svc.checkInstructor(ctx, ns.InstructorID); err != nil {
		return Section{}, err
	}

	now := NowFunc().UTC()
	return svc.repo.CreateSection(ctx, Section{
		CourseID:     crs.ID,
		InstructorID: ns.InstructorID,
		StartDate:    *ns.StartDate,
		Location:     ns.Location,
		Capacity:     ns.Capacity,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Section, error) {
	return svc.repo.QuerySections(ctx, filter, core.FilterOrderings(ordering, orderingFields...))
}

func (svc *Service) GetByID(ctx context.Context, id string) (Section, error) {
	return svc.repo.GetSection(ctx, id)
}

// Update changes the section only. Meetings already scheduled keep their instructor and location.
func (svc *Service) Update(ctx context.Context, sec Section, us UpdateSection) (Section, error) {
	if err := svc.validate.Struct(us); err != nil {
		return Section{}, err
	}

	if us.InstructorID != nil {
		instructorID := core.CleanString(*us.InstructorID)
		if err := svc.checkInstructor(ctx, instructorID); err != nil {
			return Section{}, err
		}
		sec.InstructorID = instructorID
	}
	if us.StartDate != nil {
		sec.StartDate = *us.StartDate
	}
	if us.Location != nil {
		sec.Location = core.CleanString(*us.Location)
	}
	if us.Capacity != nil {
		sec.Capacity = *us.Capacity
	}
	sec.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateSection(ctx, sec)
}

// Delete removes the sections along with all their meetings.
func (svc *Service) Delete(ctx context.Context, ids ...string) (int, error) {
	var deleted int
	err := svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		for _, id := range ids {
			if _, err := svc.meetings.DeleteSectionMeetings(ctx, id, exec); err != nil {
				return errors.Wrap(err, "deleting section meetings")
			}
		}
		var err error
		deleted, err = svc.repo.DeleteSectionsByID(ctx, ids, exec)
		return errors.Wrap(err, "deleting sections")
	})
	return deleted, err
}
