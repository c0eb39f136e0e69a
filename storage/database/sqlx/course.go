package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
)

const courseColumns = "id, code, name, description, total_hours, is_active, created_at, updated_at"

type courseRow struct {
	ID          string      `db:"id"`
	Code        string      `db:"code"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
	TotalHours  int         `db:"total_hours"`
	IsActive    bool        `db:"is_active"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

type courseRepository struct {
	baseRepository
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) course.Repository {
	return &courseRepository{baseRepository{exec: exec}}
}

func (repo courseRepository) toRow(crs course.Course) courseRow {
	return courseRow{
		ID:          crs.ID,
		Code:        crs.Code,
		Name:        crs.Name,
		Description: null.NewString(crs.Description, crs.Description != ""),
		TotalHours:  crs.TotalHours,
		IsActive:    crs.IsActive,
		CreatedAt:   crs.CreatedAt.UTC(),
		UpdatedAt:   crs.UpdatedAt.UTC(),
	}
}

func (repo courseRepository) toCourse(row courseRow) course.Course {
	return course.Course{
		ID:          row.ID,
		Code:        row.Code,
		Name:        row.Name,
		Description: row.Description.String,
		TotalHours:  row.TotalHours,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func (repo courseRepository) CheckCodeUniqueness(ctx context.Context, code string, excluded []course.Course, exec ...core.DBExecutor) error {
	var w where
	w.add("code = ?", code)
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, crs := range excluded {
			ids = append(ids, crs.ID)
		}
		cond, args, err := sqlx.In("id NOT IN (?)", validIDs(append(ids, uuid.Nil.String())))
		if err != nil {
			return errors.Wrap(err, "checking course code uniqueness")
		}
		w.add(cond, args...)
	}

	exe := repo.getExec(exec)
	var exists bool
	q := exe.Rebind("SELECT EXISTS (SELECT 1 FROM courses" + w.String() + ")")
	if err := sqlx.GetContext(ctx, exe, &exists, q, w.args...); err != nil {
		return errors.Wrap(err, "checking course code uniqueness")
	}
	if exists {
		return course.ErrCodeExists
	}
	return nil
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	crs.ID = uuid.New().String()
	q := `INSERT INTO courses (` + courseColumns + `)
		VALUES (:id, :code, :name, :description, :total_hours, :is_active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, repo.toRow(crs)); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]course.Course, error) {
	var w where
	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			w.add("(code ILIKE ? OR name ILIKE ?)", val, val)
		}
		if filter.IsActive != nil {
			w.add("is_active = ?", *filter.IsActive)
		}
	}

	exe := repo.getExec(exec)
	q := "SELECT " + courseColumns + " FROM courses" + w.String() + orderBy(ordering, "", "code ASC")
	var rows []courseRow
	if err := sqlx.SelectContext(ctx, exe, &rows, exe.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, repo.toCourse(row))
	}
	return courses, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, id string, exec ...core.DBExecutor) (course.Course, error) {
	if !validID(id) {
		return course.Course{}, course.ErrNotFound
	}
	var row courseRow
	q := "SELECT " + courseColumns + " FROM courses WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, id); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "finding course by ID")
	}
	return repo.toCourse(row), nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	q := `UPDATE courses SET code = :code, name = :name, description = :description,
		total_hours = :total_hours, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, repo.toRow(crs))
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

// DeleteCoursesByID relies on the foreign keys to drop sections and meetings and to unlink leads.
func (repo courseRepository) DeleteCoursesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	return deleteByIDs(ctx, repo.getExec(exec), "courses", ids, "deleting courses")
}
