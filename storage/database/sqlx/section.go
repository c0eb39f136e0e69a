package sqlxrepos

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/section"
)

const sectionColumns = "id, course_id, section_number, instructor_id, start_date, location, capacity, created_at, updated_at"

type sectionRow struct {
	ID            string      `db:"id"`
	CourseID      string      `db:"course_id"`
	SectionNumber int         `db:"section_number"`
	InstructorID  null.String `db:"instructor_id"`
	StartDate     time.Time   `db:"start_date"`
	Location      null.String `db:"location"`
	Capacity      int         `db:"capacity"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

type sectionRepository struct {
	baseRepository
}

var _ section.Repository = (*sectionRepository)(nil) // interface compliance check

func NewSectionRepository(exec core.DBExecutor) section.Repository {
	return &sectionRepository{baseRepository{exec: exec}}
}

func (repo sectionRepository) toRow(sec section.Section) sectionRow {
	return sectionRow{
		ID:            sec.ID,
		CourseID:      sec.CourseID,
		SectionNumber: sec.SectionNumber,
		InstructorID:  null.NewString(sec.InstructorID, sec.InstructorID != ""),
		StartDate:     sec.StartDate.In(time.UTC),
		Location:      null.NewString(sec.Location, sec.Location != ""),
		Capacity:      sec.Capacity,
		CreatedAt:     sec.CreatedAt.UTC(),
		UpdatedAt:     sec.UpdatedAt.UTC(),
	}
}

func (repo sectionRepository) toSection(row sectionRow) section.Section {
	return section.Section{
		ID:            row.ID,
		CourseID:      row.CourseID,
		SectionNumber: row.SectionNumber,
		InstructorID:  row.InstructorID.String,
		StartDate:     civil.DateOf(row.StartDate),
		Location:      row.Location.String,
		Capacity:      row.Capacity,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

// CreateSection numbers the section within the same statement, the (course_id, section_number)
// unique key rejecting concurrent duplicates.
func (repo sectionRepository) CreateSection(ctx context.Context, sec section.Section, exec ...core.DBExecutor) (section.Section, error) {
	sec.ID = uuid.New().String()
	row := repo.toRow(sec)

	q := `INSERT INTO sections (` + sectionColumns + `)
		SELECT $1, $2, COALESCE(MAX(section_number), 0) + 1, $3, $4, $5, $6, $7, $8
		FROM sections WHERE course_id = $2
		RETURNING section_number`
	err := sqlx.GetContext(ctx, repo.getExec(exec), &sec.SectionNumber, q,
		row.ID, row.CourseID, row.InstructorID, row.StartDate, row.Location, row.Capacity, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return section.Section{}, errors.Wrap(err, "inserting section")
	}
	return sec, nil
}

func (repo sectionRepository) QuerySections(ctx context.Context, filter *section.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]section.Section, error) {
	var w where
	if filter != nil {
		if filter.CourseID != "" {
			if !validID(filter.CourseID) {
				return []section.Section{}, nil
			}
			w.add("course_id = ?", filter.CourseID)
		}
		if filter.InstructorID != "" {
			if !validID(filter.InstructorID) {
				return []section.Section{}, nil
			}
			w.add("instructor_id = ?", filter.InstructorID)
		}
		if filter.Location != "" {
			w.add("LOWER(location) = LOWER(?)", filter.Location)
		}
	}

	exe := repo.getExec(exec)
	q := "SELECT " + sectionColumns + " FROM sections" + w.String() + orderBy(ordering, "", "course_id ASC", "section_number ASC")
	var rows []sectionRow
	if err := sqlx.SelectContext(ctx, exe, &rows, exe.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying sections")
	}

	sections := make([]section.Section, 0, len(rows))
	for _, row := range rows {
		sections = append(sections, repo.toSection(row))
	}
	return sections, nil
}

func (repo sectionRepository) GetSection(ctx context.Context, id string, exec ...core.DBExecutor) (section.Section, error) {
	if !validID(id) {
		return section.Section{}, section.ErrNotFound
	}
	var row sectionRow
	q := "SELECT " + sectionColumns + " FROM sections WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, id); err != nil {
		return section.Section{}, trapNoRowsErr(err, section.ErrNotFound, "finding section by ID")
	}
	return repo.toSection(row), nil
}

// UpdateSection never changes the course or the number of a section.
func (repo sectionRepository) UpdateSection(ctx context.Context, sec section.Section, exec ...core.DBExecutor) (section.Section, error) {
	q := `UPDATE sections SET instructor_id = :instructor_id, start_date = :start_date, location = :location,
		capacity = :capacity, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, repo.toRow(sec))
	if err != nil {
		return section.Section{}, errors.Wrap(err, "updating section")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return section.Section{}, section.ErrNotFound
	}
	return sec, nil
}

func (repo sectionRepository) DeleteSectionsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	return deleteByIDs(ctx, repo.getExec(exec), "sections", ids, "deleting sections")
}
