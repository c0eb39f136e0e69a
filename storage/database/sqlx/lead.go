package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/lead"
)

const leadColumns = "id, name, email, phone, course_id, status, source, notes, created_at, updated_at"

type leadRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Email     string      `db:"email"`
	Phone     null.String `db:"phone"`
	CourseID  null.String `db:"course_id"`
	Status    string      `db:"status"`
	Source    null.String `db:"source"`
	Notes     null.String `db:"notes"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

type leadRepository struct {
	baseRepository
}

var _ lead.Repository = (*leadRepository)(nil) // interface compliance check

func NewLeadRepository(exec core.DBExecutor) lead.Repository {
	return &leadRepository{baseRepository{exec: exec}}
}

func (repo leadRepository) toRow(ld lead.Lead) leadRow {
	return leadRow{
		ID:        ld.ID,
		Name:      ld.Name,
		Email:     ld.Email,
		Phone:     null.NewString(ld.Phone, ld.Phone != ""),
		CourseID:  null.NewString(ld.CourseID, ld.CourseID != ""),
		Status:    ld.Status,
		Source:    null.NewString(ld.Source, ld.Source != ""),
		Notes:     null.NewString(ld.Notes, ld.Notes != ""),
		CreatedAt: ld.CreatedAt.UTC(),
		UpdatedAt: ld.UpdatedAt.UTC(),
	}
}

func (repo leadRepository) toLead(row leadRow) lead.Lead {
	return lead.Lead{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Phone:     row.Phone.String,
		CourseID:  row.CourseID.String,
		Status:    row.Status,
		Source:    row.Source.String,
		Notes:     row.Notes.String,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

func (repo leadRepository) CreateLead(ctx context.Context, ld lead.Lead, exec ...core.DBExecutor) (lead.Lead, error) {
	ld.ID = uuid.New().String()
	q := `INSERT INTO leads (` + leadColumns + `)
		VALUES (:id, :name, :email, :phone, :course_id, :status, :source, :notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, repo.toRow(ld)); err != nil {
		return lead.Lead{}, errors.Wrap(err, "inserting lead")
	}
	return ld, nil
}

func (repo leadRepository) QueryLeads(ctx context.Context, filter *lead.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]lead.Lead, error) {
	var w where
	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			w.add("(name ILIKE ? OR email ILIKE ? OR phone ILIKE ?)", val, val, val)
		}
		if len(filter.Statuses) > 0 {
			w.add("status = ANY (?)", pq.Array(filter.Statuses))
		}
		if filter.CourseID != "" {
			if !validID(filter.CourseID) {
				return []lead.Lead{}, nil
			}
			w.add("course_id = ?", filter.CourseID)
		}
	}

	exe := repo.getExec(exec)
	q := "SELECT " + leadColumns + " FROM leads" + w.String() + orderBy(ordering, "", "created_at ASC", "id ASC")
	var rows []leadRow
	if err := sqlx.SelectContext(ctx, exe, &rows, exe.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying leads")
	}

	leads := make([]lead.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, repo.toLead(row))
	}
	return leads, nil
}

func (repo leadRepository) GetLead(ctx context.Context, id string, exec ...core.DBExecutor) (lead.Lead, error) {
	if !validID(id) {
		return lead.Lead{}, lead.ErrNotFound
	}
	var row leadRow
	q := "SELECT " + leadColumns + " FROM leads WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, id); err != nil {
		return lead.Lead{}, trapNoRowsErr(err, lead.ErrNotFound, "finding lead by ID")
	}
	return repo.toLead(row), nil
}

func (repo leadRepository) FindLeadByEmail(ctx context.Context, email, courseID string, exec ...core.DBExecutor) (lead.Lead, error) {
	var w where
	w.add("lower(email) = lower(?)", email)
	if courseID == "" {
		w.add("course_id IS NULL")
	} else if validID(courseID) {
		w.add("course_id = ?", courseID)
	} else {
		return lead.Lead{}, lead.ErrNotFound
	}

	exe := repo.getExec(exec)
	var row leadRow
	q := exe.Rebind("SELECT " + leadColumns + " FROM leads" + w.String() + " LIMIT 1")
	if err := sqlx.GetContext(ctx, exe, &row, q, w.args...); err != nil {
		return lead.Lead{}, trapNoRowsErr(err, lead.ErrNotFound, "finding lead by email")
	}
	return repo.toLead(row), nil
}

func (repo leadRepository) UpdateLead(ctx context.Context, ld lead.Lead, exec ...core.DBExecutor) (lead.Lead, error) {
	q := `UPDATE leads SET name = :name, email = :email, phone = :phone, course_id = :course_id,
		status = :status, source = :source, notes = :notes, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, repo.toRow(ld))
	if err != nil {
		return lead.Lead{}, errors.Wrap(err, "updating lead")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return lead.Lead{}, lead.ErrNotFound
	}
	return ld, nil
}

func (repo leadRepository) DeleteLeadsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	return deleteByIDs(ctx, repo.getExec(exec), "leads", ids, "deleting leads")
}
