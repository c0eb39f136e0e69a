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
	"github.com/trezcool/academia/core/meeting"
)

const (
	meetingColumns = "id, section_id, course_id, instructor_id, meeting_number, date, start_time, end_time, " +
		"location, is_archived, created_at, updated_at"

	meetingSelect = `SELECT m.id, m.section_id, m.course_id, m.instructor_id, m.meeting_number, m.date,
		m.start_time, m.end_time, m.location, m.is_archived, m.created_at, m.updated_at, s.section_number
		FROM meetings m JOIN sections s ON s.id = m.section_id`
)

type meetingRow struct {
	ID            string         `db:"id"`
	SectionID     string         `db:"section_id"`
	CourseID      string         `db:"course_id"`
	InstructorID  null.String    `db:"instructor_id"`
	MeetingNumber int            `db:"meeting_number"`
	Date          time.Time      `db:"date"`
	StartTime     core.TimeOfDay `db:"start_time"`
	EndTime       core.TimeOfDay `db:"end_time"`
	Location      null.String    `db:"location"`
	IsArchived    bool           `db:"is_archived"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	SectionNumber int            `db:"section_number"` // read-only, joined from sections
}

type meetingRepository struct {
	baseRepository
}

var _ meeting.Repository = (*meetingRepository)(nil) // interface compliance check

func NewMeetingRepository(exec core.DBExecutor) meeting.Repository {
	return &meetingRepository{baseRepository{exec: exec}}
}

func (repo meetingRepository) toRow(mtg meeting.Meeting) meetingRow {
	return meetingRow{
		ID:            mtg.ID,
		SectionID:     mtg.SectionID,
		CourseID:      mtg.CourseID,
		InstructorID:  null.NewString(mtg.InstructorID, mtg.InstructorID != ""),
		MeetingNumber: mtg.MeetingNumber,
		Date:          mtg.Date.In(time.UTC),
		StartTime:     mtg.StartTime,
		EndTime:       mtg.EndTime,
		Location:      null.NewString(mtg.Location, mtg.Location != ""),
		IsArchived:    mtg.IsArchived,
		CreatedAt:     mtg.CreatedAt.UTC(),
		UpdatedAt:     mtg.UpdatedAt.UTC(),
		SectionNumber: mtg.SectionNumber,
	}
}

func (repo meetingRepository) toMeeting(row meetingRow) meeting.Meeting {
	return meeting.Meeting{
		ID:            row.ID,
		SectionID:     row.SectionID,
		SectionNumber: row.SectionNumber,
		CourseID:      row.CourseID,
		InstructorID:  row.InstructorID.String,
		MeetingNumber: row.MeetingNumber,
		Date:          civil.DateOf(row.Date),
		StartTime:     row.StartTime,
		EndTime:       row.EndTime,
		Location:      row.Location.String,
		IsArchived:    row.IsArchived,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

// meetingWhere turns filter into conditions; ok is false when the filter can match nothing.
// Locations match case-insensitively, with no wildcards.
func meetingWhere(filter *meeting.QueryFilter) (w where, ok bool) {
	if filter == nil {
		return w, true
	}
	for _, id := range []string{filter.SectionID, filter.CourseID, filter.InstructorID} {
		if id != "" && !validID(id) {
			return w, false
		}
	}
	if filter.SectionID != "" {
		w.add("m.section_id = ?", filter.SectionID)
	}
	if filter.ExcludeSectionID != "" && validID(filter.ExcludeSectionID) {
		w.add("m.section_id <> ?", filter.ExcludeSectionID)
	}
	if filter.CourseID != "" {
		w.add("m.course_id = ?", filter.CourseID)
	}
	if filter.InstructorID != "" {
		w.add("m.instructor_id = ?", filter.InstructorID)
	}
	if filter.Location != "" {
		w.add("LOWER(m.location) = LOWER(?)", filter.Location)
	}
	// meetings sharing the instructor OR the location
	switch {
	case validID(filter.PoolInstructorID) && filter.PoolLocation != "":
		w.add("(m.instructor_id = ? OR LOWER(m.location) = LOWER(?))", filter.PoolInstructorID, filter.PoolLocation)
	case validID(filter.PoolInstructorID):
		w.add("m.instructor_id = ?", filter.PoolInstructorID)
	case filter.PoolLocation != "":
		w.add("LOWER(m.location) = LOWER(?)", filter.PoolLocation)
	}
	if filter.DateFrom.IsValid() {
		w.add("m.date >= ?", filter.DateFrom.String())
	}
	if filter.DateTo.IsValid() {
		w.add("m.date <= ?", filter.DateTo.String())
	}
	if filter.IsArchived != nil {
		w.add("m.is_archived = ?", *filter.IsArchived)
	}
	return w, true
}

func (repo meetingRepository) QueryMeetings(ctx context.Context, filter *meeting.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]meeting.Meeting, error) {
	w, ok := meetingWhere(filter)
	if !ok {
		return []meeting.Meeting{}, nil
	}

	exe := repo.getExec(exec)
	q := meetingSelect + w.String() + orderBy(ordering, "m.", "date ASC", "start_time ASC", "meeting_number ASC", "id ASC")
	var rows []meetingRow
	if err := sqlx.SelectContext(ctx, exe, &rows, exe.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying meetings")
	}

	meetings := make([]meeting.Meeting, 0, len(rows))
	for _, row := range rows {
		meetings = append(meetings, repo.toMeeting(row))
	}
	return meetings, nil
}

func (repo meetingRepository) GetMeeting(ctx context.Context, id string, exec ...core.DBExecutor) (meeting.Meeting, error) {
	if !validID(id) {
		return meeting.Meeting{}, meeting.ErrNotFound
	}
	var row meetingRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, meetingSelect+" WHERE m.id = $1", id); err != nil {
		return meeting.Meeting{}, trapNoRowsErr(err, meeting.ErrNotFound, "finding meeting by ID")
	}
	return repo.toMeeting(row), nil
}

// CreateMeetings is atomic only when exec is a transaction or the batch holds a single meeting.
// Services always call it inside a transaction.
func (repo meetingRepository) CreateMeetings(ctx context.Context, meetings []meeting.Meeting, exec ...core.DBExecutor) ([]meeting.Meeting, error) {
	if len(meetings) == 0 {
		return []meeting.Meeting{}, nil
	}

	rows := make([]meetingRow, 0, len(meetings))
	created := make([]meeting.Meeting, 0, len(meetings))
	for _, mtg := range meetings {
		mtg.ID = uuid.New().String()
		rows = append(rows, repo.toRow(mtg))
		created = append(created, mtg)
	}

	q := `INSERT INTO meetings (` + meetingColumns + `)
		VALUES (:id, :section_id, :course_id, :instructor_id, :meeting_number, :date, :start_time, :end_time,
		:location, :is_archived, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, rows); err != nil {
		return nil, errors.Wrap(err, "inserting meetings")
	}
	return created, nil
}

func (repo meetingRepository) UpdateMeeting(ctx context.Context, mtg meeting.Meeting, exec ...core.DBExecutor) (meeting.Meeting, error) {
	q := `UPDATE meetings SET meeting_number = :meeting_number, date = :date, start_time = :start_time,
		end_time = :end_time, location = :location, instructor_id = :instructor_id,
		is_archived = :is_archived, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, repo.toRow(mtg))
	if err != nil {
		return meeting.Meeting{}, errors.Wrap(err, "updating meeting")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return meeting.Meeting{}, meeting.ErrNotFound
	}
	return mtg, nil
}

func (repo meetingRepository) DeleteMeetingsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	return deleteByIDs(ctx, repo.getExec(exec), "meetings", ids, "deleting meetings")
}

func (repo meetingRepository) DeleteSectionMeetings(ctx context.Context, sectionID string, exec ...core.DBExecutor) (int, error) {
	if !validID(sectionID) {
		return 0, nil
	}
	res, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM meetings WHERE section_id = $1", sectionID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting section meetings")
	}
	cnt, err := res.RowsAffected()
	return int(cnt), errors.Wrap(err, "deleting section meetings")
}

func (repo meetingRepository) ArchiveMeetingsBefore(ctx context.Context, date civil.Date, exec ...core.DBExecutor) (int, error) {
	q := "UPDATE meetings SET is_archived = TRUE, updated_at = $1 WHERE date < $2 AND NOT is_archived"
	res, err := repo.getExec(exec).ExecContext(ctx, q, time.Now().UTC(), date.String())
	if err != nil {
		return 0, errors.Wrap(err, "archiving meetings")
	}
	cnt, err := res.RowsAffected()
	return int(cnt), errors.Wrap(err, "archiving meetings")
}

func (repo meetingRepository) MaxMeetingNumber(ctx context.Context, sectionID string, exec ...core.DBExecutor) (int, error) {
	if !validID(sectionID) {
		return 0, nil
	}
	var last int
	q := "SELECT COALESCE(MAX(meeting_number), 0) FROM meetings WHERE section_id = $1"
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &last, q, sectionID); err != nil {
		return 0, errors.Wrap(err, "getting max meeting number")
	}
	return last, nil
}
