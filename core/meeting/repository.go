package meeting

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/trezcool/academia/core"
)

type Repository interface {
	QueryMeetings(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Meeting, error)
	GetMeeting(ctx context.Context, id string, exec ...core.DBExecutor) (Meeting, error)
	// CreateMeetings inserts all meetings or none.
	CreateMeetings(ctx context.Context, meetings []Meeting, exec ...core.DBExecutor) ([]Meeting, error)
	UpdateMeeting(ctx context.Context, mtg Meeting, exec ...core.DBExecutor) (Meeting, error)
	DeleteMeetingsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	DeleteSectionMeetings(ctx context.Context, sectionID string, exec ...core.DBExecutor) (int, error)
	// ArchiveMeetingsBefore flags every meeting dated before `date` as archived.
	ArchiveMeetingsBefore(ctx context.Context, date civil.Date, exec ...core.DBExecutor) (int, error)
	// MaxMeetingNumber returns the highest meeting number of a section, 0 when it has none.
	MaxMeetingNumber(ctx context.Context, sectionID string, exec ...core.DBExecutor) (int, error)
}
