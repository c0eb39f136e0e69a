package inmemdb

import (
	"cmp"
	"context"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/lead"
	"github.com/trezcool/academia/core/meeting"
	"github.com/trezcool/academia/core/section"
	"github.com/trezcool/academia/core/user"
)

// DB keeps every table in memory. Tables are always locked in declaration order.
type (
	DB struct {
		txMu sync.Mutex

		user    *userTable
		course  *courseTable
		section *sectionTable
		meeting *meetingTable
		lead    *leadTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	sectionTable struct {
		sync.RWMutex
		table map[string]*section.Section
	}

	meetingTable struct {
		sync.RWMutex
		table map[string]*meeting.Meeting
	}

	leadTable struct {
		sync.RWMutex
		table map[string]*lead.Lead
	}
)

var _ core.Transactor = (*DB)(nil) // interface compliance check

func Open() *DB {
	return &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		course:  &courseTable{table: make(map[string]*course.Course)},
		section: &sectionTable{table: make(map[string]*section.Section)},
		meeting: &meetingTable{table: make(map[string]*meeting.Meeting)},
		lead:    &leadTable{table: make(map[string]*lead.Lead)},
	}
}

// InTx serializes fn with other transactions. Writes are not rolled back when fn fails.
func (db *DB) InTx(_ context.Context, fn func(exec core.DBExecutor) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()
	return fn(nil)
}

// Truncate empties every table.
func (db *DB) Truncate() {
	db.user.Lock()
	db.course.Lock()
	db.section.Lock()
	db.meeting.Lock()
	db.lead.Lock()
	defer func() {
		db.lead.Unlock()
		db.meeting.Unlock()
		db.section.Unlock()
		db.course.Unlock()
		db.user.Unlock()
	}()

	db.user.table = make(map[string]*user.User)
	db.course.table = make(map[string]*course.Course)
	db.section.table = make(map[string]*section.Section)
	db.meeting.table = make(map[string]*meeting.Meeting)
	db.lead.table = make(map[string]*lead.Lead)
}

// withDefaults appends default orderings, used as tie breakers, without touching the caller's slice.
func withDefaults(ordering []core.DBOrdering, defaults ...core.DBOrdering) []core.DBOrdering {
	out := make([]core.DBOrdering, 0, len(ordering)+len(defaults))
	out = append(out, ordering...)
	return append(out, defaults...)
}

// orderedLess reports whether a sorts before b following ordering;
// compare(field) compares a and b on a single field.
func orderedLess(ordering []core.DBOrdering, compare func(field string) int) bool {
	for _, ord := range ordering {
		c := compare(ord.Field)
		if c == 0 {
			continue
		}
		if ord.Ascending {
			return c < 0
		}
		return c > 0
	}
	return false
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func compareTimes(a, b time.Time) int {
	return a.Compare(b)
}

func compareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareInts(a, b int) int {
	return cmp.Compare(a, b)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
