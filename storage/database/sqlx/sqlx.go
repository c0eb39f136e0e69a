// Package sqlxrepos implements the domain repositories on postgres with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

type baseRepository struct {
	exec core.DBExecutor
}

func (repo baseRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps psql "no rows" err to the domain's not found error
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// validID reports whether id can be compared against a UUID column without postgres raising an error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	return valid
}

// where accumulates AND-ed conditions written with `?` placeholders.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// addIn adds a `column IN (...)` condition; an empty list matches nothing.
func (w *where) addIn(column string, values []string) error {
	if len(values) == 0 {
		w.add("FALSE")
		return nil
	}
	cond, args, err := sqlx.In(column+" IN (?)", values)
	if err != nil {
		return errors.Wrap(err, "expanding IN clause")
	}
	w.add(cond, args...)
	return nil
}

func (w where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderBy renders orderings, whose fields were vetted by the services, followed by the default tie breakers.
func orderBy(ordering []core.DBOrdering, prefix string, defaults ...string) string {
	items := make([]string, 0, len(ordering)+len(defaults))
	for _, ord := range ordering {
		items = append(items, prefix+ord.String())
	}
	for _, dflt := range defaults {
		items = append(items, prefix+dflt)
	}
	if len(items) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(items, ", ")
}

func deleteByIDs(ctx context.Context, exec core.DBExecutor, table string, ids []string, msg string) (int, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In("DELETE FROM "+table+" WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, msg)
	}
	res, err := exec.ExecContext(ctx, exec.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, msg)
	}
	cnt, err := res.RowsAffected()
	return int(cnt), errors.Wrap(err, msg)
}
