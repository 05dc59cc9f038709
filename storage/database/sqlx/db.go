package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
)

// postgres error codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// constraintError returns the name of the violated constraint when err is a postgres error with code.
func constraintError(err error, code string) (string, bool) {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	if !ok || string(pqErr.Code) != code {
		return "", false
	}
	return pqErr.Constraint, true
}

// trapNoRowsErr maps sql.ErrNoRows to notFoundErr and wraps any other error with msg.
func trapNoRowsErr(err, notFoundErr error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFoundErr
	}
	return errors.Wrap(err, msg)
}

// mustAffect returns notFoundErr when res affected no row.
func mustAffect(res sql.Result, err, notFoundErr error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFoundErr
	}
	return nil
}

// where accumulates AND-ed conditions written with ? placeholders.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// visibility restricts rows to those visible to the caller. empCol and deptCol are the
// employee and department id columns.
func (w *where) visibility(v core.Visibility, empCol, deptCol string) {
	if v.All {
		return
	}
	var ors []string
	if v.EmployeeID != "" {
		ors = append(ors, empCol+" = ?")
		w.args = append(w.args, v.EmployeeID)
	}
	if len(v.DepartmentIDs) > 0 {
		ors = append(ors, deptCol+" = ANY(?)")
		w.args = append(w.args, pq.Array(v.DepartmentIDs))
	}
	if len(ors) == 0 {
		w.conds = append(w.conds, "false")
		return
	}
	w.conds = append(w.conds, "("+strings.Join(ors, " OR ")+")")
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// selectList runs a filtered, ordered and paged query into dest.
func selectList(ctx context.Context, db sqlx.QueryerContext, dest interface{}, base string, w where, opts core.ListOptions, defOrder string) error {
	query := base + w.String() + core.OrderByClause(opts.Orderings, defOrder) + opts.Page.LimitClause()
	return sqlx.SelectContext(ctx, db, dest, sqlx.Rebind(sqlx.DOLLAR, query), w.args...)
}

func count(ctx context.Context, db sqlx.QueryerContext, query string, args ...interface{}) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, db, &n, sqlx.Rebind(sqlx.DOLLAR, query), args...)
	return n, err
}
