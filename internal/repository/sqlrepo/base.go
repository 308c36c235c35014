package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"salemre/backend/internal/query"
	"salemre/backend/internal/repository"
)

// setJoin maps a set-valued column onto its join table.
type setJoin struct {
	table    string
	fk       string
	valueCol string
}

type table struct {
	name    string
	columns []any
	sets    map[string]setJoin
}

type base struct {
	db        *sqlx.DB
	dialect   goqu.DialectWrapper
	returning bool
}

// where renders predicates into goqu expressions. Every predicate becomes one
// conjunct; CompoundOr becomes a single OR group.
func (b *base) where(t table, preds []query.Predicate) []exp.Expression {
	out := make([]exp.Expression, 0, len(preds))
	for _, p := range preds {
		if e := b.predicate(t, p); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (b *base) predicate(t table, p query.Predicate) exp.Expression {
	switch p.Kind {
	case query.Exact:
		return goqu.C(p.Column).Eq(p.Value)
	case query.Contains:
		return containsExpr(p.Column, p.Value)
	case query.Range:
		switch {
		case p.Min != nil && p.Max != nil:
			return goqu.C(p.Column).Between(goqu.Range(p.Min, p.Max))
		case p.Min != nil:
			return goqu.C(p.Column).Gte(p.Min)
		case p.Max != nil:
			return goqu.C(p.Column).Lte(p.Max)
		}
	case query.SetMembership:
		join, ok := t.sets[p.Column]
		if !ok {
			return goqu.L("1 = 0")
		}
		sub := b.dialect.From(join.table).Select(join.fk).Where(goqu.C(join.valueCol).Eq(p.Value))
		return goqu.C("id").In(sub)
	case query.CompoundOr:
		ors := make([]exp.Expression, 0, len(p.Columns))
		for _, col := range p.Columns {
			ors = append(ors, containsExpr(col, p.Value))
		}
		return goqu.Or(ors...)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsExpr(column string, value any) exp.Expression {
	term := strings.ToLower(fmt.Sprint(value))
	pattern := "%" + likeEscaper.Replace(term) + "%"
	return goqu.L(`LOWER(?) LIKE ? ESCAPE '\'`, goqu.C(column), pattern)
}

func orderExprs(orders []query.Order) []exp.OrderedExpression {
	out := make([]exp.OrderedExpression, 0, len(orders))
	for _, o := range orders {
		if o.Desc {
			out = append(out, goqu.I(o.Column).Desc())
		} else {
			out = append(out, goqu.I(o.Column).Asc())
		}
	}
	return out
}

// listPage counts the matching rows and loads one page of them into dest.
func listPage[T any](ctx context.Context, b *base, t table, q query.Query) ([]T, int64, error) {
	where := b.where(t, q.Predicates)

	countSQL, countArgs, err := b.dialect.From(t.name).
		Select(goqu.COUNT(goqu.Star())).
		Where(where...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("building %s count: %w", t.name, err)
	}
	var count int64
	if err := b.db.GetContext(ctx, &count, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", t.name, err)
	}

	items := []T{}
	if count == 0 || int64(q.Offset) >= count {
		return items, count, nil
	}

	ds := b.dialect.From(t.name).
		Select(t.columns...).
		Where(where...).
		Order(orderExprs(q.Order)...)
	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}
	if q.Offset > 0 {
		ds = ds.Offset(uint(q.Offset))
	}
	listSQL, listArgs, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("building %s list: %w", t.name, err)
	}
	if err := b.db.SelectContext(ctx, &items, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("listing %s: %w", t.name, err)
	}
	return items, count, nil
}

// getOne loads the single row matching where.
func getOne[T any](ctx context.Context, b *base, t table, where exp.Expression) (*T, error) {
	sqlStr, args, err := b.dialect.From(t.name).Select(t.columns...).Where(where).Limit(1).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building %s lookup: %w", t.name, err)
	}
	var item T
	if err := b.db.GetContext(ctx, &item, sqlStr, args...); err != nil {
		return nil, mapErr(err)
	}
	return &item, nil
}

// insert adds a row and returns its generated id.
func (b *base) insert(ctx context.Context, ex sqlx.ExtContext, tableName string, rec goqu.Record) (int64, error) {
	ds := b.dialect.Insert(tableName).Rows(rec)
	if b.returning {
		sqlStr, args, err := ds.Returning("id").Prepared(true).ToSQL()
		if err != nil {
			return 0, fmt.Errorf("building %s insert: %w", tableName, err)
		}
		var id int64
		if err := ex.QueryRowxContext(ctx, sqlStr, args...).Scan(&id); err != nil {
			return 0, mapErr(err)
		}
		return id, nil
	}

	sqlStr, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building %s insert: %w", tableName, err)
	}
	res, err := ex.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.LastInsertId()
}

// exec runs an UPDATE or DELETE and reports ErrNotFound when no row matched.
func (b *base) exec(ctx context.Context, ex sqlx.ExecerContext, sqlStr string, args []any) error {
	res, err := ex.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (b *base) updateByID(ctx context.Context, ex sqlx.ExecerContext, tableName string, id int64, rec goqu.Record) error {
	sqlStr, args, err := b.dialect.Update(tableName).Set(rec).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building %s update: %w", tableName, err)
	}
	return b.exec(ctx, ex, sqlStr, args)
}

func (b *base) deleteByID(ctx context.Context, tableName string, id int64) error {
	sqlStr, args, err := b.dialect.Delete(tableName).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building %s delete: %w", tableName, err)
	}
	return b.exec(ctx, b.db, sqlStr, args)
}

func (b *base) incrementViews(ctx context.Context, tableName string, id int64) error {
	sqlStr, args, err := b.dialect.Update(tableName).
		Set(goqu.Record{"views": goqu.L("views + 1")}).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building %s view increment: %w", tableName, err)
	}
	return b.exec(ctx, b.db, sqlStr, args)
}

// mapErr translates driver errors into repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, pqErr.Constraint)
		case "23503":
			return fmt.Errorf("%w: %s", repository.ErrReferenced, pqErr.Constraint)
		}
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", repository.ErrDuplicate, liteErr)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %v", repository.ErrReferenced, liteErr)
		}
	}
	return err
}
