package database

import (
	"fmt"
	"strings"

	"github.com/koustreak/schemadiff/internal/errs"
)

// Dialect controls the placeholder and identifier quoting style the query
// builders emit.
type Dialect int

const (
	// DialectPostgres uses $1, $2, … placeholders and "double" quotes.
	DialectPostgres Dialect = iota

	// DialectMySQL uses ? placeholders and `backtick` quotes.
	DialectMySQL

	// DialectSQLite uses ? placeholders and "double" quotes.
	DialectSQLite
)

func (d Dialect) String() string {
	switch d {
	case DialectMySQL:
		return "mysql"
	case DialectSQLite:
		return "sqlite"
	default:
		return "postgres"
	}
}

// Placeholder returns the bind parameter for the idx-th (1-based) argument.
func (d Dialect) Placeholder(idx int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", idx)
	}
	return "?"
}

// QuoteIdent quotes a SQL identifier for the dialect.
func (d Dialect) QuoteIdent(name string) string {
	if d == DialectMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// validOps is the allowlist of comparison operators for WHERE clauses.
// Any operator not in this list is rejected to prevent SQL injection
// through the operator position (which cannot be parameterized).
var validOps = map[string]bool{
	"=":     true,
	"!=":    true,
	"<>":    true,
	"<":     true,
	">":     true,
	"<=":    true,
	">=":    true,
	"LIKE":  true,
	"ILIKE": true,
}

// SelectBuilder constructs a parameterized SELECT query using a fluent API.
// Values are never interpolated into the SQL string; they are always passed as args.
//
// Usage (Postgres):
//
//	sql, args, err := Select("schemadiff_runs", DialectPostgres).
//	    Columns("id", "database_a", "database_b").
//	    Where("database_a", "=", "shop").
//	    OrderBy("created_at", Desc).
//	    Limit(20).
//	    Offset(0).
//	    Build()
type SelectBuilder struct {
	table   string
	dialect Dialect
	columns []string
	where   []whereClause
	orderBy []orderClause
	limit   *int
	offset  *int
}

// SortDirection controls the ORDER BY direction.
type SortDirection bool

const (
	Asc  SortDirection = false
	Desc SortDirection = true
)

type whereClause struct {
	column string
	op     string
	value  any
}

type orderClause struct {
	column string
	dir    SortDirection
}

// Select starts a new SelectBuilder for the given table and dialect.
func Select(table string, d Dialect) *SelectBuilder {
	return &SelectBuilder{table: table, dialect: d}
}

// Columns restricts the SELECT to the specified columns.
// If not called, SELECT * is used.
func (b *SelectBuilder) Columns(cols ...string) *SelectBuilder {
	b.columns = cols
	return b
}

// Where adds a WHERE condition. op must be one of the allowed comparison
// operators (=, !=, <, >, <=, >=, LIKE, ILIKE).
// Multiple calls are combined with AND.
func (b *SelectBuilder) Where(column, op string, value any) *SelectBuilder {
	b.where = append(b.where, whereClause{column, op, value})
	return b
}

// OrderBy appends an ORDER BY clause for the given column and direction.
func (b *SelectBuilder) OrderBy(column string, dir SortDirection) *SelectBuilder {
	b.orderBy = append(b.orderBy, orderClause{column, dir})
	return b
}

// Limit sets the maximum number of rows to return.
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = &n
	return b
}

// Offset sets the number of rows to skip (for pagination).
func (b *SelectBuilder) Offset(n int) *SelectBuilder {
	b.offset = &n
	return b
}

// Build produces the final SQL string and argument slice.
// Returns an error if any WHERE operator is not in the allowlist.
func (b *SelectBuilder) Build() (string, []any, error) {
	// --- column list ---
	cols := "*"
	if len(b.columns) > 0 {
		quoted := make([]string, len(b.columns))
		for i, c := range b.columns {
			quoted[i] = b.quoteIdent(c)
		}
		cols = strings.Join(quoted, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	sb.WriteString(" FROM ")
	sb.WriteString(b.quoteIdent(b.table))

	var args []any
	argIdx := 1

	// --- WHERE ---
	if len(b.where) > 0 {
		parts := make([]string, 0, len(b.where))
		for _, w := range b.where {
			op := strings.ToUpper(w.op)
			if !validOps[op] {
				return "", nil, errs.Newf(errs.ErrKindInvalidInput, "unsupported WHERE operator: %q", w.op)
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", b.quoteIdent(w.column), op, b.placeholder(argIdx)))
			args = append(args, w.value)
			argIdx++
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(parts, " AND "))
	}

	// --- ORDER BY ---
	if len(b.orderBy) > 0 {
		parts := make([]string, len(b.orderBy))
		for i, o := range b.orderBy {
			dir := "ASC"
			if o.dir == Desc {
				dir = "DESC"
			}
			parts[i] = fmt.Sprintf("%s %s", b.quoteIdent(o.column), dir)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	// --- LIMIT ---
	if b.limit != nil {
		sb.WriteString(fmt.Sprintf(" LIMIT %s", b.placeholder(argIdx)))
		args = append(args, *b.limit)
		argIdx++
	}

	// --- OFFSET ---
	if b.offset != nil {
		sb.WriteString(fmt.Sprintf(" OFFSET %s", b.placeholder(argIdx)))
		args = append(args, *b.offset)
	}

	return sb.String(), args, nil
}

func (b *SelectBuilder) placeholder(idx int) string {
	return b.dialect.Placeholder(idx)
}

func (b *SelectBuilder) quoteIdent(name string) string {
	return b.dialect.QuoteIdent(name)
}

// InsertBuilder constructs a parameterized single-row INSERT.
//
//	sql, args, err := Insert("schemadiff_runs", DialectSQLite).
//	    Set("id", id).
//	    Set("database_a", "shop").
//	    Build()
type InsertBuilder struct {
	table   string
	dialect Dialect
	columns []string
	values  []any
}

// Insert starts a new InsertBuilder for the given table and dialect.
func Insert(table string, d Dialect) *InsertBuilder {
	return &InsertBuilder{table: table, dialect: d}
}

// Set adds a column and its value. Columns keep the order of the calls.
func (b *InsertBuilder) Set(column string, value any) *InsertBuilder {
	b.columns = append(b.columns, column)
	b.values = append(b.values, value)
	return b
}

// Build produces the final SQL string and argument slice.
func (b *InsertBuilder) Build() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, errs.Newf(errs.ErrKindInvalidInput, "insert into %q without columns", b.table)
	}

	cols := make([]string, len(b.columns))
	marks := make([]string, len(b.columns))
	for i, c := range b.columns {
		cols[i] = b.dialect.QuoteIdent(c)
		marks[i] = b.dialect.Placeholder(i + 1)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		b.dialect.QuoteIdent(b.table), strings.Join(cols, ", "), strings.Join(marks, ", "))
	args := make([]any, len(b.values))
	copy(args, b.values)
	return sql, args, nil
}
