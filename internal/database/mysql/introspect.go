package mysql

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/koustreak/schemadiff/internal/database"
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/logger"
	"github.com/koustreak/schemadiff/internal/schema"
)

// Defaults applied when a create statement omits a table option.
const (
	DefaultEngine  = "InnoDB"
	DefaultCharset = "utf8mb4"
)

var (
	autoIncrementOption = regexp.MustCompile(`(?i)AUTO_INCREMENT=\d+`)
	engineOption        = regexp.MustCompile(`(?i)ENGINE=(\S+)`)
	charsetOption       = regexp.MustCompile(`(?i)CHARSET=(\S+)`)
	collateOption       = regexp.MustCompile(`(?i)COLLATE=(\S+)`)
)

// Introspector reads a MySQL schema into a schema.Snapshot.
type Introspector struct {
	db  database.DB
	log *logger.Logger
}

// NewIntrospector creates a new MySQL schema introspector
func NewIntrospector(db database.DB, log *logger.Logger) *Introspector {
	if log == nil {
		log = logger.Nop()
	}
	return &Introspector{db: db, log: log.Component("mysql.introspect")}
}

// Snapshot reads tables (with columns and indexes), views and routines of
// dbName. An empty dbName means the connection's current database.
func (in *Introspector) Snapshot(ctx context.Context, dbName string) (*schema.Snapshot, error) {
	if dbName == "" {
		current, err := in.currentDatabase(ctx)
		if err != nil {
			return nil, err
		}
		dbName = current
	}

	tables, views, err := in.listTables(ctx, dbName)
	if err != nil {
		return nil, err
	}

	snap := schema.NewSnapshot(dbName)
	for _, name := range tables {
		if err := in.readTable(ctx, snap, dbName, name); err != nil {
			return nil, err
		}
	}
	for _, name := range views {
		create, err := in.showCreate(ctx, "VIEW", dbName, name, "Create View")
		if err != nil {
			return nil, err
		}
		snap.AddView(schema.NewViewInfo(name, create))
	}
	if err := in.readRoutines(ctx, snap, dbName); err != nil {
		return nil, err
	}

	in.log.InfoWith("schema read", map[string]interface{}{
		"database":   dbName,
		"tables":     snap.Tables.Len(),
		"views":      snap.Views.Len(),
		"procedures": snap.Procedures.Len(),
	})
	return snap, nil
}

func (in *Introspector) currentDatabase(ctx context.Context) (string, error) {
	row, err := in.db.QueryRow(ctx, "SELECT DATABASE() AS name")
	if err != nil {
		return "", err
	}
	rec, err := database.ScanRow(row, []string{"name"})
	if err != nil {
		return "", err
	}
	name := database.Text(rec["name"])
	if name == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "no database selected: name one or add it to the DSN")
	}
	return name, nil
}

// listTables splits SHOW FULL TABLES into base tables and views, in server order.
func (in *Introspector) listTables(ctx context.Context, dbName string) (tables, views []string, err error) {
	rows, err := in.db.Query(ctx, "SHOW FULL TABLES FROM "+quote(dbName))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, kind any
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan table list", err)
		}
		switch database.Text(kind) {
		case "BASE TABLE":
			tables = append(tables, database.Text(name))
		case "VIEW":
			views = append(views, database.Text(name))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errs.Wrap(errs.ErrKindQueryFailed, "error iterating tables", err)
	}
	return tables, views, nil
}

func (in *Introspector) readTable(ctx context.Context, snap *schema.Snapshot, dbName, name string) error {
	create, err := in.showCreate(ctx, "TABLE", dbName, name, "Create Table")
	if err != nil {
		return err
	}
	table := ParseTableOptions(name, create)

	fields, err := in.readFields(ctx, dbName, name)
	if err != nil {
		return err
	}
	keys, err := in.readKeys(ctx, dbName, name)
	if err != nil {
		return err
	}

	snap.AddTable(table, fields, keys)
	in.log.With().Str("table", name).Int("fields", len(fields)).Int("keys", len(keys)).Logger().Debug("table read")
	return nil
}

// showCreate runs SHOW CREATE <kind> and returns the named result column.
func (in *Introspector) showCreate(ctx context.Context, kind, dbName, name, column string) (string, error) {
	rows, err := in.db.Query(ctx, "SHOW CREATE "+kind+" "+quote(dbName)+"."+quote(name))
	if err != nil {
		return "", err
	}
	result, err := database.ScanRows(rows)
	if err != nil {
		return "", err
	}
	if len(result) == 0 {
		return "", errs.Newf(errs.ErrKindNotFound, "show create %s %s: no rows", strings.ToLower(kind), name)
	}
	v, ok := result[0][column]
	if !ok {
		return "", errs.Newf(errs.ErrKindQueryFailed, "show create %s %s: missing column %q", strings.ToLower(kind), name, column)
	}
	return database.Text(v), nil
}

const columnsQuery = `
		SELECT column_name,
		       column_type,
		       collation_name,
		       is_nullable,
		       column_default,
		       extra,
		       generation_expression,
		       column_key
		FROM information_schema.columns
		WHERE table_schema = ?
		  AND table_name   = ?
		ORDER BY ordinal_position`

func (in *Introspector) readFields(ctx context.Context, dbName, table string) ([]schema.FieldInfo, error) {
	rows, err := in.db.Query(ctx, columnsQuery, dbName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		fields   []schema.FieldInfo
		previous string
	)
	for rows.Next() {
		var name, colType, collation, nullable, def, extra, genExpr, colKey any
		if err := rows.Scan(&name, &colType, &collation, &nullable, &def, &extra, &genExpr, &colKey); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan column info", err)
		}

		extraText := strings.ToLower(database.Text(extra))
		gen := schema.Generation{Kind: schema.ParseGenerationKind(extraText)}
		if gen.Kind != schema.GenerationNone {
			gen.Expression = database.Text(genExpr)
			gen.BacksUniqueKey = database.Text(colKey) == "UNI"
		}

		f, err := schema.NewFieldInfo(schema.FieldSpec{
			Table:         table,
			Name:          database.Text(name),
			Previous:      previous,
			Type:          database.Text(colType),
			Collation:     database.Text(collation),
			Nullable:      strings.EqualFold(database.Text(nullable), "YES"),
			Default:       database.NullText(def),
			AutoIncrement: strings.Contains(extraText, "auto_increment"),
			Generated:     gen,
		})
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		previous = f.Name()
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error iterating columns", err)
	}
	return fields, nil
}

// readKeys groups SHOW KEYS rows by index, keeping the server's index order
// and the column order inside each index.
func (in *Introspector) readKeys(ctx context.Context, dbName, table string) ([]schema.KeyInfo, error) {
	rows, err := in.db.Query(ctx, "SHOW KEYS FROM "+quote(dbName)+"."+quote(table))
	if err != nil {
		return nil, err
	}
	result, err := database.ScanRows(rows)
	if err != nil {
		return nil, err
	}

	type pending struct {
		name   string
		unique bool
		fields []schema.KeyField
	}
	var order []*pending
	byName := make(map[string]*pending)

	for _, r := range result {
		name := database.Text(r["Key_name"])
		p, ok := byName[name]
		if !ok {
			p = &pending{name: name, unique: database.Text(r["Non_unique"]) == "0"}
			byName[name] = p
			order = append(order, p)
		}

		column := database.Text(r["Column_name"])
		if column == "" {
			// functional key part
			column = database.Text(r["Expression"])
		}
		length := 0
		if sub := database.Text(r["Sub_part"]); sub != "" {
			n, err := strconv.Atoi(sub)
			if err != nil {
				return nil, errs.Wrap(errs.ErrKindQueryFailed, "invalid Sub_part "+strconv.Quote(sub), err)
			}
			length = n
		}
		p.fields = append(p.fields, schema.KeyField{Name: column, Length: length})
	}

	keys := make([]schema.KeyInfo, 0, len(order))
	for _, p := range order {
		keys = append(keys, schema.NewKeyInfo(table, p.name, p.unique, p.fields...))
	}
	return keys, nil
}

const routinesQuery = `
		SELECT routine_name, routine_type
		FROM information_schema.routines
		WHERE routine_schema = ?
		ORDER BY routine_type, routine_name`

// readRoutines loads functions, then procedures.
func (in *Introspector) readRoutines(ctx context.Context, snap *schema.Snapshot, dbName string) error {
	rows, err := in.db.Query(ctx, routinesQuery, dbName)
	if err != nil {
		return err
	}

	type routine struct{ name, kind string }
	var routines []routine
	for rows.Next() {
		var name, kind any
		if err := rows.Scan(&name, &kind); err != nil {
			rows.Close()
			return errs.Wrap(errs.ErrKindQueryFailed, "failed to scan routine", err)
		}
		routines = append(routines, routine{database.Text(name), strings.ToUpper(database.Text(kind))})
	}
	iterErr := rows.Err()
	rows.Close()
	if iterErr != nil {
		return errs.Wrap(errs.ErrKindQueryFailed, "error iterating routines", iterErr)
	}

	for _, r := range routines {
		column := "Create Procedure"
		if r.kind == schema.RoutineFunction {
			column = "Create Function"
		}
		create, err := in.showCreate(ctx, r.kind, dbName, r.name, column)
		if err != nil {
			return err
		}
		snap.AddProcedure(schema.NewProcedureInfo(r.name, r.kind, create))
	}
	return nil
}

// ParseTableOptions builds a TableInfo from a SHOW CREATE TABLE statement.
// AUTO_INCREMENT=n is removed from the stored statement; engine, charset and
// collation are read from the options after the closing parenthesis of the
// column list, falling back to InnoDB, utf8mb4 and <charset>_general_ci.
func ParseTableOptions(name, create string) schema.TableInfo {
	create = autoIncrementOption.ReplaceAllString(create, "")

	tail := create
	if pos := strings.LastIndex(create, ")"); pos >= 0 {
		tail = create[pos:]
	}

	engine := DefaultEngine
	if m := engineOption.FindStringSubmatch(tail); m != nil {
		engine = m[1]
	}
	charset := DefaultCharset
	if m := charsetOption.FindStringSubmatch(tail); m != nil {
		charset = m[1]
	}
	collation := charset + "_general_ci"
	if m := collateOption.FindStringSubmatch(tail); m != nil {
		collation = m[1]
	}

	return schema.NewTableInfo(name, create, engine, charset, collation)
}

// quote wraps a MySQL identifier in backticks.
func quote(name string) string {
	return database.DialectMySQL.QuoteIdent(name)
}
