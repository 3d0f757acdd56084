package ddl

import (
	"math"
	"strconv"
	"strings"

	"github.com/koustreak/schemadiff/internal/schema"
)

// ColumnDefinition renders a full column definition including its position:
//
//	`name` type[(len)] [COLLATE c] [GENERATED ALWAYS AS (expr) kind]
//	[NOT] NULL [DEFAULT v] [AUTO_INCREMENT] FIRST|AFTER `prev`
func ColumnDefinition(f schema.FieldInfo) string {
	parts := []string{"`" + f.Name() + "`", columnType(f)}

	if f.Collation() != "" {
		parts = append(parts, "COLLATE "+f.Collation())
	}

	gen := f.Generated()
	if gen.Kind != schema.GenerationNone {
		parts = append(parts, "GENERATED ALWAYS AS ("+gen.Expression+") "+gen.Kind.String())
	}

	if f.Nullable() {
		parts = append(parts, "NULL")
	} else {
		parts = append(parts, "NOT NULL")
	}

	// Generated columns cannot carry a default.
	if gen.Kind == schema.GenerationNone {
		if def, ok := f.Default(); ok {
			parts = append(parts, "DEFAULT "+DefaultLiteral(def))
		} else if f.Nullable() {
			parts = append(parts, "DEFAULT NULL")
		}
	}

	if f.AutoIncrement() {
		parts = append(parts, "AUTO_INCREMENT")
	}

	if f.IsFirst() {
		parts = append(parts, "FIRST")
	} else {
		parts = append(parts, "AFTER `"+f.Previous()+"`")
	}
	return strings.Join(parts, " ")
}

func columnType(f schema.FieldInfo) string {
	if n, ok := f.Length(); ok {
		return f.Type() + "(" + strconv.Itoa(n) + ")"
	}
	return f.Type()
}

// DefaultLiteral renders a column default: finite numbers stay bare,
// anything else becomes a quoted string.
func DefaultLiteral(v string) string {
	if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
