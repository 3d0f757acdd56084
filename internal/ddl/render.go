// Package ddl renders comparison diffs as MySQL DDL.
//
// Rendering is a pure function of the diff and a Direction. Forward treats
// side A as the target state (the DDL turns B into A), Reverse treats side B
// as the target.
package ddl

import (
	"fmt"
	"strings"

	"github.com/koustreak/schemadiff/internal/compare"
	"github.com/koustreak/schemadiff/internal/schema"
)

// Direction selects the authoritative side.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Render writes the DDL of every diff in order.
func Render(w LineWriter, diffs []compare.Diff, dir Direction) {
	for _, d := range diffs {
		RenderDiff(w, d, dir)
	}
}

// RenderDiff writes the DDL of a single diff. EQUAL and CHILDREN_DIFFER
// records produce nothing. It panics on a mode the diff kind cannot carry.
func RenderDiff(w LineWriter, d compare.Diff, dir Direction) {
	rev := dir == Reverse
	switch v := d.(type) {
	case *compare.TableDiff:
		renderTable(w, v, rev)
	case *compare.ViewDiff:
		renderView(w, v, rev)
	case *compare.FieldDiff:
		renderField(w, v, rev)
	case *compare.KeyDiff:
		renderKey(w, v, rev)
	case *compare.ProcedureDiff:
		renderProcedure(w, v, rev)
	default:
		panic(fmt.Sprintf("ddl: unknown diff type %T", d))
	}
}

// String renders d into a string.
func String(d compare.Diff, dir Direction) string {
	var b Buffer
	RenderDiff(&b, d, dir)
	return b.String()
}

func unexpected(d compare.Diff) {
	panic(fmt.Sprintf("ddl: unexpected %s diff with mode %s", d.Kind(), d.Mode()))
}

func renderTable(w LineWriter, d *compare.TableDiff, rev bool) {
	switch d.Mode() {
	case compare.ModeEqual, compare.ModeChildrenDiffer:
	case compare.ModeDifferent:
		target, current := d.A, d.B
		if rev {
			target, current = d.B, d.A
		}
		w.Println(alterTableOptions(*target, *current))
	case compare.ModeLeftOnly:
		if rev {
			w.Println(dropTable(*d.A))
		} else {
			w.Println(d.A.CreateStatement() + ";")
		}
	case compare.ModeRightOnly:
		if rev {
			w.Println(d.B.CreateStatement() + ";")
		} else {
			w.Println(dropTable(*d.B))
		}
	default:
		unexpected(d)
	}
}

func dropTable(t schema.TableInfo) string {
	return "DROP TABLE `" + t.Name() + "`;"
}

// alterTableOptions lists only the options in which target differs.
func alterTableOptions(target, current schema.TableInfo) string {
	opts := []string{"ALTER TABLE `" + target.Name() + "`"}
	if target.Engine() != current.Engine() {
		opts = append(opts, "ENGINE="+target.Engine())
	}
	if target.Charset() != current.Charset() {
		opts = append(opts, "CHARSET="+target.Charset())
	}
	if target.Collation() != current.Collation() {
		opts = append(opts, "COLLATE="+target.Collation())
	}
	return strings.Join(opts, " ") + ";"
}

func renderView(w LineWriter, d *compare.ViewDiff, rev bool) {
	switch d.Mode() {
	case compare.ModeEqual:
	case compare.ModeLeftOnly:
		writeView(w, *d.A, rev)
	case compare.ModeRightOnly:
		writeView(w, *d.B, !rev)
	case compare.ModeDifferent:
		target := d.A
		if rev {
			target = d.B
		}
		writeView(w, *target, true)
		writeView(w, *target, false)
	default:
		unexpected(d)
	}
}

func writeView(w LineWriter, v schema.ViewInfo, drop bool) {
	if drop {
		w.Println("DROP VIEW `" + v.Name() + "`;")
		return
	}
	w.Println(v.CreateStatement() + ";")
}

func renderProcedure(w LineWriter, d *compare.ProcedureDiff, rev bool) {
	switch d.Mode() {
	case compare.ModeEqual:
	case compare.ModeLeftOnly:
		writeProcedure(w, *d.A, rev)
	case compare.ModeRightOnly:
		writeProcedure(w, *d.B, !rev)
	case compare.ModeDifferent:
		target := d.A
		if rev {
			target = d.B
		}
		writeProcedure(w, *target, true)
		writeProcedure(w, *target, false)
	default:
		unexpected(d)
	}
}

func writeProcedure(w LineWriter, p schema.ProcedureInfo, drop bool) {
	if drop {
		w.Println("DROP " + p.Kind() + " `" + p.Name() + "`;")
		return
	}
	w.Println("DELIMITER $$\n" + p.CreateStatement() + "$$\nDELIMITER ;")
}

func renderField(w LineWriter, d *compare.FieldDiff, rev bool) {
	switch d.Mode() {
	case compare.ModeEqual:
	case compare.ModeLeftOnly:
		if rev {
			w.Println(dropColumn(*d.A))
		} else {
			w.Println(addColumn(*d.A))
		}
	case compare.ModeRightOnly:
		if rev {
			w.Println(addColumn(*d.B))
		} else {
			w.Println(dropColumn(*d.B))
		}
	case compare.ModeDifferent:
		target := d.A
		if rev {
			target = d.B
		}
		w.Println("ALTER TABLE `" + d.A.Table() + "` MODIFY COLUMN " + ColumnDefinition(*target) + ";")
	default:
		unexpected(d)
	}
}

func addColumn(f schema.FieldInfo) string {
	return "ALTER TABLE `" + f.Table() + "` ADD COLUMN " + ColumnDefinition(f) + ";"
}

func dropColumn(f schema.FieldInfo) string {
	return "ALTER TABLE `" + f.Table() + "` DROP COLUMN `" + f.Name() + "`;"
}

func renderKey(w LineWriter, d *compare.KeyDiff, rev bool) {
	switch d.Mode() {
	case compare.ModeEqual:
	case compare.ModeLeftOnly:
		if rev {
			w.Println(dropKey(*d.A))
		} else {
			w.Println(addKey(*d.A))
		}
	case compare.ModeRightOnly:
		if rev {
			w.Println(addKey(*d.B))
		} else {
			w.Println(dropKey(*d.B))
		}
	case compare.ModeDifferent:
		target, current := d.A, d.B
		if rev {
			target, current = d.B, d.A
		}
		w.Println(dropKey(*current))
		w.Println(addKey(*target))
	default:
		unexpected(d)
	}
}

func dropKey(k schema.KeyInfo) string {
	return "DROP INDEX `" + k.Name() + "` ON `" + k.Table() + "`;"
}

func addKey(k schema.KeyInfo) string {
	return "ALTER TABLE `" + k.Table() + "` ADD " + KeyDefinition(k) + ";"
}

// KeyKind returns the index clause keyword for k.
func KeyKind(k schema.KeyInfo) string {
	switch {
	case k.IsPrimary():
		return "PRIMARY KEY"
	case !k.Unique():
		return "INDEX"
	default:
		return "UNIQUE INDEX"
	}
}

// KeyDefinition renders "<kind> [`name`] (cols)". The primary key is unnamed.
func KeyDefinition(k schema.KeyInfo) string {
	var sb strings.Builder
	sb.WriteString(KeyKind(k))
	sb.WriteByte(' ')
	if !k.IsPrimary() {
		sb.WriteString("`" + k.Name() + "` ")
	}
	sb.WriteByte('(')
	for i, f := range k.Fields() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
