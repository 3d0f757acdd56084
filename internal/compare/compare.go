// Package compare walks two schema snapshots and produces an ordered list of
// typed difference records.
//
// Order of the result:
//
//	for each table of A: its field diffs, its key diffs, then the table diff
//	tables only in B
//	views of A, then views only in B
//	routines of A, then routines only in B
//
// Within one table, keys that exist only in B come before every other key
// diff so that rendered DDL drops indexes before it adds new ones.
package compare

import (
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/logger"
	"github.com/koustreak/schemadiff/internal/schema"
)

// Result is the outcome of one comparison.
type Result struct {
	DatabaseA string
	DatabaseB string
	Diffs     []Diff
}

// HasChanges reports whether any diff is not EQUAL.
func (r *Result) HasChanges() bool {
	for _, d := range r.Diffs {
		if d.Mode() != ModeEqual {
			return true
		}
	}
	return false
}

// Changes returns the diffs that are not EQUAL, in result order.
func (r *Result) Changes() []Diff {
	var out []Diff
	for _, d := range r.Diffs {
		if d.Mode() != ModeEqual {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the number of diffs of the given kind and mode.
func (r *Result) Count(kind Kind, mode Mode) int {
	n := 0
	for _, d := range r.Diffs {
		if d.Kind() == kind && d.Mode() == mode {
			n++
		}
	}
	return n
}

// CountByMode returns the number of diffs per mode across all kinds.
func (r *Result) CountByMode() map[Mode]int {
	out := make(map[Mode]int)
	for _, d := range r.Diffs {
		out[d.Mode()]++
	}
	return out
}

// Comparer compares snapshots. It holds no state between calls and is safe
// for concurrent use.
type Comparer struct {
	log *logger.Logger
}

// New returns a Comparer logging through log. A nil log discards output.
func New(log *logger.Logger) *Comparer {
	if log == nil {
		log = logger.Nop()
	}
	return &Comparer{log: log.Component("compare")}
}

// Compare diffs a against b. Divergence is reported through the result, never
// as an error. It fails only on nil input.
func (c *Comparer) Compare(a, b *schema.Snapshot) (*Result, error) {
	if a == nil || b == nil {
		return nil, errs.New(errs.ErrKindInvalidInput, "both snapshots are required")
	}

	run := &comparison{log: c.log, a: a, b: b}
	run.tables()
	run.views()
	run.procedures()

	c.log.With().
		Str("database_a", a.Database).
		Str("database_b", b.Database).
		Int("diffs", len(run.diffs)).
		Logger().
		Debug("comparison finished")

	return &Result{DatabaseA: a.Database, DatabaseB: b.Database, Diffs: run.diffs}, nil
}

// comparison is the accumulator of a single Compare call.
type comparison struct {
	log   *logger.Logger
	a, b  *schema.Snapshot
	diffs []Diff
}

func (c *comparison) add(d Diff) {
	c.diffs = append(c.diffs, d)
	if d.Mode() == ModeEqual || !c.log.Enabled("debug") {
		return
	}
	fields := map[string]interface{}{
		"kind": d.Kind().String(),
		"mode": d.Mode().String(),
		"name": d.Name(),
	}
	switch v := d.(type) {
	case *FieldDiff:
		fields["table"] = v.Table()
	case *KeyDiff:
		fields["table"] = v.Table()
	}
	c.log.DebugWith("difference found", fields)
}

func (c *comparison) tables() {
	for _, ta := range c.a.Tables.Items() {
		tb, ok := c.b.Tables.Get(ta.Name())
		if !ok {
			c.add(NewTableDiff(ModeLeftOnly, ptr(ta), nil))
			continue
		}

		childrenEqual := c.fields(ta.Name(), tb.Name())
		if !c.keys(ta.Name(), tb.Name()) {
			childrenEqual = false
		}

		switch {
		case !childrenEqual:
			c.add(NewTableDiff(ModeChildrenDiffer, ptr(ta), ptr(tb)))
		case !ta.Equals(tb):
			c.add(NewTableDiff(ModeDifferent, ptr(ta), ptr(tb)))
		default:
			c.add(NewTableDiff(ModeEqual, ptr(ta), ptr(tb)))
		}
	}

	for _, tb := range c.b.Tables.Items() {
		if !c.a.Tables.Contains(tb.Name()) {
			c.add(NewTableDiff(ModeRightOnly, nil, ptr(tb)))
		}
	}
}

// fields compares the columns of one table and reports whether all are equal.
func (c *comparison) fields(tableA, tableB string) bool {
	fa, fb := c.a.Fields(tableA), c.b.Fields(tableB)
	equal := true

	for _, a := range fa.Items() {
		b, ok := fb.Get(a.Name())
		switch {
		case !ok:
			c.add(NewFieldDiff(ModeLeftOnly, ptr(a), nil))
			equal = false
		case !a.Equals(b):
			c.add(NewFieldDiff(ModeDifferent, ptr(a), ptr(b)))
			equal = false
		default:
			c.add(NewFieldDiff(ModeEqual, ptr(a), ptr(b)))
		}
	}

	for _, b := range fb.Items() {
		if !fa.Contains(b.Name()) {
			c.add(NewFieldDiff(ModeRightOnly, nil, ptr(b)))
			equal = false
		}
	}
	return equal
}

// keys compares the indexes of one table and reports whether all are equal.
// Keys only in B are emitted first.
func (c *comparison) keys(tableA, tableB string) bool {
	ka, kb := c.a.Keys(tableA), c.b.Keys(tableB)
	equal := true

	for _, b := range kb.Items() {
		if !ka.Contains(b.Name()) {
			c.add(NewKeyDiff(ModeRightOnly, nil, ptr(b)))
			equal = false
		}
	}

	for _, a := range ka.Items() {
		b, ok := kb.Get(a.Name())
		switch {
		case !ok:
			c.add(NewKeyDiff(ModeLeftOnly, ptr(a), nil))
			equal = false
		case !a.Equals(b):
			c.add(NewKeyDiff(ModeDifferent, ptr(a), ptr(b)))
			equal = false
		default:
			c.add(NewKeyDiff(ModeEqual, ptr(a), ptr(b)))
		}
	}
	return equal
}

func (c *comparison) views() {
	for _, va := range c.a.Views.Items() {
		vb, ok := c.b.Views.Get(va.Name())
		switch {
		case !ok:
			c.add(NewViewDiff(ModeLeftOnly, ptr(va), nil))
		case !va.Equals(vb):
			c.add(NewViewDiff(ModeDifferent, ptr(va), ptr(vb)))
		default:
			c.add(NewViewDiff(ModeEqual, ptr(va), ptr(vb)))
		}
	}
	for _, vb := range c.b.Views.Items() {
		if !c.a.Views.Contains(vb.Name()) {
			c.add(NewViewDiff(ModeRightOnly, nil, ptr(vb)))
		}
	}
}

func (c *comparison) procedures() {
	for _, pa := range c.a.Procedures.Items() {
		pb, ok := c.b.Procedures.Get(pa.Name())
		switch {
		case !ok:
			c.add(NewProcedureDiff(ModeLeftOnly, ptr(pa), nil))
		case !pa.Equals(pb):
			c.add(NewProcedureDiff(ModeDifferent, ptr(pa), ptr(pb)))
		default:
			c.add(NewProcedureDiff(ModeEqual, ptr(pa), ptr(pb)))
		}
	}
	for _, pb := range c.b.Procedures.Items() {
		if !c.a.Procedures.Contains(pb.Name()) {
			c.add(NewProcedureDiff(ModeRightOnly, nil, ptr(pb)))
		}
	}
}

func ptr[T any](v T) *T { return &v }
