package compare

import "github.com/koustreak/schemadiff/internal/schema"

// Kind is the schema object category of a Diff.
type Kind int

const (
	KindTable Kind = iota
	KindView
	KindField
	KindKey
	KindProcedure
)

func (k Kind) String() string {
	switch k {
	case KindTable:
		return "TABLE"
	case KindView:
		return "VIEW"
	case KindField:
		return "FIELD"
	case KindKey:
		return "KEY"
	case KindProcedure:
		return "PROCEDURE"
	default:
		return "UNKNOWN"
	}
}

// Mode classifies one Diff.
type Mode int

const (
	ModeEqual Mode = iota
	// ModeChildrenDiffer marks a table whose own options may match but at
	// least one field or key below it differs.
	ModeChildrenDiffer
	ModeLeftOnly
	ModeRightOnly
	ModeDifferent
)

func (m Mode) String() string {
	switch m {
	case ModeEqual:
		return "EQUAL"
	case ModeChildrenDiffer:
		return "CHILDREN_DIFFER"
	case ModeLeftOnly:
		return "LEFT_ONLY"
	case ModeRightOnly:
		return "RIGHT_ONLY"
	case ModeDifferent:
		return "DIFFERENT"
	default:
		return "UNKNOWN"
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, bool) {
	for m := ModeEqual; m <= ModeDifferent; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// Diff is one comparison record. The set of implementations is closed:
// *TableDiff, *ViewDiff, *FieldDiff, *KeyDiff and *ProcedureDiff.
//
// LEFT_ONLY diffs carry only the A side, RIGHT_ONLY only the B side, every
// other mode carries both.
type Diff interface {
	Kind() Kind
	Mode() Mode
	// Name is the object name, taken from A when present.
	Name() string

	diff()
}

type TableDiff struct {
	mode Mode
	A, B *schema.TableInfo
}

type ViewDiff struct {
	mode Mode
	A, B *schema.ViewInfo
}

// FieldDiff also carries the individual equality facets of the two columns.
// They are all false unless both sides are present.
type FieldDiff struct {
	mode Mode
	A, B *schema.FieldInfo

	TypeEqual      bool
	CollationEqual bool
	SimpleEqual    bool
}

type KeyDiff struct {
	mode Mode
	A, B *schema.KeyInfo
}

type ProcedureDiff struct {
	mode Mode
	A, B *schema.ProcedureInfo
}

func NewTableDiff(mode Mode, a, b *schema.TableInfo) *TableDiff {
	return &TableDiff{mode: mode, A: a, B: b}
}

func NewViewDiff(mode Mode, a, b *schema.ViewInfo) *ViewDiff {
	return &ViewDiff{mode: mode, A: a, B: b}
}

// NewFieldDiff fills the facet flags when both columns are given.
func NewFieldDiff(mode Mode, a, b *schema.FieldInfo) *FieldDiff {
	d := &FieldDiff{mode: mode, A: a, B: b}
	if a != nil && b != nil {
		d.TypeEqual = a.TypeEquals(*b)
		d.CollationEqual = a.CollationEquals(*b)
		d.SimpleEqual = a.SimpleEquals(*b)
	}
	return d
}

func NewKeyDiff(mode Mode, a, b *schema.KeyInfo) *KeyDiff {
	return &KeyDiff{mode: mode, A: a, B: b}
}

func NewProcedureDiff(mode Mode, a, b *schema.ProcedureInfo) *ProcedureDiff {
	return &ProcedureDiff{mode: mode, A: a, B: b}
}

func (d *TableDiff) Kind() Kind     { return KindTable }
func (d *ViewDiff) Kind() Kind      { return KindView }
func (d *FieldDiff) Kind() Kind     { return KindField }
func (d *KeyDiff) Kind() Kind       { return KindKey }
func (d *ProcedureDiff) Kind() Kind { return KindProcedure }

func (d *TableDiff) Mode() Mode     { return d.mode }
func (d *ViewDiff) Mode() Mode      { return d.mode }
func (d *FieldDiff) Mode() Mode     { return d.mode }
func (d *KeyDiff) Mode() Mode       { return d.mode }
func (d *ProcedureDiff) Mode() Mode { return d.mode }

func (d *TableDiff) Name() string     { return pick(d.A, d.B).Name() }
func (d *ViewDiff) Name() string      { return pick(d.A, d.B).Name() }
func (d *FieldDiff) Name() string     { return pick(d.A, d.B).Name() }
func (d *KeyDiff) Name() string       { return pick(d.A, d.B).Name() }
func (d *ProcedureDiff) Name() string { return pick(d.A, d.B).Name() }

// Table returns the owning table of the column.
func (d *FieldDiff) Table() string { return pick(d.A, d.B).Table() }

// Table returns the owning table of the key.
func (d *KeyDiff) Table() string { return pick(d.A, d.B).Table() }

func (*TableDiff) diff()     {}
func (*ViewDiff) diff()      {}
func (*FieldDiff) diff()     {}
func (*KeyDiff) diff()       {}
func (*ProcedureDiff) diff() {}

func pick[T any](a, b *T) *T {
	if a != nil {
		return a
	}
	return b
}
