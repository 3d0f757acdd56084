package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/koustreak/schemadiff/internal/errs"
)

// typePattern picks the first alphabetic run as the type name and an
// immediately following "(digits)" as its length. "int(11) unsigned" decodes
// to int/11; "decimal(10,2)" decodes to decimal with no length.
var typePattern = regexp.MustCompile(`(?i)([a-z]+)(\((\d+)\))?`)

// GenerationKind tells whether a column is generated and how it is stored.
type GenerationKind int

const (
	GenerationNone GenerationKind = iota
	GenerationStored
	GenerationVirtual
)

func (k GenerationKind) String() string {
	switch k {
	case GenerationStored:
		return "STORED"
	case GenerationVirtual:
		return "VIRTUAL"
	default:
		return "NONE"
	}
}

// ParseGenerationKind reads the kind from an information_schema EXTRA value
// ("STORED GENERATED", "VIRTUAL GENERATED") or a bare kind name.
func ParseGenerationKind(s string) GenerationKind {
	u := strings.ToUpper(s)
	switch {
	case strings.Contains(u, "STORED"):
		return GenerationStored
	case strings.Contains(u, "VIRTUAL"):
		return GenerationVirtual
	default:
		return GenerationNone
	}
}

// Generation is the metadata of a generated column.
type Generation struct {
	Kind           GenerationKind
	Expression     string
	BacksUniqueKey bool
}

// FieldSpec carries the raw column attributes handed to NewFieldInfo.
type FieldSpec struct {
	Table         string
	Name          string
	Previous      string // name of the preceding column, "" for the first one
	Type          string // raw column type, e.g. "varchar(255)"
	Collation     string
	Nullable      bool
	Default       *string
	AutoIncrement bool
	Generated     Generation
}

// FieldInfo is one table column. It is immutable once built.
type FieldInfo struct {
	table         string
	name          string
	previous      string
	typeName      string
	length        int
	hasLength     bool
	collation     string
	nullable      bool
	def           *string
	autoIncrement bool
	generated     Generation
}

// NewFieldInfo decodes spec.Type and builds the field. A type string with no
// alphabetic type name fails with errs.ErrKindUnparseableType.
func NewFieldInfo(spec FieldSpec) (FieldInfo, error) {
	typeName, length, hasLength, err := DecodeType(spec.Type)
	if err != nil {
		return FieldInfo{}, err
	}

	var def *string
	if spec.Default != nil {
		v := *spec.Default
		def = &v
	}

	return FieldInfo{
		table:         spec.Table,
		name:          spec.Name,
		previous:      spec.Previous,
		typeName:      typeName,
		length:        length,
		hasLength:     hasLength,
		collation:     spec.Collation,
		nullable:      spec.Nullable,
		def:           def,
		autoIncrement: spec.AutoIncrement,
		generated:     spec.Generated,
	}, nil
}

// DecodeType splits a column type string into a lower-cased type name and an
// optional length.
func DecodeType(raw string) (name string, length int, hasLength bool, err error) {
	m := typePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", 0, false, errs.Newf(errs.ErrKindUnparseableType, "could not decode type string %q", raw)
	}
	name = strings.ToLower(m[1])
	if m[3] == "" {
		return name, 0, false, nil
	}
	length, convErr := strconv.Atoi(m[3])
	if convErr != nil {
		return "", 0, false, errs.Wrap(errs.ErrKindUnparseableType,
			"could not decode type string "+strconv.Quote(raw), convErr)
	}
	return name, length, true, nil
}

func (f FieldInfo) Table() string         { return f.table }
func (f FieldInfo) Name() string          { return f.name }
func (f FieldInfo) Previous() string      { return f.previous }
func (f FieldInfo) Type() string          { return f.typeName }
func (f FieldInfo) Length() (int, bool)   { return f.length, f.hasLength }
func (f FieldInfo) Collation() string     { return f.collation }
func (f FieldInfo) Nullable() bool        { return f.nullable }
func (f FieldInfo) AutoIncrement() bool   { return f.autoIncrement }
func (f FieldInfo) Generated() Generation { return f.generated }
func (f FieldInfo) IsFirst() bool         { return f.previous == "" }

// Default returns the default value and whether one is set.
func (f FieldInfo) Default() (string, bool) {
	if f.def == nil {
		return "", false
	}
	return *f.def, true
}

// TypeEquals compares type name and length.
func (f FieldInfo) TypeEquals(o FieldInfo) bool {
	return f.typeName == o.typeName &&
		f.hasLength == o.hasLength &&
		f.length == o.length
}

// CollationEquals compares the column collations.
func (f FieldInfo) CollationEquals(o FieldInfo) bool {
	return f.collation == o.collation
}

// SimpleEquals compares name (exact or case-insensitive), nullability and
// default value.
func (f FieldInfo) SimpleEquals(o FieldInfo) bool {
	if f.name != o.name && !strings.EqualFold(f.name, o.name) {
		return false
	}
	if f.nullable != o.nullable {
		return false
	}
	return equalDefaults(f.def, o.def)
}

// Equals is TypeEquals, CollationEquals and SimpleEquals combined.
func (f FieldInfo) Equals(o FieldInfo) bool {
	return f.CollationEquals(o) && f.TypeEquals(o) && f.SimpleEquals(o)
}

func equalDefaults(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
