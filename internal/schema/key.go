package schema

import (
	"strconv"
	"strings"
)

// PrimaryKeyName is the name MySQL reports for a table's primary key.
const PrimaryKeyName = "PRIMARY"

// KeyField is one column of an index. Length is the prefix length, 0 if the
// whole column is indexed.
type KeyField struct {
	Name   string
	Length int
}

func (kf KeyField) String() string {
	if kf.Length > 0 {
		return "`" + kf.Name + "` (" + strconv.Itoa(kf.Length) + ")"
	}
	return "`" + kf.Name + "`"
}

// KeyInfo describes an index of a table.
type KeyInfo struct {
	table  string
	name   string
	unique bool
	fields []KeyField
}

// NewKeyInfo builds a key. fields keeps its order for rendering.
func NewKeyInfo(table, name string, unique bool, fields ...KeyField) KeyInfo {
	fs := make([]KeyField, len(fields))
	copy(fs, fields)
	return KeyInfo{table: table, name: name, unique: unique, fields: fs}
}

func (k KeyInfo) Table() string { return k.table }
func (k KeyInfo) Name() string  { return k.name }
func (k KeyInfo) Unique() bool  { return k.unique }

// IsPrimary reports whether this is the table's primary key.
func (k KeyInfo) IsPrimary() bool { return k.name == PrimaryKeyName }

// Fields returns a copy of the key columns in declared order.
func (k KeyInfo) Fields() []KeyField {
	out := make([]KeyField, len(k.fields))
	copy(out, k.fields)
	return out
}

// Equals compares name (exact or case-insensitive), uniqueness and the key
// columns as a set: same count and every column of k present in o.
// Column order does not matter.
func (k KeyInfo) Equals(o KeyInfo) bool {
	if k.name != o.name && !strings.EqualFold(k.name, o.name) {
		return false
	}
	if k.unique != o.unique {
		return false
	}
	if len(k.fields) != len(o.fields) {
		return false
	}

	other := make(map[KeyField]struct{}, len(o.fields))
	for _, f := range o.fields {
		other[f] = struct{}{}
	}
	common := make(map[KeyField]struct{}, len(k.fields))
	for _, f := range k.fields {
		if _, ok := other[f]; ok {
			common[f] = struct{}{}
		}
	}
	return len(common) == len(k.fields)
}
