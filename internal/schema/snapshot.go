package schema

import "strings"

// Snapshot is the fully materialized structure of one database: one Index
// per category plus the fields and keys of every table.
type Snapshot struct {
	Database   string
	Tables     *Index[TableInfo]
	Views      *Index[ViewInfo]
	Procedures *Index[ProcedureInfo]

	fields map[string]*Index[FieldInfo]
	keys   map[string]*Index[KeyInfo]
}

// NewSnapshot returns an empty snapshot for the named database.
func NewSnapshot(database string) *Snapshot {
	return &Snapshot{
		Database:   database,
		Tables:     NewIndex[TableInfo](),
		Views:      NewIndex[ViewInfo](),
		Procedures: NewIndex[ProcedureInfo](),
		fields:     make(map[string]*Index[FieldInfo]),
		keys:       make(map[string]*Index[KeyInfo]),
	}
}

// AddTable registers a table together with its columns (in ordinal order)
// and its keys.
func (s *Snapshot) AddTable(t TableInfo, fields []FieldInfo, keys []KeyInfo) {
	s.Tables.Add(t)
	s.fields[strings.ToLower(t.Name())] = NewIndex(fields...)
	s.keys[strings.ToLower(t.Name())] = NewIndex(keys...)
}

func (s *Snapshot) AddView(v ViewInfo) {
	s.Views.Add(v)
}

func (s *Snapshot) AddProcedure(p ProcedureInfo) {
	s.Procedures.Add(p)
}

// Fields returns the column index of table. Unknown tables yield an empty index.
func (s *Snapshot) Fields(table string) *Index[FieldInfo] {
	if idx, ok := s.fields[strings.ToLower(table)]; ok {
		return idx
	}
	return NewIndex[FieldInfo]()
}

// Keys returns the key index of table. Unknown tables yield an empty index.
func (s *Snapshot) Keys(table string) *Index[KeyInfo] {
	if idx, ok := s.keys[strings.ToLower(table)]; ok {
		return idx
	}
	return NewIndex[KeyInfo]()
}
