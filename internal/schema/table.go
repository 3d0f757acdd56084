package schema

// TableInfo describes a base table. The create statement is kept for
// rendering but does not take part in equality.
type TableInfo struct {
	name            string
	createStatement string
	engine          string
	charset         string
	collation       string
}

// NewTableInfo builds a TableInfo from already-parsed table options.
func NewTableInfo(name, createStatement, engine, charset, collation string) TableInfo {
	return TableInfo{
		name:            name,
		createStatement: createStatement,
		engine:          engine,
		charset:         charset,
		collation:       collation,
	}
}

func (t TableInfo) Name() string            { return t.name }
func (t TableInfo) CreateStatement() string { return t.createStatement }
func (t TableInfo) Engine() string          { return t.engine }
func (t TableInfo) Charset() string         { return t.charset }
func (t TableInfo) Collation() string       { return t.collation }

// Equals compares name and table options.
func (t TableInfo) Equals(o TableInfo) bool {
	return t.name == o.name &&
		t.engine == o.engine &&
		t.charset == o.charset &&
		t.collation == o.collation
}

// ViewInfo describes a view by its create statement.
type ViewInfo struct {
	name            string
	createStatement string
}

// NewViewInfo builds a view from its SHOW CREATE VIEW text.
func NewViewInfo(name, createStatement string) ViewInfo {
	return ViewInfo{name: name, createStatement: createStatement}
}

func (v ViewInfo) Name() string            { return v.name }
func (v ViewInfo) CreateStatement() string { return v.createStatement }

// Equals compares name and create statement exactly.
func (v ViewInfo) Equals(o ViewInfo) bool {
	return v.name == o.name && v.createStatement == o.createStatement
}
