package schema

import (
	"regexp"
	"strings"
)

// Routine kinds as reported by information_schema.routines.
const (
	RoutineProcedure = "PROCEDURE"
	RoutineFunction  = "FUNCTION"
)

var (
	definerPattern    = regexp.MustCompile("DEFINER\\s*=\\s*`?[^`]+`?@`?[^`]+`?\\s*")
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ProcedureInfo is a stored procedure or function. The DEFINER clause is
// removed from the create statement on construction.
type ProcedureInfo struct {
	name            string
	kind            string
	createStatement string
	normalized      string
}

func NewProcedureInfo(name, kind, createStatement string) ProcedureInfo {
	stmt := definerPattern.ReplaceAllString(createStatement, "")
	return ProcedureInfo{
		name:            name,
		kind:            kind,
		createStatement: stmt,
		normalized:      strings.ToLower(whitespacePattern.ReplaceAllString(stmt, " ")),
	}
}

func (p ProcedureInfo) Name() string            { return p.name }
func (p ProcedureInfo) Kind() string            { return p.kind }
func (p ProcedureInfo) CreateStatement() string { return p.createStatement }

// Equals compares name, kind and the create statement with whitespace runs
// collapsed and case folded.
func (p ProcedureInfo) Equals(o ProcedureInfo) bool {
	return p.name == o.name && p.kind == o.kind && p.normalized == o.normalized
}
