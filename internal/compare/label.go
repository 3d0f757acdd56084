package compare

import "fmt"

// Label returns the one-line description of a diff used by list views, or ""
// for modes that are not listed (EQUAL, CHILDREN_DIFFER).
//
//	TABLE `users` only exists in A
//	FIELD `users`.`email` differs in collation only
//	KEY   `users`.`idx_email` differs in A and B
func Label(d Diff) string {
	var subject string
	switch v := d.(type) {
	case *TableDiff:
		subject = "TABLE `" + v.Name() + "`"
	case *ViewDiff:
		subject = "VIEW  `" + v.Name() + "`"
	case *FieldDiff:
		subject = "FIELD `" + v.Table() + "`.`" + v.Name() + "`"
	case *KeyDiff:
		subject = "KEY   `" + v.Table() + "`.`" + v.Name() + "`"
	case *ProcedureDiff:
		subject = "PROC  `" + v.Name() + "`"
	default:
		panic(fmt.Sprintf("compare: unknown diff type %T", d))
	}

	switch d.Mode() {
	case ModeLeftOnly:
		return subject + " only exists in A"
	case ModeRightOnly:
		return subject + " only exists in B"
	case ModeDifferent:
		if f, ok := d.(*FieldDiff); ok && f.SimpleEqual && f.TypeEqual {
			return subject + " differs in collation only"
		}
		return subject + " differs in A and B"
	default:
		return ""
	}
}
