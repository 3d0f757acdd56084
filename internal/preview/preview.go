// Package preview lays out the forward and reverse DDL of selected diffs side
// by side, with styled spans marking what each side adds, removes or changes.
//
// DIFFERENT diffs are aligned word by word with the lcs package so that only
// the tokens that actually differ are highlighted.
package preview

import (
	"strings"

	"github.com/koustreak/schemadiff/internal/compare"
	"github.com/koustreak/schemadiff/internal/ddl"
	"github.com/koustreak/schemadiff/internal/lcs"
)

// Style marks how a span is shown.
type Style string

const (
	Plain   Style = "plain"
	Added   Style = "added"
	Removed Style = "removed"
	Changed Style = "changed"
)

// Span is a piece of text in one style.
type Span struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// Entry is the preview of one diff.
type Entry struct {
	Kind    string `json:"kind"`
	Mode    string `json:"mode"`
	Name    string `json:"name"`
	Label   string `json:"label,omitempty"`
	Forward string `json:"forward"`
	Reverse string `json:"reverse"`
	// ForwardSpans and ReverseSpans concatenate to Forward and Reverse, each
	// padded with blank lines to the line count of the other side.
	ForwardSpans []Span `json:"forward_spans"`
	ReverseSpans []Span `json:"reverse_spans"`
}

// Build previews every diff in order.
func Build(diffs []compare.Diff) []Entry {
	out := make([]Entry, 0, len(diffs))
	for _, d := range diffs {
		out = append(out, Of(d))
	}
	return out
}

// Of previews a single diff.
func Of(d compare.Diff) Entry {
	fwd := ddl.String(d, ddl.Forward)
	rev := ddl.String(d, ddl.Reverse)

	e := Entry{
		Kind:    d.Kind().String(),
		Mode:    d.Mode().String(),
		Name:    d.Name(),
		Label:   compare.Label(d),
		Forward: fwd,
		Reverse: rev,
	}

	switch d.Mode() {
	case compare.ModeDifferent:
		e.ForwardSpans, e.ReverseSpans = highlight(fwd, rev)
	case compare.ModeLeftOnly:
		e.ForwardSpans = spans(fwd, Added)
		e.ReverseSpans = spans(rev, Removed)
	case compare.ModeRightOnly:
		e.ForwardSpans = spans(fwd, Removed)
		e.ReverseSpans = spans(rev, Added)
	default:
		e.ForwardSpans = spans(fwd, Plain)
		e.ReverseSpans = spans(rev, Plain)
	}

	e.ForwardSpans, e.ReverseSpans = pad(fwd, rev, e.ForwardSpans, e.ReverseSpans)
	return e
}

// highlight aligns the words of both sides. Tokens only the forward text has
// are changed on the forward side; tokens only the reverse text has are
// changed on the reverse side.
func highlight(fwd, rev string) (f, r []Span) {
	for _, run := range lcs.Diff(lcs.Words(fwd), lcs.Words(rev)) {
		text := lcs.Glue(run.Tokens)
		switch run.Op {
		case lcs.Deleted:
			f = appendSpan(f, text, Changed)
		case lcs.Inserted:
			r = appendSpan(r, text, Changed)
		default:
			f = appendSpan(f, text, Plain)
			r = appendSpan(r, text, Plain)
		}
	}
	return f, r
}

func spans(text string, style Style) []Span {
	return appendSpan(nil, text, style)
}

// appendSpan merges text into the last span when the styles match.
func appendSpan(list []Span, text string, style Style) []Span {
	if text == "" {
		return list
	}
	if n := len(list); n > 0 && list[n-1].Style == style {
		list[n-1].Text += text
		return list
	}
	return append(list, Span{Text: text, Style: style})
}

func pad(fwd, rev string, f, r []Span) ([]Span, []Span) {
	lf, lr := strings.Count(fwd, "\n"), strings.Count(rev, "\n")
	switch {
	case lf < lr:
		f = appendSpan(f, strings.Repeat("\n", lr-lf), Plain)
	case lf > lr:
		r = appendSpan(r, strings.Repeat("\n", lf-lr), Plain)
	}
	return f, r
}

// Text joins the spans of a pane.
func Text(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
