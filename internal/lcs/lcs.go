// Package lcs computes longest-common-subsequence alignments of two token
// sequences and compresses them into runs of unchanged, inserted and deleted
// tokens.
//
// The DP table costs O(m·n) time and memory. Callers bound input sizes.
package lcs

import (
	"fmt"
	"io"
	"strings"
)

// Op tags a run of an alignment.
type Op byte

const (
	Unchanged Op = ' '
	Inserted  Op = '+'
	Deleted   Op = '-'
)

func (o Op) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Inserted:
		return "inserted"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Run is a maximal stretch of tokens sharing one Op.
type Run[T comparable] struct {
	Op     Op
	Tokens []T
}

// Table is a filled LCS table for sequences a and b.
type Table[T comparable] struct {
	a, b  []T
	cells [][]int
}

// Compute fills the LCS table of a and b. cells[i][j] holds the LCS length of
// the first i tokens of a and the first j tokens of b.
func Compute[T comparable](a, b []T) *Table[T] {
	m, n := len(a), len(b)
	cells := make([][]int, m+1)
	for i := range cells {
		cells[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				cells[i][j] = cells[i-1][j-1] + 1
			} else {
				cells[i][j] = max(cells[i-1][j], cells[i][j-1])
			}
		}
	}
	return &Table[T]{a: a, b: b, cells: cells}
}

// Len returns the length of the longest common subsequence.
func (t *Table[T]) Len() int {
	return t.cells[len(t.a)][len(t.b)]
}

type move[T comparable] struct {
	op    Op
	token T
}

// Runs backtracks from the bottom-right corner and returns the alignment as
// runs in sequence order. Equal tokens are taken as unchanged first; otherwise
// an insertion wins over a deletion whenever cells[i][j-1] >= cells[i-1][j].
func (t *Table[T]) Runs() []Run[T] {
	i, j := len(t.a), len(t.b)
	moves := make([]move[T], 0, i+j)

	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && t.a[i-1] == t.b[j-1]:
			moves = append(moves, move[T]{Unchanged, t.a[i-1]})
			i--
			j--
		case j > 0 && (i == 0 || t.cells[i][j-1] >= t.cells[i-1][j]):
			moves = append(moves, move[T]{Inserted, t.b[j-1]})
			j--
		default:
			moves = append(moves, move[T]{Deleted, t.a[i-1]})
			i--
		}
	}

	var runs []Run[T]
	for k := len(moves) - 1; k >= 0; k-- {
		mv := moves[k]
		if n := len(runs); n > 0 && runs[n-1].Op == mv.op {
			runs[n-1].Tokens = append(runs[n-1].Tokens, mv.token)
			continue
		}
		runs = append(runs, Run[T]{Op: mv.op, Tokens: []T{mv.token}})
	}
	return runs
}

// Dump writes the DP table, one row per token of a.
func (t *Table[T]) Dump(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("\t\t")
	for _, tok := range t.b {
		fmt.Fprintf(&sb, "%v\t", tok)
	}
	sb.WriteString("\n")
	for i, row := range t.cells {
		if i > 0 {
			fmt.Fprintf(&sb, "%v", t.a[i-1])
		}
		sb.WriteString("\t")
		for _, c := range row {
			fmt.Fprintf(&sb, "%d\t", c)
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Diff is Compute(a, b).Runs().
func Diff[T comparable](a, b []T) []Run[T] {
	return Compute(a, b).Runs()
}

// Side rebuilds one input from runs: Deleted selects a, Inserted selects b.
// Unchanged runs belong to both sides.
func Side[T comparable](runs []Run[T], op Op) []T {
	var out []T
	for _, r := range runs {
		if r.Op == Unchanged || r.Op == op {
			out = append(out, r.Tokens...)
		}
	}
	return out
}
