package ddl

import "strings"

// LineWriter receives rendered DDL.
type LineWriter interface {
	Print(s string)
	Println(s string)
}

// Buffer is an in-memory LineWriter.
type Buffer struct {
	sb strings.Builder
}

func (b *Buffer) Print(s string) { b.sb.WriteString(s) }

func (b *Buffer) Println(s string) {
	b.sb.WriteString(s)
	b.sb.WriteByte('\n')
}

func (b *Buffer) String() string { return b.sb.String() }
func (b *Buffer) Len() int       { return b.sb.Len() }
func (b *Buffer) Reset()         { b.sb.Reset() }

// Lines splits the buffered text into non-empty lines.
func (b *Buffer) Lines() []string {
	var out []string
	for _, line := range strings.Split(b.sb.String(), "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
