package lcs

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// format renders runs as "[ abc][-d][+x][ e]".
func format(runs []Run[string]) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString("[")
		sb.WriteByte(byte(r.Op))
		sb.WriteString(Glue(r.Tokens))
		sb.WriteString("]")
	}
	return sb.String()
}

func TestDiff_Chars(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"abcde", "abcxe", "[ abc][-d][+x][ e]"},
		{"abcdefgh", "abcvwxyzgh", "[ abc][-def][+vwxyz][ gh]"},
		{"abcdefgh", "vwxyzgh", "[-abcdef][+vwxyz][ gh]"},
		{"abcdefgh", "abcvwxyz", "[ abc][-defgh][+vwxyz]"},
		{"same", "same", "[ same]"},
		{"", "abc", "[+abc]"},
		{"abc", "", "[-abc]"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, format(Diff(Chars(tt.a), Chars(tt.b))))
		})
	}
}

func TestCompute_Len(t *testing.T) {
	assert.Equal(t, 4, Compute(Chars("abcde"), Chars("abcxe")).Len())
	assert.Equal(t, 0, Compute(Chars("abc"), Chars("xyz")).Len())
	assert.Equal(t, 0, Compute[string](nil, nil).Len())
}

func TestDiff_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []int{1, 2, 3, 4}
	gen := func() []int {
		out := make([]int, rng.Intn(12))
		for i := range out {
			out[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return out
	}

	for i := 0; i < 200; i++ {
		a, b := gen(), gen()
		runs := Diff(a, b)

		assert.Equal(t, len(a) == 0 && len(b) == 0, runs == nil, "case %d", i)
		if len(a) > 0 {
			assert.Equal(t, a, Side(runs, Deleted), "case %d: %v vs %v", i, a, b)
		}
		if len(b) > 0 {
			assert.Equal(t, b, Side(runs, Inserted), "case %d: %v vs %v", i, a, b)
		}

		for k := 1; k < len(runs); k++ {
			assert.NotEqual(t, runs[k-1].Op, runs[k].Op, "adjacent runs must differ")
		}
		unchanged := 0
		for _, r := range runs {
			if r.Op == Unchanged {
				unchanged += len(r.Tokens)
			}
		}
		assert.Equal(t, Compute(a, b).Len(), unchanged, "case %d", i)
	}
}

func TestDiff_Deterministic(t *testing.T) {
	a := Words("ALTER TABLE `users` ADD COLUMN `email` varchar(255) NOT NULL;")
	b := Words("ALTER TABLE `users` DROP COLUMN `email`;")

	first := format(Diff(a, b))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, format(Diff(a, b)))
	}
}

func TestTable_Dump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Compute(Chars("ab"), Chars("b")).Dump(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "\t\tb\t", lines[0])
	assert.Equal(t, "\t0\t0\t", lines[1])
	assert.Equal(t, "a\t0\t0\t", lines[2])
	assert.Equal(t, "b\t0\t1\t", lines[3])
}

func TestTokenizers(t *testing.T) {
	assert.Equal(t, []string{"h", "é", "!"}, Chars("hé!"))

	assert.Equal(t, []string{"one", "two", "", "three"}, Lines("one\r\ntwo\n\rthree\n\n"))
	assert.Nil(t, Lines(""))

	words := Words("I am a `list`, or what?")
	assert.Equal(t,
		[]string{"I", " ", "am", " ", "a", " `", "list", "`, ", "or", " ", "what", "?"},
		words)
	assert.Equal(t, "I am a `list`, or what?", Glue(words))
}

func TestTokenizerByName(t *testing.T) {
	for _, name := range []string{"chars", "LINES", "words"} {
		tk, err := TokenizerByName(name)
		require.NoError(t, err)
		assert.NotNil(t, tk)
	}

	_, err := TokenizerByName("sentences")
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
	assert.Equal(t, []string{"chars", "lines", "words"}, TokenizerNames())
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "unchanged", Unchanged.String())
	assert.Equal(t, "inserted", Inserted.String())
	assert.Equal(t, "deleted", Deleted.String())
	assert.Equal(t, "unknown", Op('?').String())
}

func BenchmarkDiff_Words(b *testing.B) {
	left := Words(strings.Repeat("ALTER TABLE `t` ADD COLUMN `c` int NOT NULL; ", 20))
	right := Words(strings.Repeat("ALTER TABLE `t` DROP COLUMN `c`; ", 20))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Diff(left, right)
	}
}

func ExampleDiff() {
	for _, r := range Diff(Chars("abcde"), Chars("abcxe")) {
		fmt.Printf("%s %q\n", r.Op, Glue(r.Tokens))
	}
	// Output:
	// unchanged "abc"
	// deleted "d"
	// inserted "x"
	// unchanged "e"
}
