package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/lcs"
	"github.com/spf13/cobra"
)

type textDiffOptions struct {
	tokenizer string
	table     bool
}

func newTextDiffCmd(_ *app) *cobra.Command {
	var opts textDiffOptions
	cmd := &cobra.Command{
		Use:   "textdiff FILE_A FILE_B",
		Short: "Show the LCS alignment of two text files",
		Long: "Align two files token by token. Deleted runs print as [-text-], inserted\n" +
			"runs as {+text+}.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readText(args[0])
			if err != nil {
				return err
			}
			b, err := readText(args[1])
			if err != nil {
				return err
			}
			return runTextDiff(cmd.OutOrStdout(), a, b, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.tokenizer, "tokenizer", "t", "words",
		"token unit: "+strings.Join(lcs.TokenizerNames(), ", "))
	cmd.Flags().BoolVar(&opts.table, "table", false, "also dump the LCS table")
	return cmd
}

func readText(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errs.Wrap(errs.ErrKindInvalidInput, "read stdin", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errs.Wrap(errs.ErrKindNotFound, "read "+path, err)
		}
		return "", errs.Wrap(errs.ErrKindPermissionDenied, "read "+path, err)
	}
	return string(data), nil
}

func runTextDiff(out io.Writer, a, b string, opts textDiffOptions) error {
	tokenize, err := lcs.TokenizerByName(opts.tokenizer)
	if err != nil {
		return err
	}
	ta, tb := tokenize(a), tokenize(b)
	table := lcs.Compute(ta, tb)

	// Lines lose their separators when tokenized.
	lines := strings.EqualFold(opts.tokenizer, "lines")

	var sb strings.Builder
	for _, run := range table.Runs() {
		text := lcs.Glue(run.Tokens)
		if lines {
			text = strings.Join(run.Tokens, "\n") + "\n"
		}
		switch run.Op {
		case lcs.Deleted:
			sb.WriteString("[-" + text + "-]")
		case lcs.Inserted:
			sb.WriteString("{+" + text + "+}")
		default:
			sb.WriteString(text)
		}
	}
	if _, err := io.WriteString(out, sb.String()); err != nil {
		return err
	}
	if !strings.HasSuffix(sb.String(), "\n") {
		fmt.Fprintln(out)
	}

	if opts.table {
		fmt.Fprintf(out, "\nLCS length %d\n", table.Len())
		return table.Dump(out)
	}
	return nil
}
