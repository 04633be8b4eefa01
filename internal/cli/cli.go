// Package cli holds output formatting and exit-code helpers shared by
// every cmd/memexia subcommand.
package cli

import (
	"fmt"
	"io"

	memerrors "github.com/chenxu233/memexia/internal/errors"
)

// ExitCode maps an error's Kind to a process exit status. Kinds that
// indicate a user-facing condition (not a repository, already exists,
// nothing to commit) exit 1; every other Kind exits 2. An error that
// carries no Kind exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	kind, ok := memerrors.GetKind(err)
	if !ok {
		return 1
	}
	switch kind {
	case memerrors.NotARepository, memerrors.AlreadyExists, memerrors.NothingToCommit:
		return 1
	default:
		return 2
	}
}

// PrintError writes err to w in the CLI's standard one-line form.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
}

// Table renders rows of equal-length string slices as a simple
// space-padded table with a header.
func Table(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		for i, cell := range cells {
			fmt.Fprintf(w, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(w)
	}

	printRow(header)
	for _, row := range rows {
		printRow(row)
	}
}
