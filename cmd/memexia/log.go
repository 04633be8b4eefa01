package main

import (
	"fmt"

	"github.com/chenxu233/memexia/internal/cli"
	"github.com/spf13/cobra"
)

var (
	logLimit   int
	logOneline bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show commit history with resolved graph-snapshot hashes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		entries, err := repo.Log(logLimit)
		if err != nil {
			return err
		}

		if logOneline {
			for _, e := range entries {
				fmt.Printf("%s %s\n", e.Commit.ToShort(), e.GraphHash)
			}
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.Commit.ToShort(), e.Commit.Author, e.GraphHash})
		}
		cli.Table(cmd.OutOrStdout(), []string{"COMMIT", "AUTHOR", "GRAPH"}, rows)
		return nil
	},
}

func init() {
	logCmd.Flags().IntVar(&logLimit, "limit", 20, "maximum number of commits to show")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "condensed one-line-per-commit output")
}
