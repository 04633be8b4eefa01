package main

import (
	"fmt"

	"github.com/chenxu233/memexia/internal/indexer"
	"github.com/spf13/cobra"
)

var reindexFull bool

var reindexCmd = &cobra.Command{
	Use:   "reindex [path]",
	Short: "Re-run the indexer over the tree, repairing dangling edges",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		root := repo.Root()
		if len(args) == 1 {
			root = args[0]
		}

		idx := indexer.New(repo.Store(), repo.Root())

		var summary *indexer.IndexSummary
		if reindexFull {
			summary, err = idx.ReindexAll(root)
		} else {
			summary, err = idx.IndexAll(root)
		}
		if err != nil {
			return err
		}

		fmt.Printf("indexed %d, skipped %d, deleted %d, nodes %d, edges %d\n",
			summary.FilesIndexed, summary.FilesSkipped, summary.FilesDeleted, summary.NodesCreated, summary.EdgesCreated)
		for _, e := range summary.Errors {
			fmt.Printf("error: %s: %s\n", e.Path, e.Error)
		}
		if len(summary.Errors) > 0 {
			return fmt.Errorf("reindex completed with %d error(s)", len(summary.Errors))
		}
		return nil
	},
}

func init() {
	reindexCmd.Flags().BoolVar(&reindexFull, "full", false, "delete every file-backed node before reindexing")
}
