package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var commitMessage string

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Run the six-step commit protocol over the staged index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		result, err := repo.Commit(commitMessage, resolveAuthor(repo))
		if err != nil {
			return err
		}

		fmt.Printf("commit %s\ngraph  %s\nfiles %d, nodes %d, edges %d\n",
			result.CommitID, result.GraphHash, result.FilesCommitted, result.NodesWritten, result.EdgesWritten)
		return nil
	},
}

func init() {
	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message")
	commitCmd.MarkFlagRequired("message")
}
