package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var amendMessage string

var amendCmd = &cobra.Command{
	Use:   "amend",
	Short: "Re-snapshot the graph and amend the previous commit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		result, err := repo.Amend(amendMessage, resolveAuthor(repo))
		if err != nil {
			return err
		}

		fmt.Printf("amended commit %s\ngraph  %s\n", result.CommitID, result.GraphHash)
		return nil
	},
}

func init() {
	amendCmd.Flags().StringVarP(&amendMessage, "message", "m", "", "amended commit message")
	amendCmd.MarkFlagRequired("message")
}
