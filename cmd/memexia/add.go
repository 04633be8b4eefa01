package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <paths...>",
	Short: "Stage notes for the next commit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		if err := repo.Add(args); err != nil {
			return err
		}
		fmt.Printf("staged %d path(s)\n", len(args))
		return nil
	},
}
