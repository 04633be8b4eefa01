package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List currently staged paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		staged, err := repo.Status()
		if err != nil {
			return err
		}
		if len(staged) == 0 {
			fmt.Println("nothing staged")
			return nil
		}
		for _, path := range staged {
			fmt.Println(path)
		}
		return nil
	},
}
