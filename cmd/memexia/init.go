package main

import (
	"fmt"
	"path/filepath"

	"github.com/chenxu233/memexia/internal/repository"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Create a new repository at path",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		repo, err := repository.Init(abs, filepath.Base(abs))
		if err != nil {
			return err
		}
		defer repo.Close()

		fmt.Printf("Initialized empty Memexia repository at %s\n", repo.Root())
		return nil
	},
}
