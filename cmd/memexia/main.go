// Command memexia is the CLI collaborator described in spec.md §6: a
// thin cobra front end over internal/repository's Repository API.
package main

import (
	"fmt"
	"os"

	"github.com/chenxu233/memexia/internal/cli"
	"github.com/chenxu233/memexia/internal/config"
	"github.com/chenxu233/memexia/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Version is set via -ldflags at release build time.
	Version = "dev"

	cfgFile string
	verbose bool
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:     "memexia",
	Short:   "A local, single-user knowledge-graph engine for Markdown notes",
	Long:    `Memexia parses Markdown notes linked by [[wiki-links]] into a versioned RDF graph, tracked alongside its own file history.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			cfg = config.Default()
		}

		level := logging.INFO
		if verbose {
			level = logging.DEBUG
		}
		logCfg := logging.DefaultConfig(verbose)
		logCfg.Level = level
		logCfg.OutputFile = cfg.LogFile
		logCfg.JSONFormat = cfg.JSONLogs
		_ = logging.Initialize(logCfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .memexia/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(fmt.Sprintf("memexia %s\n", Version))

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(amendCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(graphCmd)
}
