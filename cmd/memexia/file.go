package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chenxu233/memexia/internal/cli"
	memerrors "github.com/chenxu233/memexia/internal/errors"
	"github.com/chenxu233/memexia/internal/graph"
	"github.com/spf13/cobra"
)

var fileCmd = &cobra.Command{
	Use:   "file {info|links|backlinks} <path>",
	Short: "Inspect a single file-backed node",
}

func relativeToRepo(repoRoot, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(repoRoot, abs)
	if err != nil {
		return "", err
	}
	return rel, nil
}

var fileInfoCmd = &cobra.Command{
	Use:   "info <path>",
	Args:  cobra.ExactArgs(1),
	Short: "Print a node's title, type, and tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		rel, err := relativeToRepo(repo.Root(), args[0])
		if err != nil {
			return err
		}
		id := graph.FileNodeID(rel)
		node, ok, err := repo.Store().GetNode(id)
		if err != nil {
			return err
		}
		if !ok {
			return memerrors.New(memerrors.StoreFailure, memerrors.SeverityMedium, "no node for path: "+rel)
		}

		fmt.Printf("id        %s\ntitle     %s\ntype      %s\ntags      %v\nupdated   %s\n",
			node.ID, node.Title, node.NodeType, node.Tags, node.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
		return nil
	},
}

func printEdgeTable(edges []*graph.Edge) {
	rows := make([][]string, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []string{e.From, e.Relation.Lowercase(), e.To, fmt.Sprintf("%.2f", e.Strength)})
	}
	cli.Table(os.Stdout, []string{"FROM", "RELATION", "TO", "STRENGTH"}, rows)
}

var fileLinksCmd = &cobra.Command{
	Use:   "links <path>",
	Args:  cobra.ExactArgs(1),
	Short: "List outgoing edges from a file's node",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		rel, err := relativeToRepo(repo.Root(), args[0])
		if err != nil {
			return err
		}
		id := graph.FileNodeID(rel)
		edges, err := repo.Store().GetEdgesForNode(id, graph.Outgoing)
		if err != nil {
			return err
		}
		printEdgeTable(edges)
		return nil
	},
}

var fileBacklinksCmd = &cobra.Command{
	Use:   "backlinks <path>",
	Args:  cobra.ExactArgs(1),
	Short: "List incoming edges into a file's node",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		rel, err := relativeToRepo(repo.Root(), args[0])
		if err != nil {
			return err
		}
		id := graph.FileNodeID(rel)
		edges, err := repo.Store().GetEdgesForNode(id, graph.Incoming)
		if err != nil {
			return err
		}
		printEdgeTable(edges)
		return nil
	},
}

func init() {
	fileCmd.AddCommand(fileInfoCmd, fileLinksCmd, fileBacklinksCmd)
}
