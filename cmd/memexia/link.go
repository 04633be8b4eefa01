package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chenxu233/memexia/internal/cli"
	"github.com/chenxu233/memexia/internal/graph"
	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link {create|delete|query} ...",
	Short: "Create, delete, or query edges directly",
}

// resolveNodeRef accepts either a full IRI (urn:memexia:...) or a
// repository-relative file path, returning the node IRI.
func resolveNodeRef(repoRoot, ref string) (string, error) {
	if strings.HasPrefix(ref, "urn:memexia:") {
		return ref, nil
	}
	rel, err := relativeToRepo(repoRoot, ref)
	if err != nil {
		return "", err
	}
	return graph.FileNodeID(rel), nil
}

var (
	linkRelation    string
	linkStrength    float64
	linkConfidence  float64
	linkDescription string
)

var linkCreateCmd = &cobra.Command{
	Use:   "create <from> <to>",
	Args:  cobra.ExactArgs(2),
	Short: "Create an edge between two nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		from, err := resolveNodeRef(repo.Root(), args[0])
		if err != nil {
			return err
		}
		to, err := resolveNodeRef(repo.Root(), args[1])
		if err != nil {
			return err
		}

		edge := &graph.Edge{
			ID:          graph.EdgeID(from, to),
			From:        from,
			To:          to,
			Relation:    graph.ParseRelationType(linkRelation),
			Strength:    linkStrength,
			Confidence:  linkConfidence,
			Description: linkDescription,
			Source:      graph.Explicit,
		}
		if err := repo.Store().AddEdge(edge); err != nil {
			return err
		}
		fmt.Println(edge.ID)
		return nil
	},
}

var linkDeleteCmd = &cobra.Command{
	Use:   "delete <edge-id>",
	Args:  cobra.ExactArgs(1),
	Short: "Delete an edge by id",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()
		return repo.Store().DeleteEdge(args[0])
	},
}

var (
	linkQueryFrom        string
	linkQueryTo          string
	linkQueryRelation    string
	linkQueryMinStrength float64
)

var linkQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List edges matching an optional filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		filter := graph.EdgeFilter{MinStrength: linkQueryMinStrength}
		if linkQueryFrom != "" {
			filter.From, err = resolveNodeRef(repo.Root(), linkQueryFrom)
			if err != nil {
				return err
			}
		}
		if linkQueryTo != "" {
			filter.To, err = resolveNodeRef(repo.Root(), linkQueryTo)
			if err != nil {
				return err
			}
		}
		if linkQueryRelation != "" {
			filter.HasRelation = true
			filter.Relation = graph.ParseRelationType(linkQueryRelation)
		}

		edges, err := repo.Store().QueryEdges(filter)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(edges))
		for _, e := range edges {
			rows = append(rows, []string{e.ID, e.From, e.Relation.Lowercase(), e.To, fmt.Sprintf("%.2f", e.Strength)})
		}
		cli.Table(os.Stdout, []string{"ID", "FROM", "RELATION", "TO", "STRENGTH"}, rows)
		return nil
	},
}

func init() {
	linkCreateCmd.Flags().StringVar(&linkRelation, "relation", "related_to", "edge relation type")
	linkCreateCmd.Flags().Float64Var(&linkStrength, "strength", 1.0, "edge strength [0,1]")
	linkCreateCmd.Flags().Float64Var(&linkConfidence, "confidence", 1.0, "edge confidence [0,1]")
	linkCreateCmd.Flags().StringVar(&linkDescription, "description", "", "edge description")

	linkQueryCmd.Flags().StringVar(&linkQueryFrom, "from", "", "filter by source node")
	linkQueryCmd.Flags().StringVar(&linkQueryTo, "to", "", "filter by target node")
	linkQueryCmd.Flags().StringVar(&linkQueryRelation, "relation", "", "filter by relation type")
	linkQueryCmd.Flags().Float64Var(&linkQueryMinStrength, "min-strength", 0, "filter by minimum strength")

	linkCmd.AddCommand(linkCreateCmd, linkDeleteCmd, linkQueryCmd)
}
