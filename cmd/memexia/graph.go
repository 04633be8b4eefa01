package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/chenxu233/memexia/internal/cli"
	"github.com/chenxu233/memexia/internal/graph"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph {show|dot|stats|query|path}",
	Short: "Inspect the live triple-store",
}

var graphShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List every node and edge",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		nodes, err := repo.Store().ListNodes()
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(nodes))
		for _, n := range nodes {
			rows = append(rows, []string{n.ID, n.NodeType.String(), n.Title})
		}
		cli.Table(os.Stdout, []string{"ID", "TYPE", "TITLE"}, rows)

		edges, err := repo.Store().ListEdges()
		if err != nil {
			return err
		}
		fmt.Printf("\n%d edge(s):\n", len(edges))
		edgeRows := make([][]string, 0, len(edges))
		for _, e := range edges {
			edgeRows = append(edgeRows, []string{e.From, e.Relation.Lowercase(), e.To})
		}
		cli.Table(os.Stdout, []string{"FROM", "RELATION", "TO"}, edgeRows)
		return nil
	},
}

var graphDotCmd = &cobra.Command{
	Use:   "dot",
	Short: "Emit a Graphviz DOT rendering of the graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		nodes, err := repo.Store().ListNodes()
		if err != nil {
			return err
		}
		edges, err := repo.Store().ListEdges()
		if err != nil {
			return err
		}

		var sb strings.Builder
		sb.WriteString("digraph memexia {\n")
		for _, n := range nodes {
			fmt.Fprintf(&sb, "  %q [label=%q];\n", n.ID, n.Title)
		}
		for _, e := range edges {
			fmt.Fprintf(&sb, "  %q -> %q [label=%q];\n", e.From, e.To, e.Relation.Lowercase())
		}
		sb.WriteString("}\n")
		fmt.Print(sb.String())
		return nil
	},
}

var graphStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print node/edge counts by type and relation",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		stats, err := repo.Store().Stats()
		if err != nil {
			return err
		}

		fmt.Printf("nodes %d, edges %d\n\n", stats.NodeCount, stats.EdgeCount)

		nodeTypeRows := make([][]string, 0, len(stats.NodeTypeCounts))
		for t, count := range stats.NodeTypeCounts {
			nodeTypeRows = append(nodeTypeRows, []string{t.String(), fmt.Sprintf("%d", count)})
		}
		sort.Slice(nodeTypeRows, func(i, j int) bool { return nodeTypeRows[i][0] < nodeTypeRows[j][0] })
		cli.Table(os.Stdout, []string{"NODE TYPE", "COUNT"}, nodeTypeRows)

		relationRows := make([][]string, 0, len(stats.RelationCounts))
		for r, count := range stats.RelationCounts {
			relationRows = append(relationRows, []string{r.String(), fmt.Sprintf("%d", count)})
		}
		sort.Slice(relationRows, func(i, j int) bool { return relationRows[i][0] < relationRows[j][0] })
		cli.Table(os.Stdout, []string{"RELATION", "COUNT"}, relationRows)
		return nil
	},
}

var graphQueryCmd = &cobra.Command{
	Use:   "query <sparql>",
	Args:  cobra.ExactArgs(1),
	Short: "Run a SPARQL SELECT query against the live graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		result, err := repo.Store().Query(args[0])
		if err != nil {
			return err
		}
		if result.Empty() {
			fmt.Println("no results")
			return nil
		}

		var vars []string
		for k := range result.Bindings[0] {
			vars = append(vars, k)
		}
		sort.Strings(vars)

		rows := make([][]string, 0, len(result.Bindings))
		for _, binding := range result.Bindings {
			row := make([]string, len(vars))
			for i, v := range vars {
				row[i] = binding[v]
			}
			rows = append(rows, row)
		}
		cli.Table(os.Stdout, vars, rows)
		return nil
	},
}

var graphPathCmd = &cobra.Command{
	Use:   "path <source> <target>",
	Args:  cobra.ExactArgs(2),
	Short: "Find the shortest path between two nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		source, err := resolveNodeRef(repo.Root(), args[0])
		if err != nil {
			return err
		}
		target, err := resolveNodeRef(repo.Root(), args[1])
		if err != nil {
			return err
		}

		path, found, err := repo.Store().FindPath(source, target)
		if err != nil {
			return err
		}
		if !found {
			fmt.Println("no path found")
			return nil
		}
		fmt.Println(strings.Join(path, " -> "))
		return nil
	},
}

var graphNodeCmd = &cobra.Command{
	Use:   "node {create}",
	Short: "Manage synthetic (non-file-backed) nodes",
}

var graphNodeCreateType string

var graphNodeCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Args:  cobra.ExactArgs(1),
	Short: "Create a synthetic node, id'd urn:memexia:generated:<uuid>",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		id := graph.GeneratedNodeID(uuid.NewString())
		node := graph.NewNode(id, graph.ParseNodeType(graphNodeCreateType), args[0])
		if err := repo.Store().AddNode(node); err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

func init() {
	graphNodeCreateCmd.Flags().StringVar(&graphNodeCreateType, "type", "concept", "node type (concept/question/evidence/resource/person/event/meta)")
	graphNodeCmd.AddCommand(graphNodeCreateCmd)
	graphCmd.AddCommand(graphShowCmd, graphDotCmd, graphStatsCmd, graphQueryCmd, graphPathCmd, graphNodeCmd)
}
