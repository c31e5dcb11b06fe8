package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/skillgraph"
	"github.com/abhisek/kinderpath/internal/ui/theme"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect and publish the prerequisite graph",
}

var graphExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the learning graph",
	Long: `Export the learning graph as a table, as JSON (--json), or with
--format yaml as a prerequisites block that can be pasted into a
curriculum file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := exportOptions(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		lg := eng.GetLearningGraph(opts)
		switch format {
		case "yaml":
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(struct {
				Prerequisites []curriculum.EdgeSpec `yaml:"prerequisites"`
			}{skillgraph.ToSpecs(lg.Edges)})
		case "json":
			return printJSON(cmd, lg)
		case "", "table":
		default:
			return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
		}

		rows := make([][]string, len(lg.Edges))
		for i, e := range lg.Edges {
			status := "live"
			if e.Draft {
				status = "draft"
			}
			rows[i] = []string{e.Prerequisite.String(), e.Unlocks.String(), pct(e.Threshold), status}
		}
		if !wantJSON(cmd) {
			fmt.Fprintln(cmd.OutOrStdout(), theme.Subtitle.Render(fmt.Sprintf(
				"curriculum %s: %d nodes, %d edges",
				lg.Metadata.CurriculumVersion, lg.Metadata.NodeCount, lg.Metadata.EdgeCount)))
		}
		return render(cmd, lg, []string{"Prerequisite", "Unlocks", "Threshold", "Status"}, rows)
	},
}

var graphSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the learning graph into Neo4j",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := exportOptions(cmd)
		if err != nil {
			return err
		}

		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := eng.SyncLearningGraph(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd, res)
		}
		if res.Skipped {
			fmt.Fprintln(cmd.OutOrStdout(), theme.Warn.Render("Neo4j is not configured; nothing synced."))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme.Good.Render(fmt.Sprintf(
			"Synced %d nodes and %d edges (%d stale edges removed).", res.Nodes, res.Edges, res.Pruned)))
		return nil
	},
}

var graphValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the stored graph against the loaded curriculum",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		gr := eng.Graph()
		edges := gr.AllEdges()
		if err := skillgraph.Validate(edges); err != nil {
			return err
		}
		if err := skillgraph.CheckCatalog(edges, eng.Catalog()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme.Good.Render(fmt.Sprintf(
			"Graph OK: %d edges, %d base nodes.", len(edges), len(gr.BaseNodes()))))
		return nil
	},
}

func exportOptions(cmd *cobra.Command) (skillgraph.ExportOptions, error) {
	subject, _ := cmd.Flags().GetString("subject")
	drafts, _ := cmd.Flags().GetBool("drafts")
	typ, err := entityTypeFlag(cmd, true)
	if err != nil {
		return skillgraph.ExportOptions{}, err
	}
	return skillgraph.ExportOptions{Subject: subject, EntityType: typ, IncludeDrafts: drafts}, nil
}

func init() {
	for _, c := range []*cobra.Command{graphExportCmd, graphSyncCmd} {
		c.Flags().String("subject", "", "Limit to one subject")
		c.Flags().String("type", "", "Limit to skill or subskill nodes")
		c.Flags().Bool("drafts", false, "Include draft edges")
	}
	graphExportCmd.Flags().String("format", "table", "Output format: table, json or yaml")

	graphCmd.AddCommand(graphExportCmd, graphSyncCmd, graphValidateCmd)
}
