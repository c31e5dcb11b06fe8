package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/skillgraph"
	"github.com/abhisek/kinderpath/internal/ui/theme"
)

var curriculumCmd = &cobra.Command{
	Use:   "curriculum",
	Short: "Validate, import and browse curricula",
}

var curriculumValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a curriculum file and its prerequisites without importing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, f, err := curriculum.Load(args[0])
		if err != nil {
			return err
		}
		edges := skillgraph.FromSpecs(f.Prerequisites)
		if err := skillgraph.CheckCatalog(edges, cat); err != nil {
			return err
		}
		gr, err := skillgraph.New(edges)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme.Good.Render(fmt.Sprintf(
			"Curriculum %s OK: %d subjects, %d edges, %d base nodes.",
			cat.Version(), len(cat.Subjects()), len(gr.AllEdges()), len(gr.BaseNodes()))))
		return nil
	},
}

var curriculumImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the curriculum and prerequisite graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		cat, err := eng.ReloadFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme.Good.Render(fmt.Sprintf(
			"Imported curriculum %s with %d edges.", cat.Version(), len(eng.Graph().AllEdges()))))
		return nil
	},
}

type subskillRow struct {
	Subject     string                     `json:"subject"`
	Unit        string                     `json:"unit"`
	Skill       string                     `json:"skill"`
	Subskill    string                     `json:"subskill"`
	Description string                     `json:"description"`
	Difficulty  curriculum.DifficultyRange `json:"difficulty"`
}

var curriculumShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List the subskills of the loaded curriculum",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")

		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		cat := eng.Catalog()
		subjects := cat.SubjectIDs()
		if subject != "" {
			if _, ok := cat.Subject(subject); !ok {
				return fmt.Errorf("unknown subject %q", subject)
			}
			subjects = []string{subject}
		}

		var items []subskillRow
		var rows [][]string
		for _, subj := range subjects {
			for _, ss := range cat.SubskillsOfSubject(subj) {
				item := subskillRow{
					Subject:     subj,
					Unit:        ss.UnitID,
					Skill:       ss.SkillID,
					Subskill:    ss.ID,
					Description: ss.Description,
					Difficulty:  ss.Difficulty,
				}
				items = append(items, item)
				rows = append(rows, []string{
					subj, ss.UnitID, ss.SkillID, ss.ID, ss.Description,
					fmt.Sprintf("%.1f-%.1f (%.1f)", ss.Difficulty.Start, ss.Difficulty.End, ss.Difficulty.Target),
				})
			}
		}
		return render(cmd, items, []string{"Subject", "Unit", "Skill", "Subskill", "Description", "Difficulty"}, rows)
	},
}

func init() {
	curriculumShowCmd.Flags().String("subject", "", "Limit to one subject")
	curriculumCmd.AddCommand(curriculumValidateCmd, curriculumImportCmd, curriculumShowCmd)
}
