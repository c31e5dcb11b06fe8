package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/ui/theme"
)

var unlockedCmd = &cobra.Command{
	Use:   "unlocked <student>",
	Short: "List the entities whose prerequisites a student has met",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		typ, err := entityTypeFlag(cmd, true)
		if err != nil {
			return err
		}

		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		refs, err := eng.GetUnlockedEntities(cmd.Context(), args[0], typ, subject)
		if err != nil {
			return err
		}

		cat := eng.Catalog()
		rows := make([][]string, len(refs))
		for i, r := range refs {
			desc := ""
			if ent, ok := cat.Entity(r.ID, r.Type); ok {
				desc = ent.Description
			}
			rows[i] = []string{r.ID, string(r.Type), desc}
		}
		return render(cmd, refs, []string{"Entity", "Type", "Description"}, rows)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <student> <entity>",
	Short: "Show each prerequisite of an entity and whether it is met",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := entityTypeFlag(cmd, false)
		if err != nil {
			return err
		}

		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := eng.CheckPrerequisitesMet(cmd.Context(), args[0], args[1], typ)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd, res)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s (%s): %s\n", theme.Flag(res.Unlocked), theme.Title.Render(res.EntityID), res.EntityType, res.Status)
		if len(res.Prerequisites) == 0 {
			fmt.Fprintln(out, theme.Hint.Render("No prerequisites; always unlocked."))
			return nil
		}
		rows := make([][]string, len(res.Prerequisites))
		for i, p := range res.Prerequisites {
			rows[i] = []string{p.PrerequisiteID, string(p.PrerequisiteType), pct(p.RequiredThreshold), pct(p.CurrentProficiency), theme.Flag(p.Met)}
		}
		fmt.Fprintln(out, theme.Table([]string{"Prerequisite", "Type", "Required", "Current", "Met"}, rows))
		return nil
	},
}

// entityTypeFlag parses --type. An empty value is allowed only when
// optional is set.
func entityTypeFlag(cmd *cobra.Command, optional bool) (curriculum.EntityType, error) {
	v, _ := cmd.Flags().GetString("type")
	if v == "" && !optional {
		return "", fmt.Errorf("--type is required")
	}
	return curriculum.ParseEntityType(v)
}

func init() {
	unlockedCmd.Flags().String("subject", "", "Limit to one subject")
	unlockedCmd.Flags().String("type", "", "Entity type: skill or subskill (default both)")

	checkCmd.Flags().String("type", "subskill", "Entity type: skill or subskill")
}
