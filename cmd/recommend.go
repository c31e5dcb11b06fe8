package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/kinderpath/internal/ui/theme"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <student>",
	Short: "Rank what a student should work on next",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		limit, _ := cmd.Flags().GetInt("limit")

		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		recs, err := eng.GetRecommendations(cmd.Context(), args[0], subject, limit)
		if err != nil {
			return err
		}

		rows := make([][]string, len(recs))
		for i, r := range recs {
			rows[i] = []string{
				strconv.Itoa(i + 1),
				r.EntityID,
				string(r.EntityType),
				string(r.Reason),
				pct(r.CurrentProficiency),
				theme.Flag(r.IsReady) + " " + string(r.ReadinessStatus),
				r.Message,
			}
		}
		return render(cmd, recs, []string{"#", "Entity", "Type", "Reason", "Proficiency", "Ready", "Message"}, rows)
	},
}

func init() {
	recommendCmd.Flags().String("subject", "", "Limit to one subject")
	recommendCmd.Flags().Int("limit", 5, "Maximum number of recommendations")
}
