package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/kinderpath/internal/store"
	"github.com/abhisek/kinderpath/internal/ui/theme"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Record problem reviews",
}

var reviewRecordCmd = &cobra.Command{
	Use:   "record <student> <problem-id>",
	Short: "Record a review with --score, or grade an --answer",
	Long: `Record how a student did on a served problem. With --score the
review is stored as given (0..10). With --answer the answer is graded
against the stored problem and both a review and an attempt on the
problem's subskill are recorded.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		answer, _ := cmd.Flags().GetString("answer")
		scoreSet := cmd.Flags().Changed("score")
		if (answer == "") == !scoreSet {
			return fmt.Errorf("give exactly one of --score or --answer")
		}
		score, _ := cmd.Flags().GetFloat64("score")

		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		var rv store.Review
		if answer != "" {
			rv, err = eng.SubmitAnswer(cmd.Context(), args[0], args[1], answer)
		} else {
			rv = store.Review{StudentID: args[0], ProblemID: args[1], Score: score}
			err = eng.RecordReview(cmd.Context(), &rv)
		}
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd, rv)
		}
		style := theme.Good
		if rv.Normalized() < 0.5 {
			style = theme.Bad
		}
		fmt.Fprintln(cmd.OutOrStdout(), style.Render(fmt.Sprintf("Review recorded: %.1f/10", rv.Score)))
		return nil
	},
}

func init() {
	reviewRecordCmd.Flags().Float64("score", 0, "Review score 0..10")
	reviewRecordCmd.Flags().String("answer", "", "Student answer to grade")
	reviewCmd.AddCommand(reviewRecordCmd)
}
