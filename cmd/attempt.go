package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/kinderpath/internal/store"
	"github.com/abhisek/kinderpath/internal/ui/theme"
)

var attemptCmd = &cobra.Command{
	Use:   "attempt",
	Short: "Record subskill attempts",
}

var attemptRecordCmd = &cobra.Command{
	Use:   "record <student> <subskill> <score>",
	Short: "Record one attempt scored 0..10",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("score %q: %w", args[2], store.ErrInvalidScore)
		}
		at, err := dateFlag(cmd, "at", false)
		if err != nil {
			return err
		}

		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		a := store.Attempt{StudentID: args[0], SubskillID: args[1], Score: score}
		if at != nil {
			a.Timestamp = *at
		}
		if err := eng.RecordAttempt(cmd.Context(), &a); err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd, a)
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme.Good.Render(fmt.Sprintf(
			"Recorded %s on %s: %.1f/10 (%s)", a.StudentID, a.SubskillID, a.Score, a.Timestamp.Format(time.DateTime))))
		return nil
	},
}

var attemptImportCmd = &cobra.Command{
	Use:   "import <file.jsonl>",
	Short: "Import attempts from newline-delimited JSON",
	Long: `Import attempts from newline-delimited JSON. Each line carries
student_id, subskill_id, an optional RFC 3339 timestamp, and a score given
as a number, a numeric string, or an object under "evaluation".
Out-of-range scores are clamped; unreadable lines are skipped and listed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := eng.ImportAttempts(cmd.Context(), f)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd, res)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Good.Render(fmt.Sprintf("Imported %d attempts.", res.Imported)))
		if res.Clamped > 0 {
			fmt.Fprintln(out, theme.Warn.Render(fmt.Sprintf("%d scores were out of range and clamped.", res.Clamped)))
		}
		if res.Skipped > 0 {
			fmt.Fprintln(out, theme.Bad.Render(fmt.Sprintf("Skipped %d lines:", res.Skipped)))
			for _, e := range res.Errors {
				fmt.Fprintln(out, theme.Hint.Render("  "+e))
			}
		}
		return nil
	},
}

func init() {
	attemptRecordCmd.Flags().String("at", "", "Attempt date (YYYY-MM-DD), default now")
	attemptCmd.AddCommand(attemptRecordCmd, attemptImportCmd)
}
