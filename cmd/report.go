package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/kinderpath/internal/analytics"
	"github.com/abhisek/kinderpath/internal/ui/theme"
)

const dateLayout = "2006-01-02"

var reportCmd = &cobra.Command{
	Use:   "report <student>",
	Short: "Show mastery by subject, unit, skill and subskill",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		start, err := dateFlag(cmd, "since", false)
		if err != nil {
			return err
		}
		end, err := dateFlag(cmd, "until", true)
		if err != nil {
			return err
		}

		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		rep, err := eng.GetHierarchicalMetrics(cmd.Context(), args[0], subject, start, end)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd, rep)
		}
		printReport(cmd, rep)
		return nil
	},
}

func printReport(cmd *cobra.Command, rep *analytics.Report) {
	out := cmd.OutOrStdout()
	s := rep.Summary
	fmt.Fprintln(out, theme.Title.Render("Progress for "+s.StudentID))
	fmt.Fprintf(out, "Mastery     %s\n", theme.Bar(s.OverallMastery, 30))
	fmt.Fprintf(out, "Completion  %s\n", theme.Bar(s.Completion/100, 30))
	fmt.Fprintln(out, theme.Subtitle.Render(fmt.Sprintf("%d attempts · %d of %d subskills practiced · %d mastered",
		s.TotalAttempts, s.SubskillsTouched, s.SubskillsTotal, s.SubskillsMastered)))

	var rows [][]string
	for _, subj := range rep.HierarchicalData {
		rows = append(rows, []string{subj.Name, "", pct(subj.Mastery), pct(subj.Proficiency), fmt.Sprintf("%.0f%%", subj.Completion), string(subj.Priority), ""})
		for _, u := range subj.Units {
			rows = append(rows, []string{"  " + u.Name, "", pct(u.Mastery), pct(u.Proficiency), fmt.Sprintf("%.0f%%", u.Completion), string(u.Priority), ""})
			for _, sk := range u.Skills {
				rows = append(rows, []string{"    " + sk.Description, sk.ID, pct(sk.Mastery), pct(sk.Proficiency), fmt.Sprintf("%.0f%%", sk.Completion), string(sk.Priority), ""})
				for _, ss := range sk.Subskills {
					rows = append(rows, []string{"      " + ss.Description, ss.ID, pct(ss.Mastery), pct(ss.Proficiency), fmt.Sprintf("%d", ss.AttemptCount), string(ss.Priority), string(ss.ReadinessStatus)})
				}
			}
		}
	}
	fmt.Fprintln(out, theme.Table([]string{"Name", "ID", "Mastery", "Proficiency", "Done", "Priority", "Readiness"}, rows))
}

// dateFlag parses a YYYY-MM-DD flag. endOfDay moves the time to the last
// nanosecond of that day so the bound is inclusive.
func dateFlag(cmd *cobra.Command, name string, endOfDay bool) (*time.Time, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, time.Local)
	if err != nil {
		return nil, fmt.Errorf("--%s: want YYYY-MM-DD, got %q", name, v)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

func init() {
	reportCmd.Flags().String("subject", "", "Limit to one subject")
	reportCmd.Flags().String("since", "", "Only attempts on or after this date (YYYY-MM-DD)")
	reportCmd.Flags().String("until", "", "Only attempts on or before this date (YYYY-MM-DD)")
}
