package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/kinderpath/internal/ui/theme"
)

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// render prints v as JSON under --json, otherwise the table.
func render(cmd *cobra.Command, v any, headers []string, rows [][]string) error {
	if wantJSON(cmd) {
		return printJSON(cmd, v)
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), theme.Hint.Render("Nothing to show."))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), theme.Table(headers, rows))
	return nil
}

func pct(p float64) string {
	return fmt.Sprintf("%.0f%%", p*100)
}
