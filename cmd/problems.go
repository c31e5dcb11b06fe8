package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/kinderpath/internal/engine"
	"github.com/abhisek/kinderpath/internal/optimizer"
	"github.com/abhisek/kinderpath/internal/problemgen"
	"github.com/abhisek/kinderpath/internal/store"
	"github.com/abhisek/kinderpath/internal/ui/theme"
)

var problemsCmd = &cobra.Command{
	Use:   "problems",
	Short: "Serve and select practice problems",
}

var problemsServeCmd = &cobra.Command{
	Use:   "serve <student> <subskill>",
	Short: "Pick problems from the cache, generating a batch when it is empty",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")

		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		picked, err := eng.ServeProblems(cmd.Context(), engine.ServeRequest{StudentID: args[0], SubskillID: args[1], Count: count})
		if err != nil {
			return err
		}
		return renderCandidates(cmd, picked)
	},
}

var problemsSelectCmd = &cobra.Command{
	Use:   "select <student> <problems.json>",
	Short: "Rank a JSON array of problems for a student",
	Long: `Rank a JSON array of problems for a student without touching the cache.

Each element uses the stored problem shape: problem_id, subject, skill_id,
subskill_id, difficulty and problem_payload.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")

		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		var pool []store.Problem
		if err := json.Unmarshal(data, &pool); err != nil {
			return fmt.Errorf("parse %s: %w", args[1], err)
		}
		if len(pool) == 0 {
			return renderCandidates(cmd, nil)
		}

		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		first := pool[0]
		picked, err := eng.SelectOptimalProblems(cmd.Context(), optimizer.Request{
			StudentID:  args[0],
			Subject:    first.Subject,
			UnitID:     first.UnitID,
			SkillID:    first.SkillID,
			SubskillID: first.SubskillID,
			Problems:   pool,
			Count:      count,
		})
		if err != nil {
			return err
		}
		return renderCandidates(cmd, picked)
	},
}

func renderCandidates(cmd *cobra.Command, cands []optimizer.Candidate) error {
	if cands == nil {
		cands = []optimizer.Candidate{}
	}
	rows := make([][]string, len(cands))
	for i, c := range cands {
		question := ""
		var content problemgen.Content
		if json.Unmarshal(c.Problem.Payload, &content) == nil {
			question = content.Question
		}
		rows[i] = []string{
			c.Problem.ID,
			fmt.Sprintf("%.1f", c.Problem.Difficulty),
			theme.Flag(c.IsNew),
			fmt.Sprintf("%.3f", c.Probability),
			fmt.Sprintf("%.2f", c.DifficultyDistance),
			question,
		}
	}
	return render(cmd, cands, []string{"Problem", "Difficulty", "New", "Review p", "Distance", "Question"}, rows)
}

func init() {
	problemsServeCmd.Flags().Int("count", 3, "Number of problems to serve")
	problemsSelectCmd.Flags().Int("count", 3, "Number of problems to select")

	problemsCmd.AddCommand(problemsServeCmd)
	problemsCmd.AddCommand(problemsSelectCmd)
}
