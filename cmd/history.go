package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/gradetrend/internal/store"
)

var errHistoryDisabled = errors.New("history is disabled; pass --history or set history.enabled")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect earlier analysis results",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analysis results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		student, _ := cmd.Flags().GetString("student")
		category, _ := cmd.Flags().GetString("category")

		e, err := newEnv(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer e.Close()
		repo := e.history()
		if repo == nil {
			return errHistoryDisabled
		}

		recs, err := repo.List(cmd.Context(), store.QueryOpts{
			Limit:     limit,
			StudentID: student,
			Category:  category,
		})
		if err != nil {
			return fmt.Errorf("query results: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "No results found.")
			return nil
		}

		fmt.Fprintf(out, "%-36s  %-19s  %-8s  %-16s  %-6s  %8s  %s\n",
			"ID", "Timestamp", "Roll No", "Name", "Policy", "Value", "Category")
		fmt.Fprintln(out, strings.Repeat("─", 130))

		for _, r := range recs {
			name := r.Name
			if len(name) > 16 {
				name = name[:16]
			}
			fmt.Fprintf(out, "%-36s  %-19s  %-8s  %-16s  %-6s  %8.2f  %s\n",
				r.ID,
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				r.StudentID,
				name,
				r.Policy,
				r.Value,
				r.Category,
			)
		}
		return nil
	},
}

var historyViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View one analysis result with its reasons",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer e.Close()
		repo := e.history()
		if repo == nil {
			return errHistoryDisabled
		}

		r, err := repo.Get(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("result %s not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("get result: %w", err)
		}

		out := cmd.OutOrStdout()
		sep := strings.Repeat("─", 60)

		fmt.Fprintf(out, "ID:        %s\n", r.ID)
		fmt.Fprintf(out, "Time:      %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Roll No:   %s\n", r.StudentID)
		fmt.Fprintf(out, "Name:      %s\n", r.Name)
		fmt.Fprintf(out, "Policy:    %s\n", r.Policy)
		fmt.Fprintf(out, "Value:     %.4f\n", r.Value)
		fmt.Fprintf(out, "Average:   %.2f\n", r.AverageScore)
		fmt.Fprintf(out, "Category:  %s\n", r.Category)

		fmt.Fprintln(out)
		fmt.Fprintln(out, sep)
		fmt.Fprintln(out, "SCORES")
		fmt.Fprintln(out, sep)
		for _, o := range r.Observations {
			fmt.Fprintf(out, "  Week %-3d %6.1f\n", o.Week, o.Score)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, sep)
		fmt.Fprintln(out, "REASONS")
		fmt.Fprintln(out, sep)
		for _, reason := range r.Reasons {
			fmt.Fprintf(out, "  - %s\n", reason)
		}
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "Maximum number of results to show")
	historyListCmd.Flags().String("student", "", "Only show this roll number")
	historyListCmd.Flags().String("category", "", "Only show this category")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyViewCmd)
}
