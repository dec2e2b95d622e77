package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/gradetrend/internal/analysis"
	"github.com/abhisek/gradetrend/internal/batch"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one student from the weekly score CSV",
	Long: "Prompts for an analyst name and a roll number, fits the student's weekly\n" +
		"scores from the data file, writes the improvement report row and the chart,\n" +
		"and prints a summary.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, cmd.ErrOrStderr(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()

		svc := analysis.New(e.log, analysis.WithHistory(e.history()))
		runner := batch.New(svc, batch.Options{
			DataPath:  e.cfg.Data.Path,
			CSVPath:   e.cfg.Output.CSV,
			ChartPath: e.cfg.Output.Chart,
			Append:    e.cfg.Output.Append,
		}, e.log)

		_, err = runner.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		return err
	},
}

func init() {
	analyzeCmd.Flags().String("data", "data/student_data.csv", "Weekly score CSV to read")
	analyzeCmd.Flags().String("out", "improvement_rates.csv", "Improvement report CSV to write")
	analyzeCmd.Flags().String("chart", "improvement_curve.png", "Chart PNG to write (empty to skip)")
	analyzeCmd.Flags().Bool("append", false, "Append to the report instead of overwriting it")
}
