package cmd

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/abhisek/gradetrend/internal/analysis"
	"github.com/abhisek/gradetrend/internal/app"
	"github.com/abhisek/gradetrend/internal/screens/form"
)

var errNotTerminal = errors.New("the form needs an interactive terminal; use analyze or serve instead")

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Fill in one student's scores in a terminal form",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fd := os.Stdout.Fd()
		if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
			return errNotTerminal
		}

		// The screen owns stdout and stderr; logs go to --log-file only.
		e, err := newEnv(cmd, nil, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		history := e.history()
		svc := analysis.New(e.log, analysis.WithHistory(history))

		status := "history off"
		if history != nil {
			status = "history on"
		}

		ctx := cmd.Context()
		return app.Run(ctx, form.New(form.Config{
			Ctx:       ctx,
			Analyze:   svc.AnalyzeSubmission,
			ChartPath: e.cfg.Output.Chart,
			History:   history,
		}), status)
	},
}

func init() {
	formCmd.Flags().String("chart", "improvement_curve.png", "Chart PNG to write (empty to skip)")
}
