package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/gradetrend/internal/analysis"
	"github.com/abhisek/gradetrend/internal/metrics"
	"github.com/abhisek/gradetrend/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis form and JSON API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, cmd.ErrOrStderr(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()

		gin.SetMode(e.cfg.Server.Mode)

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := metrics.New(reg)

		history := e.history()
		svc := analysis.New(e.log, analysis.WithMetrics(m), analysis.WithHistory(history))
		srv := web.New(svc, e.log, web.WithMetrics(m), web.WithHistory(history))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e.log.Info("listening",
			zap.String("addr", e.cfg.Server.Addr),
			zap.String("mode", e.cfg.Server.Mode),
			zap.Bool("history", history != nil),
		)
		return srv.Run(ctx, e.cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().String("mode", gin.ReleaseMode, "gin mode: debug, release, test")
	serveCmd.Flags().Bool("tracing", false, "Export analysis spans to stderr")
}
