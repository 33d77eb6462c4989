package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calderonlabs/lexprobe/internal/aggregate"
	"github.com/calderonlabs/lexprobe/internal/api"
	"github.com/calderonlabs/lexprobe/internal/clock/system"
	"github.com/calderonlabs/lexprobe/internal/config"
	"github.com/calderonlabs/lexprobe/internal/fetcher"
	"github.com/calderonlabs/lexprobe/internal/id/uuid"
	"github.com/calderonlabs/lexprobe/internal/logging"
	"github.com/calderonlabs/lexprobe/internal/metrics"
	"github.com/calderonlabs/lexprobe/internal/probe"
	"github.com/calderonlabs/lexprobe/internal/report"
	"github.com/calderonlabs/lexprobe/internal/runner"
	"github.com/calderonlabs/lexprobe/internal/strategy/direct"
	"github.com/calderonlabs/lexprobe/internal/strategy/relay"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Probe all configured targets and write the run report.",
		RunE:  runBatch,
	}
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync is best effort

	metrics.Init()

	runID, err := uuid.New().NewID()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	logger = logger.With(zap.String("run_id", runID))

	strategies := []probe.Strategy{
		relay.New(relay.Config{
			BaseURL:        cfg.Relay.BaseURL,
			MinContentSize: cfg.Probe.MinContentSize,
		}),
		direct.New(direct.Config{
			UserAgent:      cfg.Direct.UserAgent,
			Timeout:        cfg.PerAttemptTimeout(),
			MinContentSize: cfg.Probe.MinContentSize,
		}),
	}

	// The config default is nonzero, so a zero here is an operator
	// explicitly switching spacing off.
	delay := cfg.InterRequestDelay()
	if delay == 0 {
		delay = runner.NoDelay
	}

	r := runner.New(fetcher.New(logger), strategies, logger)
	start := time.Now()
	results, err := r.Run(cmd.Context(), cfg.ProbeTargets(), runner.Options{
		Concurrency:       cfg.Runner.Concurrency,
		InterRequestDelay: delay,
		PerAttemptTimeout: cfg.PerAttemptTimeout(),
	})
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}

	rep := aggregate.New(system.New()).Aggregate(results, cfg.Probe.GoalPercent)
	metrics.SetBatchSuccessRate(rep.SuccessRatePercent)

	if err := report.WriteJSON(cfg.Report.Path, rep); err != nil {
		return fmt.Errorf("persist report: %w", err)
	}

	logger.Info("batch complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("total_targets", rep.TotalTargets),
		zap.Int("successful_targets", rep.SuccessfulTargets),
		zap.Float64("success_rate_percent", rep.SuccessRatePercent),
		zap.Bool("goal_achieved", rep.GoalAchieved),
		zap.String("report_path", cfg.Report.Path),
	)

	if cfg.Server.Enabled {
		holder := report.NewHolder()
		holder.Set(rep)
		return api.NewServer(holder, logger).ListenAndServe(cfg.Server.Port)
	}
	return nil
}
