package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evplanner/app"
	"github.com/kilianp07/evplanner/core/model"
	"github.com/kilianp07/evplanner/core/planner"
	"github.com/kilianp07/evplanner/pkg/export"
)

var (
	tripPath     string
	outputFormat string
	strategyName string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a trip described in a YAML or JSON file",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&tripPath, "file", "f", "", "trip request file")
	planCmd.Flags().StringVar(&outputFormat, "format", "json", "output format: json or csv")
	planCmd.Flags().StringVarP(&strategyName, "strategy", "s", "", "override the request strategy")
	_ = planCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Logging.Output = "stderr"

	req, err := planner.LoadRequest(tripPath)
	if err != nil {
		return err
	}
	if strategyName != "" {
		s, err := model.ParseStrategy(strategyName)
		if err != nil {
			return err
		}
		req.Strategy = s
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			app.NewLogger(cfg.Logging, "main").Errorf("service close: %v", err)
		}
	}()

	plan, err := svc.Planner().Plan(ctx, req)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	return export.Write(cmd.OutOrStdout(), plan, outputFormat)
}
