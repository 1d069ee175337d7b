package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/healthwatch/pkg/config"
	"github.com/doodlesbykumbi/healthwatch/pkg/db"
	"github.com/doodlesbykumbi/healthwatch/pkg/model"
	"github.com/doodlesbykumbi/healthwatch/pkg/monitor"
	storegorm "github.com/doodlesbykumbi/healthwatch/pkg/server/store/gorm"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run all configured health probes once",
	Long: `Run all configured health probes once, record the results and print them.

Example:
  healthwatchctl check`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck() error {
	cfg := config.Get()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	database, err := db.Connect(db.Config{})
	if err != nil {
		return err
	}

	mon := monitor.New(
		storegorm.NewResultsStore(database),
		storegorm.NewSummaryStore(database),
		cfg,
		monitor.NewMetrics(),
	)
	mon.SetServices(monitor.ServicesFromConfig(cfg))

	results := mon.RunAll(context.Background())

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tTEST\tSTATUS\tDURATION\tERROR")
	failed := 0
	for _, result := range results {
		duration := ""
		if result.DurationMS != nil {
			duration = fmt.Sprintf("%dms", *result.DurationMS)
		}
		errMsg := ""
		if result.ErrorMessage != nil {
			errMsg = *result.ErrorMessage
		}
		if result.LastStatus == model.StatusError {
			failed++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			result.ServiceName, result.TestName, result.LastStatus, duration, errMsg)
	}
	_ = w.Flush()

	if failed > 0 {
		return fmt.Errorf("%d of %d probes failed", failed, len(results))
	}

	fmt.Printf("All %d probes passed\n", len(results))
	return nil
}
