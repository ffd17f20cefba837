package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/quickmap/internal/compose"
	"github.com/sells-group/quickmap/internal/table"
)

var reportInput inputFlags

// pipeline runs one report over a loaded table and saves it under outputDir.
type pipeline func(c *compose.Composer, t *table.Table, outputDir string) (*compose.Result, error)

var (
	statusPipeline   pipeline = (*compose.Composer).PlotByDeploymentStatus
	maturityPipeline pipeline = (*compose.Composer).PlotByMaturity
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the layered CCUS project maps",
}

var reportStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Map Large projects by deployment status and hub structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReports(cmd, statusPipeline)
	},
}

var reportMaturityCmd = &cobra.Command{
	Use:   "maturity",
	Short: "Map Large projects by maturity stage",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReports(cmd, maturityPipeline)
	},
}

var reportAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Build the status and maturity maps concurrently from one load",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReports(cmd, statusPipeline, maturityPipeline)
	},
}

func runReports(cmd *cobra.Command, pipelines ...pipeline) error {
	if err := reportInput.validate(); err != nil {
		return err
	}
	if err := cfg.Validate("map"); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	t, err := loadTable(ctx, cfg, &reportInput)
	if err != nil {
		return err
	}

	results, err := buildReports(newComposer(cfg), t, reportInput.dir(cfg), pipelines...)
	if err != nil {
		return err
	}

	if reportInput.geojson {
		for _, res := range results {
			path, err := writeGeoJSON(res)
			if err != nil {
				return err
			}
			zap.L().Info("geojson export written", zap.String("report", res.Report), zap.String("path", path))
		}
	}
	return writeSummary(cmd.OutOrStdout(), reportInput.summary, results...)
}

// buildReports runs every pipeline over the shared table concurrently. Results keep the order of
// pipelines.
func buildReports(c *compose.Composer, t *table.Table, outputDir string, pipelines ...pipeline) ([]*compose.Result, error) {
	results := make([]*compose.Result, len(pipelines))

	var g errgroup.Group
	for i, run := range pipelines {
		g.Go(func() error {
			res, err := run(c, t, outputDir)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func init() {
	reportInput.bind(reportCmd, true)
	reportCmd.AddCommand(reportStatusCmd, reportMaturityCmd, reportAllCmd)
	rootCmd.AddCommand(reportCmd)
}
