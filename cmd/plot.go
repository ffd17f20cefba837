package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/quickmap/internal/canvas"
	"github.com/sells-group/quickmap/internal/compose"
	"github.com/sells-group/quickmap/internal/render"
	"github.com/sells-group/quickmap/internal/server"
)

var (
	plotInput  inputFlags
	plotLatCol string
	plotLonCol string
	plotPopup  []string
	plotColor  string
	plotRadius float64
	plotPin    bool
	plotIcon   string
	plotOutput string
	plotServe  bool
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Draw every row with coordinates on a single map",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := plotInput.validate(); err != nil {
			return err
		}
		if err := cfg.Validate("map"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		t, err := loadTable(ctx, cfg, &plotInput)
		if err != nil {
			return err
		}

		savePath := plotOutput
		if savePath == "" {
			savePath = compose.OutputPath(plotInput.dir(cfg), compose.ReportQuick, time.Now())
		}

		res, err := newComposer(cfg).QuickPlot(t, plotOptions(), savePath)
		if err != nil {
			return err
		}
		if plotInput.geojson {
			if _, err := writeGeoJSON(res); err != nil {
				return err
			}
		}
		if err := writeSummary(cmd.OutOrStdout(), plotInput.summary, res); err != nil {
			return err
		}

		if !plotServe {
			return nil
		}
		srv := server.New(plotInput.dir(cfg))
		srv.Publish(compose.ReportQuick, res.Canvas.Handle())
		zap.L().Info("quick map published", zap.String("path", "/live/"+compose.ReportQuick))
		return srv.ListenAndServe(ctx, server.Addr(cfg.Server.Port))
	},
}

// plotOptions maps the style flags onto render options.
func plotOptions() render.Options {
	style := render.DefaultStyle()
	if plotColor != "" {
		style.Color = plotColor
	}
	if plotRadius > 0 {
		style.Radius = plotRadius
	}
	if plotPin {
		style.Kind = canvas.KindPin
		style.Icon = plotIcon
	}
	return render.Options{
		LatCol:    plotLatCol,
		LonCol:    plotLonCol,
		PopupCols: plotPopup,
		Style:     style,
	}
}

func init() {
	plotInput.bind(plotCmd, false)
	plotCmd.Flags().StringVar(&plotLatCol, "lat-col", "", "latitude column after standardization (default lat)")
	plotCmd.Flags().StringVar(&plotLonCol, "lon-col", "", "longitude column after standardization (default lon)")
	plotCmd.Flags().StringSliceVar(&plotPopup, "popup", nil, "columns shown in each marker popup")
	plotCmd.Flags().StringVar(&plotColor, "color", "", "marker color (default blue)")
	plotCmd.Flags().Float64Var(&plotRadius, "radius", 0, "circle marker radius (default 5)")
	plotCmd.Flags().BoolVar(&plotPin, "pin", false, "draw pin markers instead of circles")
	plotCmd.Flags().StringVar(&plotIcon, "icon", "", "Font Awesome icon name for pin markers")
	plotCmd.Flags().StringVar(&plotOutput, "output", "", "document path (default {output-dir}/quick_map_{timestamp}.html)")
	plotCmd.Flags().BoolVar(&plotServe, "serve", false, "serve the map at /live/quick_map after saving")
	rootCmd.AddCommand(plotCmd)
}
