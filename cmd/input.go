package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/sells-group/quickmap/internal/canvas"
	"github.com/sells-group/quickmap/internal/compose"
	"github.com/sells-group/quickmap/internal/config"
	"github.com/sells-group/quickmap/internal/fetcher"
	"github.com/sells-group/quickmap/internal/store"
	"github.com/sells-group/quickmap/internal/table"
)

// inputFlags are the table source and output flags shared by plot and report.
type inputFlags struct {
	input     string
	sheet     string
	query     string
	outputDir string
	summary   string
	geojson   bool
}

func (f *inputFlags) bind(cmd *cobra.Command, persistent bool) {
	fs := cmd.Flags()
	if persistent {
		fs = cmd.PersistentFlags()
	}
	fs.StringVar(&f.input, "input", "", "project table: local path or http(s)/ftp URL (.csv, .tsv, .xlsx, .shp, .zip)")
	fs.StringVar(&f.sheet, "sheet", "", "XLSX sheet name (default first sheet)")
	fs.StringVar(&f.query, "query", "", "SQL query run against the configured store instead of --input")
	fs.StringVar(&f.outputDir, "output-dir", "", "directory for map documents (default from config)")
	fs.StringVar(&f.summary, "summary", "text", "summary format written to stdout: text, yaml or json")
	fs.BoolVar(&f.geojson, "geojson", false, "also write a .geojson export next to each map")
}

func (f *inputFlags) validate() error {
	switch {
	case f.input == "" && f.query == "":
		return eris.New("one of --input or --query is required")
	case f.input != "" && f.query != "":
		return eris.New("--input and --query are mutually exclusive")
	}
	return validSummary(f.summary)
}

func (f *inputFlags) dir(c *config.Config) string {
	if f.outputDir != "" {
		return f.outputDir
	}
	return c.Map.OutputDir
}

// loadTable reads the project table named by the flags.
func loadTable(ctx context.Context, c *config.Config, f *inputFlags) (*table.Table, error) {
	if f.query != "" {
		if err := c.Validate("query"); err != nil {
			return nil, err
		}
		src, err := store.Open(ctx, c.Store.Driver, c.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: c.Store.MaxConns,
			MinConns: c.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		defer src.Close() //nolint:errcheck
		return src.Query(ctx, f.query)
	}

	return fetcher.Load(ctx, newFetcher(c.Fetch), f.input, fetcher.LoadOptions{
		Sheet:     f.sheet,
		Comment:   c.CSV.CommentRune(),
		TrimSpace: c.CSV.TrimSpace,
		TempDir:   c.Fetch.TempDir,
	})
}

// newFetcher builds the http(s) and ftp downloaders used for remote --input URLs.
func newFetcher(fc config.FetchConfig) fetcher.SchemeFetcher {
	var limiter *rate.Limiter
	if fc.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(fc.RatePerSecond), 1)
	}
	timeout := time.Duration(fc.TimeoutSecs) * time.Second
	return fetcher.NewSchemeFetcher(
		fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  fc.UserAgent,
			Timeout:    timeout,
			MaxRetries: fc.MaxRetries,
			Limiter:    limiter,
		}),
		fetcher.NewFTPFetcher(fetcher.FTPOptions{Timeout: timeout}),
	)
}

// newComposer builds a Composer whose canvases follow the map and tile configuration.
func newComposer(c *config.Config, opts ...compose.Option) *compose.Composer {
	return compose.New(canvas.Options{
		Zoom:  c.Map.Zoom,
		Tiles: c.Map.Tiles,
		TileKeys: canvas.TileKeys{
			Thunderforest: c.Tiles.ThunderforestKey,
			Mapbox:        c.Tiles.MapboxToken,
		},
	}, opts...)
}
