package fetcher

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/quickmap/internal/table"
)

// LoadOptions configures Load and LoadFile.
type LoadOptions struct {
	Sheet     string // XLSX sheet name; "" reads the first sheet
	Delimiter rune   // CSV delimiter; 0 picks ',' or '\t' by extension
	Comment   rune   // CSV comment character; 0 means none
	TrimSpace bool   // trim whitespace around CSV fields
	TempDir   string // scratch space for downloads and archives; "" uses os.TempDir
}

// IsURL reports whether src is an http, https or ftp URL.
func IsURL(src string) bool {
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ftp":
		return true
	}
	return false
}

// Load reads a table from a local path or a remote URL. Remote files are downloaded with f
// before parsing.
func Load(ctx context.Context, f Fetcher, src string, opts LoadOptions) (*table.Table, error) {
	if !IsURL(src) {
		return LoadFile(ctx, src, opts)
	}
	if f == nil {
		return nil, eris.Errorf("load: no fetcher for remote source %s", src)
	}

	dir, err := os.MkdirTemp(opts.TempDir, "quickmap-download-")
	if err != nil {
		return nil, eris.Wrap(err, "load: create temp dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	u, _ := url.Parse(src)
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "download.csv"
	}
	local := filepath.Join(dir, name)

	n, err := f.DownloadToFile(ctx, src, local)
	if err != nil {
		return nil, eris.Wrapf(err, "load: download %s", src)
	}
	zap.L().Info("load: downloaded dataset", zap.String("url", src), zap.Int64("bytes", n))

	return LoadFile(ctx, local, opts)
}

// LoadFile reads a table from a local file, choosing the parser by extension: .csv, .tsv and
// .txt as delimited text, .xlsx as a workbook, .shp as a point shapefile and .zip as an archive
// holding one of those.
func LoadFile(ctx context.Context, p string, opts LoadOptions) (*table.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".csv", ".tsv", ".txt":
		f, err := os.Open(p)
		if err != nil {
			return nil, eris.Wrapf(err, "load: open %s", p)
		}
		defer f.Close() //nolint:errcheck

		delim := opts.Delimiter
		if delim == 0 && ext == ".tsv" {
			delim = '\t'
		}
		return ReadCSVTable(ctx, f, CSVOptions{
			Delimiter:  delim,
			Comment:    opts.Comment,
			LazyQuotes: true,
			TrimSpace:  opts.TrimSpace,
		})

	case ".xlsx":
		return ReadXLSXTable(p, XLSXOptions{SheetName: opts.Sheet})

	case ".shp":
		return ReadShapefile(p)

	case ".zip":
		return loadZIP(ctx, p, opts)

	default:
		return nil, eris.Errorf("load: unsupported file type %q", ext)
	}
}

func loadZIP(ctx context.Context, p string, opts LoadOptions) (*table.Table, error) {
	dir, err := os.MkdirTemp(opts.TempDir, "quickmap-zip-")
	if err != nil {
		return nil, eris.Wrap(err, "load: create temp dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	files, err := ExtractZIP(p, dir)
	if err != nil {
		return nil, err
	}

	inner := FindByExt(files, ".shp", ".csv", ".tsv", ".xlsx")
	if inner == "" {
		return nil, eris.Errorf("load: %s holds no shapefile, csv or xlsx", p)
	}
	return LoadFile(ctx, inner, opts)
}
