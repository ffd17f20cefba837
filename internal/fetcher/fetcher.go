// Package fetcher downloads project datasets and parses CSV, XLSX, shapefile and ZIP sources into
// tables.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// SchemeFetcher routes each download to the Fetcher registered for the URL scheme.
type SchemeFetcher map[string]Fetcher

// NewSchemeFetcher registers h for http and https and f for ftp.
func NewSchemeFetcher(h *HTTPFetcher, f *FTPFetcher) SchemeFetcher {
	return SchemeFetcher{"http": h, "https": h, "ftp": f}
}

func (s SchemeFetcher) pick(rawURL string) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: parse %s", rawURL)
	}
	f, ok := s[strings.ToLower(u.Scheme)]
	if !ok || f == nil {
		return nil, eris.Errorf("fetch: no fetcher for scheme %q", u.Scheme)
	}
	return f, nil
}

// Download fetches rawURL with the fetcher for its scheme.
func (s SchemeFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	f, err := s.pick(rawURL)
	if err != nil {
		return nil, err
	}
	return f.Download(ctx, rawURL)
}

// DownloadToFile fetches rawURL into path with the fetcher for its scheme.
func (s SchemeFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	f, err := s.pick(rawURL)
	if err != nil {
		return 0, err
	}
	return f.DownloadToFile(ctx, rawURL, path)
}
