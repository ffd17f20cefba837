package main

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/quickmap/internal/compose"
)

// Summary formats.
const (
	summaryText = "text"
	summaryYAML = "yaml"
	summaryJSON = "json"
)

func validSummary(format string) error {
	switch format {
	case summaryText, summaryYAML, summaryJSON:
		return nil
	}
	return eris.Errorf("unknown --summary format %q (want text, yaml or json)", format)
}

// writeSummary reports what each pipeline plotted and where it was saved.
func writeSummary(w io.Writer, format string, results ...*compose.Result) error {
	switch format {
	case summaryYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return eris.Wrap(err, "summary: encode yaml")
		}
		return eris.Wrap(enc.Close(), "summary: close yaml")
	case summaryJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(results), "summary: encode json")
	}

	p := message.NewPrinter(language.English)
	for _, res := range results {
		if _, err := p.Fprintf(w, "%s: %d of %d rows plotted\n", res.Report, res.Plotted, res.Input); err != nil {
			return eris.Wrap(err, "summary: write")
		}
		for _, l := range res.Layers {
			p.Fprintf(w, "  %-28s %8d\n", l.Name, l.Markers) //nolint:errcheck
		}
		if res.Path != "" {
			p.Fprintf(w, "  saved %s\n", res.Path) //nolint:errcheck
		}
	}
	return nil
}

// writeGeoJSON saves the GeoJSON export beside the saved document.
func writeGeoJSON(res *compose.Result) (string, error) {
	if res.Path == "" || res.Canvas == nil {
		return "", eris.Errorf("summary: %s was not saved", res.Report)
	}
	path := strings.TrimSuffix(res.Path, filepath.Ext(res.Path)) + ".geojson"
	if err := res.Canvas.SaveGeoJSON(path); err != nil {
		return "", err
	}
	return path, nil
}
