// Package output handles formatting scan reports in different formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/modtools/modup/internal/update"
)

// Format represents an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Report summarizes one batch run.
type Report struct {
	Scanned   int              `json:"scanned" yaml:"scanned" toml:"scanned"`
	Updated   int              `json:"updated" yaml:"updated" toml:"updated"`
	UpToDate  int              `json:"upToDate" yaml:"up_to_date" toml:"up_to_date"`
	Available int              `json:"available,omitempty" yaml:"available,omitempty" toml:"available,omitempty"`
	Failed    int              `json:"failed" yaml:"failed" toml:"failed"`
	Skipped   int              `json:"skipped,omitempty" yaml:"skipped,omitempty" toml:"skipped,omitempty"`
	Modules   []update.Outcome `json:"modules" yaml:"modules" toml:"modules"`
}

// BuildReport tallies outcomes into a report.
func BuildReport(outcomes []update.Outcome) Report {
	r := Report{Scanned: len(outcomes), Modules: outcomes}
	for _, o := range outcomes {
		switch o.Status {
		case update.StatusUpdated:
			r.Updated++
		case update.StatusUpToDate:
			r.UpToDate++
		case update.StatusUpdateAvailable:
			r.Available++
		case update.StatusSkipped:
			r.Skipped++
		case update.StatusFailed:
			r.Failed++
		}
	}
	return r
}

// String renders the text-format summary line.
func (r Report) String() string {
	s := fmt.Sprintf("%d scanned, %d updated, %d up to date, %d failed",
		r.Scanned, r.Updated, r.UpToDate, r.Failed)
	if r.Available > 0 {
		s += fmt.Sprintf(", %d update(s) available", r.Available)
	}
	return s
}

// Writer handles output in the specified format.
type Writer struct {
	format Format
	w      io.Writer
}

// NewWriter creates a new output writer.
func NewWriter(w io.Writer, format Format) *Writer {
	return &Writer{format: format, w: w}
}

// Write outputs the given value in the configured format.
func (w *Writer) Write(v interface{}) error {
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w.w)
		enc.SetIndent(2)
		return enc.Encode(v)
	case FormatTOML:
		return toml.NewEncoder(w.w).Encode(v)
	default:
		// Text format - assume v implements fmt.Stringer or use default
		if s, ok := v.(fmt.Stringer); ok {
			_, err := fmt.Fprintln(w.w, s.String())
			return err
		}
		_, err := fmt.Fprintf(w.w, "%+v\n", v)
		return err
	}
}

// ParseFormat parses a format string into a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}
