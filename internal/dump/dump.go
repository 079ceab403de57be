// Package dump assembles shrunken source files into one combined text
// stream. It owns the caller side of the shrink contract: the synthetic
// "# FILEPATH:" boundary header before each file, with the shrinker's
// header suffix attached when a file spans several expanded models.
package dump

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"akaidoo/internal/logging"
	"akaidoo/internal/shrink"
)

// Entry is one file scheduled into a dump.
type Entry struct {
	// Path is the file on disk.
	Path string
	// HeaderPath is the logical path shown in the boundary header.
	HeaderPath string
	// Request controls shrinking for this entry; non-Python files ignore
	// it and pass through verbatim.
	Request shrink.Request
}

// Dumper writes combined dumps.
type Dumper struct {
	logger *logging.Logger
}

// New creates a Dumper.
func New(logger *logging.Logger) *Dumper {
	return &Dumper{logger: logger}
}

// Write emits all entries to w in order and returns the union of expanded
// model names. A file that cannot be shrunk is passed through unmodified;
// one bad file never aborts the dump.
func (d *Dumper) Write(ctx context.Context, w io.Writer, entries []Entry) (map[string]bool, error) {
	expanded := map[string]bool{}

	for _, entry := range entries {
		text, suffix, matched := d.renderEntry(ctx, entry)
		for name := range matched {
			expanded[name] = true
		}

		if _, err := fmt.Fprintf(w, "# FILEPATH: %s%s\n", entry.HeaderPath, suffix); err != nil {
			return expanded, err
		}
		if _, err := io.WriteString(w, text); err != nil {
			return expanded, err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return expanded, err
		}
	}
	return expanded, nil
}

func (d *Dumper) renderEntry(ctx context.Context, entry Entry) (text, headerSuffix string, expanded map[string]bool) {
	source, err := os.ReadFile(entry.Path)
	if err != nil {
		d.logger.Warn("unreadable file skipped", logging.F("path", entry.Path))
		return "", "", nil
	}

	base := filepath.Base(entry.Path)
	switch {
	case base == "__manifest__.py":
		return shrink.ShrinkManifest(ctx, source, entry.Request.Level), "", nil

	case strings.HasSuffix(base, ".py"):
		req := entry.Request
		if req.HeaderPath == "" {
			req.HeaderPath = entry.HeaderPath
		}
		res, err := shrink.Shrink(ctx, source, req)
		if err != nil {
			// Pass-through fallback: better verbatim than missing.
			d.logger.Warn("shrink failed, passing file through",
				logging.F("path", entry.Path),
				logging.F("error", err.Error()),
			)
			return ensureTrailingNewline(string(source)), "", nil
		}
		return res.Text, res.HeaderSuffix, res.ExpandedModels

	default:
		return ensureTrailingNewline(string(source)), "", nil
	}
}

func ensureTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
