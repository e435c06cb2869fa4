package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// Generate writes human-readable terminal output.
func (r *TextReporter) Generate(data Data) error {
	tw := tabwriter.NewWriter(r.Writer, 0, 4, 2, ' ', 0)
	w := &errWriter{w: r.Writer}

	w.println("repodoctor - Repository Health Report")
	w.println(strings.Repeat("=", 40))
	w.println("")

	framework := string(data.Detected.Framework)
	if data.Detected.Version != "" {
		framework += " " + data.Detected.Version
	}
	w.printf("Project:   %s\n", data.Root)
	w.printf("Framework: %s\n", framework)
	w.printf("Preset:    %s\n\n", data.Preset)

	if len(data.Issues) == 0 {
		w.println("No issues found.")
		w.println("")
		writeTextSummary(w, data)
		return w.err
	}

	w.printf("Found %d issues\n\n", len(data.Issues))

	tw2 := &errWriter{w: tw}
	tw2.printf("SEVERITY\tRULE\tFILE\tTITLE\n")
	tw2.printf("--------\t----\t----\t-----\n")

	for _, is := range data.Issues {
		loc := is.File
		if loc != "" && is.Line > 0 {
			loc = fmt.Sprintf("%s:%d", is.File, is.Line)
		}
		title := is.Title
		if is.AutoFixable {
			title += " [fixable]"
		}
		tw2.printf("%s\t%s\t%s\t%s\n", is.Severity, is.ID, loc, title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	w.println("")
	writeTextSummary(w, data)
	return w.err
}

func writeTextSummary(w *errWriter, data Data) {
	w.println("Summary")
	w.println("-------")
	w.printf("Health score:  %d/100 (grade %s)\n", data.Score.Total, data.Score.Grade)
	w.printf("Files scanned: %d\n", data.FileCount)
	w.printf("Issues found:  %d\n", len(data.Issues))
	w.printf("Scan duration: %s\n", data.Duration.Round(time.Millisecond))

	for _, cat := range data.Score.Breakdown {
		if cat.IssuesCount == 0 {
			continue
		}
		w.printf("  %-14s %3d/100 (%d issues)\n", cat.Name+":", cat.Score, cat.IssuesCount)
	}

	if len(data.Warnings) > 0 {
		w.printf("\nWarnings (%d):\n", len(data.Warnings))
		for _, warn := range data.Warnings {
			w.printf("  - %s\n", warn)
		}
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
