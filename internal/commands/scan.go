package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/report"
	"github.com/Jonathanlight/repodoctor/internal/scan"
)

var scanFlags struct {
	preset      string
	severity    string
	failOn      string
	ignore      []string
	ignoreRules []string
	only        []string
	format      string
	outputFile  string
	ci          bool
	noCache     bool
	timeout     time.Duration
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Diagnose a repository's health",
	Long: `Scan a repository: detect its framework, run the applicable analyzers, and
report the issues found together with a weighted 0-100 health score.

With --ci the command exits non-zero when any issue reaches the fail-on
severity, making it usable as a pipeline gate.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFlags.preset, "preset", "", "Ruleset preset: balanced, strict, or minimal")
	scanCmd.Flags().StringVar(&scanFlags.severity, "severity", "", "Minimum severity to report (info, low, medium, high, critical)")
	scanCmd.Flags().StringVar(&scanFlags.failOn, "fail-on", "", "Severity that fails the CI gate")
	scanCmd.Flags().StringSliceVar(&scanFlags.ignore, "ignore", nil, "Glob patterns to exclude (repeatable)")
	scanCmd.Flags().StringSliceVar(&scanFlags.ignoreRules, "ignore-rule", nil, "Rule ids to suppress (repeatable)")
	scanCmd.Flags().StringSliceVar(&scanFlags.only, "only", nil, "Run only the named analyzers")
	scanCmd.Flags().StringVar(&scanFlags.format, "format", "text", "Output format: text, json, sarif")
	scanCmd.Flags().StringVarP(&scanFlags.outputFile, "output", "o", "", "Output file path (default: stdout)")
	scanCmd.Flags().BoolVar(&scanFlags.ci, "ci", false, "Exit non-zero when the fail-on gate is not met")
	scanCmd.Flags().BoolVar(&scanFlags.noCache, "no-cache", false, "Disable the on-disk fingerprint cache")
	scanCmd.Flags().DurationVar(&scanFlags.timeout, "timeout", 0, "Override the derived scan time budget")
}

func runScan(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	res, err := scan.Run(cmd.Context(), root, scan.Options{
		Preset:      scanFlags.preset,
		Severity:    scanFlags.severity,
		FailOn:      scanFlags.failOn,
		IgnorePaths: scanFlags.ignore,
		IgnoreRules: scanFlags.ignoreRules,
		Only:        scanFlags.only,
		NoCache:     scanFlags.noCache,
		Timeout:     scanFlags.timeout,
	})
	if err != nil {
		return enhanceError("scan "+root, err)
	}

	reporter, err := selectReporter(scanFlags.format, scanFlags.outputFile)
	if err != nil {
		return err
	}
	if err := reporter.Generate(buildReportData(res)); err != nil {
		return err
	}
	if scanFlags.format == "text" && scanFlags.outputFile == "" {
		if n := fixableCount(res.Issues); n > 0 {
			fmt.Printf("\n%d issues are auto-fixable. Run 'repodoctor fix %s' to repair them.\n", n, root)
		}
	}

	if scanFlags.ci && !res.Passes(res.Ruleset.FailOn) {
		return fmt.Errorf("health gate failed: issues at or above %s severity (score %d/100)",
			res.Ruleset.FailOn, res.Score.Total)
	}
	return nil
}

func buildReportData(res *scan.Result) report.Data {
	return report.Data{
		Tool:      "repodoctor",
		Version:   version,
		Timestamp: time.Now().UTC(),
		Root:      res.Root,
		Detected:  res.Detected,
		Preset:    res.Ruleset.Preset,
		Issues:    res.Issues,
		Score:     res.Score,
		FileCount: res.FileCount,
		Duration:  res.Duration,
		Warnings:  res.Warnings,
	}
}

func selectReporter(format, outputFile string) (report.Reporter, error) {
	w := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, fmt.Errorf("create output file: %w", err)
		}
		w = f
	}

	switch format {
	case "text":
		return &report.TextReporter{Writer: w}, nil
	case "json":
		return &report.JSONReporter{Writer: w}, nil
	case "sarif":
		return &report.SARIFReporter{Writer: w}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (use text, json, or sarif)", format)
	}
}

// fixableCount is shown in the text footer so users know fix has work to do.
func fixableCount(issues []issue.Issue) int {
	n := 0
	for _, is := range issues {
		if is.AutoFixable {
			n++
		}
	}
	return n
}
