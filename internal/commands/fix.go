package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Jonathanlight/repodoctor/internal/fixer"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/scan"
)

var fixFlags struct {
	preset  string
	only    []string
	dryRun  bool
	auto    bool
	noCache bool
}

var fixCmd = &cobra.Command{
	Use:   "fix [path]",
	Short: "Apply safe automatic fixes",
	Long: `Scan a repository and repair its auto-fixable issues. The batch is
transactional: if any fix fails, everything applied so far is rolled back
and the tree is left exactly as it was.

Use --dry-run to preview the planned changes without touching any file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().StringVar(&fixFlags.preset, "preset", "", "Ruleset preset: balanced, strict, or minimal")
	fixCmd.Flags().StringSliceVar(&fixFlags.only, "only", nil, "Only fix the named rule ids (e.g. STR-001,STR-003)")
	fixCmd.Flags().BoolVar(&fixFlags.dryRun, "dry-run", false, "Print what would change without modifying files")
	fixCmd.Flags().BoolVar(&fixFlags.auto, "auto", false, "Apply without prompting")
	fixCmd.Flags().BoolVar(&fixFlags.noCache, "no-cache", false, "Disable the on-disk fingerprint cache")
}

func runFix(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	res, err := scan.Run(cmd.Context(), root, scan.Options{
		Preset:  fixFlags.preset,
		NoCache: fixFlags.noCache,
	})
	if err != nil {
		return enhanceError("scan "+root, err)
	}

	fixable := selectFixable(res.Issues, fixFlags.only)
	if len(fixable) == 0 {
		color.Green("No auto-fixable issues found.")
		return nil
	}

	proj, err := scan.Project(res.Root, res.Ruleset)
	if err != nil {
		return err
	}
	plan := fixer.BuildPlan(proj, fixable, fixer.Default())

	fmt.Printf("%d auto-fixable issue(s) found.\n\n", len(fixable))
	fmt.Print(plan.Preview())

	if fixFlags.dryRun || plan.Empty() {
		return nil
	}

	if !fixFlags.auto && !confirm("Apply these fixes?") {
		fmt.Println("Aborted.")
		return nil
	}

	report, err := plan.Apply()
	printFixReport(report)
	if err != nil {
		return enhanceError("apply fixes", err)
	}
	return nil
}

func selectFixable(issues []issue.Issue, only []string) []issue.Issue {
	var out []issue.Issue
	for _, is := range issues {
		if !is.AutoFixable {
			continue
		}
		if len(only) > 0 && !containsString(only, is.ID) {
			continue
		}
		out = append(out, is)
	}
	return out
}

func printFixReport(report *fixer.Report) {
	fmt.Println()
	for _, r := range report.Applied {
		fmt.Printf("  %s [%s] %s\n", color.GreenString("FIXED"), strings.Join(r.RuleIDs, ", "), r.Detail)
	}
	for _, r := range report.Skipped {
		fmt.Printf("  %s [%s] %s\n", color.YellowString("SKIP"), strings.Join(r.RuleIDs, ", "), r.Detail)
	}
	if report.Failed != nil {
		fmt.Printf("  %s [%s] %s\n", color.RedString("ERROR"), strings.Join(report.Failed.RuleIDs, ", "), report.Failed.Path)
	}
	if report.RolledBack {
		color.Red("\nBatch failed; all applied fixes were rolled back.")
		return
	}
	fmt.Printf("\n%d fixed, %d skipped.\n", len(report.Applied), len(report.Skipped))
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
