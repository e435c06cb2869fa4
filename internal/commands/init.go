package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initFlags struct {
	force bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a sample configuration file",
	Long:  `Creates a commented .repodoctor.yml in the current directory.`,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initFlags.force, "force", false, "Overwrite an existing file")
}

func runInit(_ *cobra.Command, _ []string) error {
	const configPath = ".repodoctor.yml"

	if !initFlags.force {
		if _, err := os.Stat(configPath); err == nil {
			fmt.Printf("Skipping %s (already exists, use --force to overwrite)\n", configPath)
			return nil
		}
	}

	if err := os.WriteFile(configPath, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", configPath, err)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Pick a preset: balanced (default), strict, or minimal")
	fmt.Println("  2. Add ignore globs for generated or vendored paths")
	fmt.Println("  3. Run: repodoctor scan")
	return nil
}

const sampleConfig = `# repodoctor configuration

# Base preset: balanced, strict, or minimal
# extends: balanced

# Minimum severity to report: info, low, medium, high, critical
# severity_threshold: info

# Severity that fails the CI gate (repodoctor scan --ci)
# fail_on: high

# Paths and rule ids to exclude
# ignore:
#   paths:
#     - "generated/**"
#     - "legacy/**"
#   rules:
#     - DOC-003

# Per-analyzer toggles
# analyzers:
#   nextjs:
#     enabled: false

# Custom text-pattern rules
# custom_rules:
#   - id: CUS-001
#     title: "TODO left in source"
#     pattern: "TODO\\("
#     files: "src/**/*.go"
#     severity: low
#     suggestion: "File an issue instead of leaving TODOs"
`
