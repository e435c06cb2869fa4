package commands

import (
	"github.com/Jonathanlight/repodoctor/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	version string
	commit  string
	date    string
)

var rootCmd = &cobra.Command{
	Use:   "repodoctor",
	Short: "repodoctor - repository health diagnostics",
	Long: `repodoctor diagnoses a source repository's structural and operational health:
it detects the framework, runs independent analyzers against the tree, and
aggregates the findings into a weighted 0-100 health score.

Auto-fixable findings can be repaired with 'repodoctor fix'.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Init(verbose)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with injected build info.
func Execute(v, c, d string) error {
	version = v
	commit = c
	date = d
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
