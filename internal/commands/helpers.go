package commands

import (
	"fmt"
	"strings"
)

// enhanceError wraps an error with context and a suggestion for common
// filesystem and configuration problems.
func enhanceError(action string, err error) error {
	msg := err.Error()

	var hint string
	switch {
	case strings.Contains(msg, "permission denied"):
		hint = "Check file permissions, or run the scan as the owner of the repository"
	case strings.Contains(msg, "not a directory"):
		hint = "Point repodoctor at the repository root, not at a file"
	case strings.Contains(msg, "no such file or directory"):
		hint = "Verify the path exists; relative paths resolve against the current directory"
	case strings.Contains(msg, "unknown preset"):
		hint = "Valid presets are balanced, strict, and minimal"
	case strings.Contains(msg, "modified since the plan was built"):
		hint = "The file changed during the fix run. Re-run 'repodoctor fix' to replan"
	}

	if hint != "" {
		return fmt.Errorf("%s: %w\n  hint: %s", action, err, hint)
	}
	return fmt.Errorf("%s: %w", action, err)
}
