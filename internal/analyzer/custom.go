package analyzer

import (
	"context"
	"strings"

	"github.com/Jonathanlight/repodoctor/internal/config"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// CustomRuleAnalyzerName is the analyzer name reported on issues produced by
// user-defined rules.
const CustomRuleAnalyzerName = "custom"

// runCustomRules evaluates the ruleset's custom rules against every snapshot
// file matching each rule's glob. Rules run line by line, one issue per
// matching line.
func runCustomRules(ctx context.Context, snap *project.Snapshot, rules []config.CustomRule) ([]issue.Issue, error) {
	var issues []issue.Issue
	for _, rel := range snap.Files {
		if err := ctx.Err(); err != nil {
			return issues, err
		}

		var applicable []config.CustomRule
		for _, rule := range rules {
			if rule.AppliesTo(rel) {
				applicable = append(applicable, rule)
			}
		}
		if len(applicable) == 0 {
			continue
		}

		content, err := snap.ReadFile(rel)
		if err != nil {
			continue
		}
		for i, line := range strings.Split(string(content), "\n") {
			for _, rule := range applicable {
				if !rule.Pattern.MatchString(line) {
					continue
				}
				issues = append(issues, issue.Issue{
					ID:         rule.ID,
					Analyzer:   CustomRuleAnalyzerName,
					Category:   issue.CategoryConfiguration,
					Severity:   rule.Severity,
					Title:      rule.Title,
					File:       rel,
					Line:       i + 1,
					Suggestion: rule.Suggestion,
				})
			}
		}
	}
	return issues, nil
}
