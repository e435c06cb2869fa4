// Package score turns an issue list into a weighted 0-100 health score.
// It is stateless: identical issue sets always produce identical scores.
package score

import (
	"math"

	"github.com/Jonathanlight/repodoctor/internal/issue"
)

// Grade is the letter summary of a total score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// categoryWeights sum to 1.0.
var categoryWeights = map[issue.Category]float64{
	issue.CategoryStructure:     0.20,
	issue.CategoryDependencies:  0.20,
	issue.CategoryConfiguration: 0.15,
	issue.CategoryTesting:       0.25,
	issue.CategorySecurity:      0.15,
	issue.CategoryDocumentation: 0.05,
}

// CategoryScore is one category's contribution to the breakdown.
type CategoryScore struct {
	Name          string `json:"name"`
	Score         int    `json:"score"`
	IssuesCount   int    `json:"issues_count"`
	CriticalCount int    `json:"critical_count"`
}

// HealthScore is the aggregate result for one scan.
type HealthScore struct {
	Total     int             `json:"total"`
	Grade     Grade           `json:"grade"`
	Breakdown []CategoryScore `json:"breakdown"`
}

// Calculate scores the issue set. Each category starts at 100 and loses
// the severity penalty per issue, clamped at 0; the weighted categories
// sum to the total, rounded to the nearest integer in [0,100].
func Calculate(issues []issue.Issue) HealthScore {
	byCategory := make(map[issue.Category][]issue.Issue)
	for _, is := range issues {
		byCategory[is.Category] = append(byCategory[is.Category], is)
	}

	var (
		breakdown     []CategoryScore
		weightedTotal float64
	)
	for _, cat := range issue.Categories() {
		catIssues := byCategory[cat]
		sc := 100
		critical := 0
		for _, is := range catIssues {
			sc -= is.Severity.Penalty()
			if is.Severity == issue.SeverityCritical {
				critical++
			}
		}
		if sc < 0 {
			sc = 0
		}
		breakdown = append(breakdown, CategoryScore{
			Name:          string(cat),
			Score:         sc,
			IssuesCount:   len(catIssues),
			CriticalCount: critical,
		})
		weightedTotal += float64(sc) * categoryWeights[cat]
	}

	total := int(math.Round(weightedTotal))
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	return HealthScore{
		Total:     total,
		Grade:     gradeFor(total),
		Breakdown: breakdown,
	}
}

func gradeFor(total int) Grade {
	switch {
	case total >= 90:
		return GradeA
	case total >= 80:
		return GradeB
	case total >= 70:
		return GradeC
	case total >= 60:
		return GradeD
	}
	return GradeF
}
