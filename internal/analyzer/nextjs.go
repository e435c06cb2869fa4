package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Jonathanlight/repodoctor/internal/config"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// NextJS checks Next.js-specific conventions: App Router layout files,
// next.config contents, core dependencies, test setup, and client-side
// secret exposure.
type NextJS struct{}

func (a *NextJS) Name() string { return "nextjs" }
func (a *NextJS) Description() string {
	return "Next.js-specific project structure, configuration, and best practices"
}
func (a *NextJS) Category() issue.Category { return issue.CategoryStructure }

func (a *NextJS) AppliesTo(proj *project.Project) bool {
	return proj.Detected.Framework == project.FrameworkNextJS
}

var publicEnvRe = regexp.MustCompile(`process\.env\.NEXT_PUBLIC_(\w+)`)

var nextSourceDirs = []string{"app", "pages", "src", "components"}

func (a *NextJS) Analyze(_ context.Context, proj *project.Project, _ *config.Ruleset) ([]issue.Issue, error) {
	var issues []issue.Issue
	snap := proj.Snapshot
	pkg := snap.Manifest("package.json")
	configPath, configContent := readNextConfig(snap)

	issues = append(issues, a.checkStructure(snap, pkg)...)
	issues = append(issues, a.checkConfiguration(snap, configPath, configContent)...)
	if pkg != nil {
		issues = append(issues, a.checkDependencies(pkg)...)
	}
	issues = append(issues, a.checkTesting(snap, pkg)...)
	issues = append(issues, a.checkSecurity(snap, configPath, configContent)...)
	return issues, nil
}

func readNextConfig(snap *project.Snapshot) (string, string) {
	for _, ext := range []string{"js", "mjs", "ts"} {
		name := "next.config." + ext
		if content, err := snap.ReadFile(name); err == nil {
			return name, string(content)
		}
	}
	return "", ""
}

func (a *NextJS) checkStructure(snap *project.Snapshot, pkg *project.Manifest) []issue.Issue {
	var issues []issue.Issue

	if snap.IsDir("app") && !hasAnyFile(snap, []string{"app/layout.tsx", "app/layout.jsx", "app/layout.js"}) {
		issues = append(issues, issue.Issue{
			ID:          "NJS-001",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityHigh,
			Title:       "app/ directory missing layout file",
			Description: "app/ exists but no layout.tsx/jsx/js found. App Router requires a root layout.",
			Suggestion:  "Create app/layout.tsx with a root layout component",
			AutoFixable: true,
		})
	}

	if snap.IsDir("app") && snap.IsDir("pages") {
		issues = append(issues, issue.Issue{
			ID:          "NJS-002",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityMedium,
			Title:       "Both app/ and pages/ directories exist",
			Description: "Mixing App Router and Pages Router can cause routing conflicts.",
			Suggestion:  "Migrate fully to App Router (app/) or keep only pages/",
		})
	}

	hasAppError := snap.IsDir("app") && hasAnyFile(snap, []string{"app/error.tsx", "app/error.jsx", "app/error.js"})
	hasPagesError := snap.IsDir("pages") && hasAnyFile(snap, []string{"pages/_error.tsx", "pages/_error.jsx", "pages/_error.js"})
	if !hasAppError && !hasPagesError {
		issues = append(issues, issue.Issue{
			ID:          "NJS-003",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityMedium,
			Title:       "Missing error page",
			Description: "No error.tsx in app/ or _error.tsx in pages/. Custom error pages improve user experience.",
			Suggestion:  "Create app/error.tsx or pages/_error.tsx for custom error handling",
			AutoFixable: true,
		})
	}

	if snap.IsDir("app") {
		hasNotFound := hasAnyFile(snap, []string{"app/not-found.tsx", "app/not-found.jsx", "app/not-found.js"})
		hasLoading := hasAnyFile(snap, []string{"app/loading.tsx", "app/loading.jsx", "app/loading.js"})
		if !hasNotFound || !hasLoading {
			var missing []string
			if !hasNotFound {
				missing = append(missing, "not-found.tsx")
			}
			if !hasLoading {
				missing = append(missing, "loading.tsx")
			}
			issues = append(issues, issue.Issue{
				ID:          "NJS-004",
				Analyzer:    a.Name(),
				Category:    issue.CategoryStructure,
				Severity:    issue.SeverityLow,
				Title:       fmt.Sprintf("app/ missing: %s", strings.Join(missing, ", ")),
				Description: fmt.Sprintf("app/ is missing %s. These improve user experience.", strings.Join(missing, " and ")),
				Suggestion:  fmt.Sprintf("Create %s in app/", strings.Join(missing, " and ")),
				AutoFixable: true,
			})
		}
	}

	if !snap.HasFile("public/robots.txt") {
		issues = append(issues, issue.Issue{
			ID:          "NJS-051",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityLow,
			Title:       "Missing public/robots.txt",
			Description: "No robots.txt found. Search engines need this for crawling instructions.",
			Suggestion:  "Create public/robots.txt with appropriate crawling rules",
			AutoFixable: true,
		})
	}

	hasStaticSitemap := snap.HasFile("public/sitemap.xml")
	hasAppSitemap := hasAnyFile(snap, []string{"app/sitemap.ts", "app/sitemap.js", "app/sitemap.tsx", "app/sitemap.jsx"})
	hasNextSitemap := pkg != nil && (pkg.Has("dependencies", "next-sitemap") || pkg.Has("devDependencies", "next-sitemap"))
	if !hasStaticSitemap && !hasAppSitemap && !hasNextSitemap {
		issues = append(issues, issue.Issue{
			ID:          "NJS-052",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityInfo,
			Title:       "No sitemap configuration found",
			Description: "No sitemap.xml, app/sitemap.ts, or next-sitemap package found.",
			Suggestion:  "Add a sitemap via public/sitemap.xml, app/sitemap.ts, or next-sitemap package",
		})
	}

	return issues
}

func (a *NextJS) checkConfiguration(snap *project.Snapshot, configPath, configContent string) []issue.Issue {
	var issues []issue.Issue

	if configPath == "" {
		issues = append(issues, issue.Issue{
			ID:          "NJS-010",
			Analyzer:    a.Name(),
			Category:    issue.CategoryConfiguration,
			Severity:    issue.SeverityHigh,
			Title:       "Missing next.config.*",
			Description: "No next.config.js, next.config.mjs, or next.config.ts found.",
			Suggestion:  "Create next.config.js with your project configuration",
			AutoFixable: true,
		})
	} else if len(configContent) < 10 {
		issues = append(issues, issue.Issue{
			ID:          "NJS-010",
			Analyzer:    a.Name(),
			Category:    issue.CategoryConfiguration,
			Severity:    issue.SeverityHigh,
			Title:       "next.config.* is nearly empty",
			Description: fmt.Sprintf("%s has less than 10 bytes of content.", configPath),
			File:        configPath,
			Suggestion:  "Add meaningful configuration to next.config",
		})
	}

	if content, err := snap.ReadFile("tsconfig.json"); err == nil {
		text := string(content)
		if !strings.Contains(text, "\"strict\": true") && !strings.Contains(text, "\"strict\":true") {
			issues = append(issues, issue.Issue{
				ID:          "NJS-011",
				Analyzer:    a.Name(),
				Category:    issue.CategoryConfiguration,
				Severity:    issue.SeverityMedium,
				Title:       "tsconfig.json missing strict mode",
				Description: "tsconfig.json exists but \"strict\": true is not set.",
				File:        "tsconfig.json",
				Suggestion:  "Add \"strict\": true to compilerOptions in tsconfig.json",
				AutoFixable: true,
			})
		}
	}

	if configPath != "" {
		if !strings.Contains(configContent, "images") {
			issues = append(issues, issue.Issue{
				ID:          "NJS-012",
				Analyzer:    a.Name(),
				Category:    issue.CategoryConfiguration,
				Severity:    issue.SeverityLow,
				Title:       "next.config.* missing images config",
				Description: "next.config does not configure images optimization.",
				File:        configPath,
				Suggestion:  "Add images configuration for optimized image handling",
			})
		}
		if !strings.Contains(configContent, "reactStrictMode") {
			issues = append(issues, issue.Issue{
				ID:          "NJS-013",
				Analyzer:    a.Name(),
				Category:    issue.CategoryConfiguration,
				Severity:    issue.SeverityMedium,
				Title:       "next.config.* missing reactStrictMode",
				Description: "reactStrictMode: true is not set in next.config. It helps catch common React bugs.",
				File:        configPath,
				Suggestion:  "Add reactStrictMode: true to next.config",
				AutoFixable: true,
			})
		}
	}

	if content, err := snap.ReadFile(".gitignore"); err == nil {
		hasEnvLocal := false
		for _, line := range strings.Split(string(content), "\n") {
			switch strings.TrimSpace(line) {
			case ".env.local", ".env*.local", ".env.*":
				hasEnvLocal = true
			}
		}
		if !hasEnvLocal {
			issues = append(issues, issue.Issue{
				ID:          "NJS-050",
				Analyzer:    a.Name(),
				Category:    issue.CategoryConfiguration,
				Severity:    issue.SeverityMedium,
				Title:       ".gitignore missing .env.local",
				Description: ".gitignore should include .env.local or .env*.local to prevent leaking secrets.",
				File:        ".gitignore",
				Suggestion:  "Add .env*.local to .gitignore",
				AutoFixable: true,
			})
		}
	}

	return issues
}

func (a *NextJS) checkDependencies(pkg *project.Manifest) []issue.Issue {
	var issues []issue.Issue

	var missing []string
	for _, dep := range []string{"next", "react", "react-dom"} {
		if !pkg.Has("dependencies", dep) {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		issues = append(issues, issue.Issue{
			ID:          "NJS-020",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityHigh,
			Title:       fmt.Sprintf("Missing core dependencies: %s", strings.Join(missing, ", ")),
			Description: fmt.Sprintf("package.json is missing %s in dependencies.", strings.Join(missing, ", ")),
			File:        "package.json",
			Suggestion:  fmt.Sprintf("Run `npm install %s`", strings.Join(missing, " ")),
		})
	}

	version, ok := pkg.String("dependencies", "next")
	if !ok {
		version, _ = pkg.String("devDependencies", "next")
	}
	if version != "" {
		if major, ok := parseMajorVersion(version); ok && major < 14 {
			issues = append(issues, issue.Issue{
				ID:          "NJS-021",
				Analyzer:    a.Name(),
				Category:    issue.CategoryDependencies,
				Severity:    issue.SeverityHigh,
				Title:       fmt.Sprintf("Outdated Next.js version (v%d)", major),
				Description: fmt.Sprintf("Next.js version %s is below v14. Consider upgrading for App Router stability and performance.", version),
				File:        "package.json",
				Suggestion:  "Upgrade to Next.js 14+ for latest features and security fixes",
			})
		}
	}

	var heavy []string
	for _, dep := range []string{"moment", "lodash"} {
		if pkg.Has("dependencies", dep) {
			heavy = append(heavy, dep)
		}
	}
	if len(heavy) > 0 {
		issues = append(issues, issue.Issue{
			ID:          "NJS-022",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityLow,
			Title:       fmt.Sprintf("Heavy bundle dependencies: %s", strings.Join(heavy, ", ")),
			Description: fmt.Sprintf("%s are large packages that increase bundle size. Consider lighter alternatives.", strings.Join(heavy, ", ")),
			File:        "package.json",
			Suggestion:  "Use date-fns instead of moment, lodash-es or individual lodash imports instead of lodash",
		})
	}

	return issues
}

var nextTestConfigs = []string{
	"jest.config.js", "jest.config.ts", "jest.config.mjs",
	"vitest.config.js", "vitest.config.ts", "vitest.config.mjs",
	"cypress.config.js", "cypress.config.ts", "cypress.config.mjs",
}

var nextTestLibs = []string{
	"jest", "vitest", "@testing-library/react", "@testing-library/jest-dom",
	"cypress", "playwright", "@playwright/test",
}

func (a *NextJS) checkTesting(snap *project.Snapshot, pkg *project.Manifest) []issue.Issue {
	var issues []issue.Issue

	if !hasAnyFile(snap, nextTestConfigs) {
		issues = append(issues, issue.Issue{
			ID:          "NJS-030",
			Analyzer:    a.Name(),
			Category:    issue.CategoryTesting,
			Severity:    issue.SeverityHigh,
			Title:       "No test framework configuration found",
			Description: "No jest, vitest, or cypress config file found.",
			Suggestion:  "Set up a testing framework (Jest, Vitest, or Cypress)",
		})
	}

	hasDir := false
	for _, d := range []string{"__tests__", "tests", "test", "cypress"} {
		if snap.IsDir(d) {
			hasDir = true
			break
		}
	}
	if !hasDir {
		issues = append(issues, issue.Issue{
			ID:          "NJS-031",
			Analyzer:    a.Name(),
			Category:    issue.CategoryTesting,
			Severity:    issue.SeverityMedium,
			Title:       "No test directory found",
			Description: "No __tests__/, tests/, test/, or cypress/ directory found.",
			Suggestion:  "Create a test directory and add automated tests",
			AutoFixable: true,
		})
	}

	if pkg != nil {
		hasLib := false
		for _, lib := range nextTestLibs {
			if pkg.Has("dependencies", lib) || pkg.Has("devDependencies", lib) {
				hasLib = true
				break
			}
		}
		if !hasLib {
			issues = append(issues, issue.Issue{
				ID:          "NJS-032",
				Analyzer:    a.Name(),
				Category:    issue.CategoryTesting,
				Severity:    issue.SeverityMedium,
				Title:       "No testing library in dependencies",
				Description: "No testing library (jest, vitest, testing-library, cypress, playwright) found in package.json.",
				File:        "package.json",
				Suggestion:  "Install a testing library: npm install --save-dev jest @testing-library/react",
			})
		}
	}

	return issues
}

func (a *NextJS) checkSecurity(snap *project.Snapshot, configPath, configContent string) []issue.Issue {
	var issues []issue.Issue

	if found := a.findPublicEnvSecret(snap); found != nil {
		issues = append(issues, *found)
	}

	if configPath != "" && !strings.Contains(configContent, "headers") {
		issues = append(issues, issue.Issue{
			ID:          "NJS-041",
			Analyzer:    a.Name(),
			Category:    issue.CategorySecurity,
			Severity:    issue.SeverityMedium,
			Title:       "next.config.* missing security headers",
			Description: "next.config does not define custom headers. Security headers (CSP, HSTS, etc.) are important.",
			File:        configPath,
			Suggestion:  "Add a headers() function to next.config with security headers",
		})
	}

	if found := a.findUnsafeInnerHTML(snap); found != nil {
		issues = append(issues, *found)
	}

	return issues
}

var sensitiveEnvSuffixes = []string{"SECRET", "PASSWORD", "KEY", "TOKEN"}

// findPublicEnvSecret reports the first NEXT_PUBLIC_ variable with a
// sensitive suffix. One finding is enough to prompt a review.
func (a *NextJS) findPublicEnvSecret(snap *project.Snapshot) *issue.Issue {
	for _, dir := range nextSourceDirs {
		for _, rel := range snap.FilesUnder(dir) {
			if !hasAnySuffix(rel, ".tsx", ".jsx", ".ts", ".js") {
				continue
			}
			content, err := snap.ReadFile(rel)
			if err != nil {
				continue
			}
			for i, line := range strings.Split(string(content), "\n") {
				for _, match := range publicEnvRe.FindAllStringSubmatch(line, -1) {
					envName := match[1]
					for _, suffix := range sensitiveEnvSuffixes {
						if !strings.HasSuffix(strings.ToUpper(envName), suffix) {
							continue
						}
						return &issue.Issue{
							ID:          "NJS-040",
							Analyzer:    a.Name(),
							Category:    issue.CategorySecurity,
							Severity:    issue.SeverityHigh,
							Title:       fmt.Sprintf("NEXT_PUBLIC_ env with sensitive suffix: %s", envName),
							Description: fmt.Sprintf("NEXT_PUBLIC_%s in %s exposes a potentially sensitive value to the client.", envName, rel),
							File:        rel,
							Line:        i + 1,
							Suggestion:  "Remove NEXT_PUBLIC_ prefix for sensitive values; access them server-side only",
						}
					}
				}
			}
		}
	}
	return nil
}

func (a *NextJS) findUnsafeInnerHTML(snap *project.Snapshot) *issue.Issue {
	for _, dir := range nextSourceDirs {
		for _, rel := range snap.FilesUnder(dir) {
			if !hasAnySuffix(rel, ".tsx", ".jsx") {
				continue
			}
			content, err := snap.ReadFile(rel)
			if err != nil {
				continue
			}
			for i, line := range strings.Split(string(content), "\n") {
				if strings.Contains(line, "dangerouslySetInner") {
					return &issue.Issue{
						ID:          "NJS-042",
						Analyzer:    a.Name(),
						Category:    issue.CategorySecurity,
						Severity:    issue.SeverityHigh,
						Title:       "Unsafe innerHTML usage found",
						Description: fmt.Sprintf("Unsafe innerHTML usage in %s can lead to XSS vulnerabilities.", rel),
						File:        rel,
						Line:        i + 1,
						Suggestion:  "Sanitize HTML content or use a safe rendering approach",
					}
				}
			}
		}
	}
	return nil
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
