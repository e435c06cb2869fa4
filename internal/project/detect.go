package project

import "strings"

// Framework identifies the detected project type.
type Framework string

const (
	FrameworkSymfony   Framework = "Symfony"
	FrameworkLaravel   Framework = "Laravel"
	FrameworkFlutter   Framework = "Flutter"
	FrameworkNextJS    Framework = "Next.js"
	FrameworkRustCargo Framework = "Rust/Cargo"
	FrameworkNodeJS    Framework = "Node.js"
	FrameworkPython    Framework = "Python"
	FrameworkGeneric   Framework = "Generic"
)

// PackageManager tags the dependency tooling in use.
type PackageManager string

const (
	PackageManagerCargo    PackageManager = "cargo"
	PackageManagerComposer PackageManager = "composer"
	PackageManagerNpm      PackageManager = "npm"
	PackageManagerYarn     PackageManager = "yarn"
	PackageManagerPnpm     PackageManager = "pnpm"
	PackageManagerPip      PackageManager = "pip"
	PackageManagerPoetry   PackageManager = "poetry"
	PackageManagerPub      PackageManager = "pub"
)

// CIProvider identifies a recognized CI configuration.
type CIProvider string

const (
	CIGitHubActions CIProvider = "github-actions"
	CIGitLab        CIProvider = "gitlab-ci"
	CICircleCI      CIProvider = "circleci"
	CITravis        CIProvider = "travis-ci"
	CIJenkins       CIProvider = "jenkins"
)

// Detection is the framework detection result, produced once per scan.
type Detection struct {
	Framework      Framework      `json:"framework"`
	Version        string         `json:"version,omitempty"`
	PackageManager PackageManager `json:"package_manager,omitempty"`
	HasGit         bool           `json:"has_git"`
	CI             CIProvider     `json:"ci,omitempty"`
}

// Project bundles the snapshot with its detection result; this is the
// value every analyzer receives.
type Project struct {
	Snapshot *Snapshot
	Detected Detection
}

// New builds a Project by running detection over the snapshot.
func New(snap *Snapshot) *Project {
	return &Project{Snapshot: snap, Detected: Detect(snap)}
}

type indicator struct {
	path      string
	framework Framework
	pm        PackageManager
}

// Ordered most-specific first: symfony.lock must win over the
// package.json a Symfony project may also carry.
var indicators = []indicator{
	{"symfony.lock", FrameworkSymfony, PackageManagerComposer},
	{"config/bundles.php", FrameworkSymfony, PackageManagerComposer},
	{"artisan", FrameworkLaravel, PackageManagerComposer},
	{"pubspec.yaml", FrameworkFlutter, PackageManagerPub},
	{"next.config.js", FrameworkNextJS, ""},
	{"next.config.mjs", FrameworkNextJS, ""},
	{"next.config.ts", FrameworkNextJS, ""},
	{"Cargo.toml", FrameworkRustCargo, PackageManagerCargo},
	{"package.json", FrameworkNodeJS, ""},
	{"pyproject.toml", FrameworkPython, PackageManagerPoetry},
	{"requirements.txt", FrameworkPython, PackageManagerPip},
}

// Detect evaluates the ordered indicator list against the snapshot;
// the first match wins and Generic is the fallback. Pure: it reads
// nothing beyond what the snapshot already indexed.
func Detect(snap *Snapshot) Detection {
	det := Detection{
		Framework: FrameworkGeneric,
		HasGit:    snap.IsDir(".git"),
		CI:        detectCI(snap),
	}

	for _, ind := range indicators {
		if !snap.Exists(ind.path) {
			continue
		}
		det.Framework = ind.framework
		det.Version = detectVersion(snap, ind.framework)
		det.PackageManager = ind.pm
		if det.PackageManager == "" {
			det.PackageManager = detectNodePackageManager(snap)
		}
		return det
	}
	return det
}

func detectVersion(snap *Snapshot, fw Framework) string {
	switch fw {
	case FrameworkRustCargo:
		if v, ok := snap.Manifest("Cargo.toml").String("package", "version"); ok {
			return v
		}
	case FrameworkNodeJS, FrameworkNextJS:
		if v, ok := snap.Manifest("package.json").String("version"); ok {
			return v
		}
	case FrameworkFlutter:
		if v, ok := snap.Manifest("pubspec.yaml").String("version"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func detectNodePackageManager(snap *Snapshot) PackageManager {
	switch {
	case snap.HasFile("yarn.lock"):
		return PackageManagerYarn
	case snap.HasFile("pnpm-lock.yaml"):
		return PackageManagerPnpm
	case snap.HasFile("package-lock.json"):
		return PackageManagerNpm
	}
	return ""
}

func detectCI(snap *Snapshot) CIProvider {
	switch {
	case snap.IsDir(".github/workflows"):
		return CIGitHubActions
	case snap.HasFile(".gitlab-ci.yml"):
		return CIGitLab
	case snap.HasFile(".circleci/config.yml"):
		return CICircleCI
	case snap.HasFile(".travis.yml"):
		return CITravis
	case snap.HasFile("Jenkinsfile"):
		return CIJenkins
	}
	return ""
}
