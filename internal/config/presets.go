package config

// Built-in preset names.
const (
	PresetBalanced = "balanced"
	PresetStrict   = "strict"
	PresetMinimal  = "minimal"
)

// PresetNames returns the built-in preset names in display order.
func PresetNames() []string {
	return []string{PresetBalanced, PresetStrict, PresetMinimal}
}

// defaults is the layer every resolution starts from. It ships with no
// ignore globs: forbidden-path checks must see the whole tree, so only
// explicit config or CLI layers may exclude paths.
func defaults() File {
	return File{
		SeverityThreshold: "info",
		FailOn:            "high",
	}
}

var presets = map[string]File{
	// balanced is the defaults layer as-is.
	PresetBalanced: {},

	// strict surfaces only actionable findings and gates CI harder.
	PresetStrict: {
		SeverityThreshold: "low",
		FailOn:            "medium",
	},

	// minimal keeps the essential checks and quiets advisory output.
	PresetMinimal: {
		SeverityThreshold: "medium",
		FailOn:            "critical",
		Analyzers: map[string]AnalyzerFile{
			"documentation": {Enabled: boolPtr(false)},
		},
	},
}

func boolPtr(b bool) *bool { return &b }
