package report

import (
	"encoding/json"
	"fmt"
)

// jsonEnvelope wraps the report data with a schema marker so downstream
// tooling can detect format changes.
type jsonEnvelope struct {
	Schema string `json:"$schema"`
	Data
}

// Generate writes repodoctor/v1 envelope JSON output.
func (r *JSONReporter) Generate(data Data) error {
	enc := json.NewEncoder(r.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonEnvelope{Schema: "repodoctor/v1", Data: data}); err != nil {
		return fmt.Errorf("encode JSON report: %w", err)
	}
	return nil
}
