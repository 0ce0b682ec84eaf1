package llr

import (
	"encoding/json"
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/slint-go/slint"
)

// Exporter writes a Unit as JSON or YAML. It embeds the emitter base so a
// sticky error carries across calls.
type Exporter struct {
	slint.Generator
	Unit *Unit
}

func NewExporter(unit *Unit, config *slint.Data) *Exporter {
	return &Exporter{
		Generator: slint.Generator{Config: config},
		Unit:      unit,
	}
}

// JSON renders the unit as indented JSON.
func (ex *Exporter) JSON() string {
	if ex.Err != nil {
		return ""
	}
	data, err := json.MarshalIndent(ex.Unit, "", "  ")
	if err != nil {
		ex.Err = err
		return ""
	}
	ex.Begin()
	ex.Emit(string(data))
	ex.Emit("\n")
	return ex.End()
}

// YAML renders the unit as YAML.
func (ex *Exporter) YAML() string {
	if ex.Err != nil {
		return ""
	}
	data, err := yaml.Marshal(ex.Unit)
	if err != nil {
		ex.Err = err
		return ""
	}
	ex.Begin()
	ex.Emit(string(data))
	return ex.End()
}

// Export renders the unit in the given format and writes it to path, or
// returns the text when path is empty.
func (ex *Exporter) Export(format, path string) (string, error) {
	var content string
	switch format {
	case "json", "":
		content = ex.JSON()
	case "yaml":
		content = ex.YAML()
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
	if ex.Err != nil {
		return "", ex.Err
	}
	if path != "" {
		ex.WriteFile(path, content)
	}
	return content, ex.Err
}

// Load parses a serialized unit back, accepting both JSON and YAML.
func Load(data []byte) (*Unit, error) {
	var unit Unit
	if err := yaml.Unmarshal(data, &unit); err != nil {
		return nil, err
	}
	return &unit, nil
}
