// Package hostsettings loads named presets of host.Settings from YAML,
// mirroring the original engine's "ArrangeSettingsDb" idea of saved,
// distance-unit-aware scenarios without reintroducing any file-persistence
// responsibility into the core engine: loading is a pure function over an
// io.Reader, and the caller owns wherever the bytes came from.
package hostsettings

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/arrange/internal/host"
)

// yamlSettings mirrors host.Settings with yaml tags: host.Settings itself
// carries json tags for the engine's own Settings<->JSON boundary, and the
// two tag sets would collide on one struct (yaml.v3 ignores json tags), so
// scenario files get their own field names, snake_case to match.
type yamlSettings struct {
	DistanceFromObjectsMM float64 `yaml:"distance_from_objects"`
	DistanceFromBedMM     float64 `yaml:"distance_from_bed"`
	RotationsEnabled      bool    `yaml:"rotations_enabled"`
	GeometryHandling      string  `yaml:"geometry_handling"`
	ArrangeStrategy       string  `yaml:"arrange_strategy"`
	XLAlignment           string  `yaml:"xl_alignment"`
	Accuracy              float64 `yaml:"accuracy"`
	Seed                  int64   `yaml:"seed"`
}

func (y yamlSettings) toSettings() host.Settings {
	return host.Settings{
		DistanceFromObjectsMM: y.DistanceFromObjectsMM,
		DistanceFromBedMM:     y.DistanceFromBedMM,
		RotationsEnabled:      y.RotationsEnabled,
		GeometryHandling:      host.GeometryHandling(y.GeometryHandling),
		ArrangeStrategy:       host.ArrangeStrategy(y.ArrangeStrategy),
		XLAlignment:           host.XLAlignment(y.XLAlignment),
		Accuracy:              y.Accuracy,
		Seed:                  y.Seed,
	}
}

// Scenario is one named, loadable host.Settings preset.
type Scenario struct {
	Name     string       `yaml:"name"`
	Settings yamlSettings `yaml:"settings"`
}

// ScenarioSet is a named collection of scenarios, keyed by Scenario.Name.
type ScenarioSet struct {
	scenarios map[string]host.Settings
	order     []string
}

// yamlDocument is the on-disk shape a ScenarioSet is marshalled to/from.
type yamlDocument struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Load parses r as a YAML document of named scenarios and returns the set.
// It returns an error if the document is malformed or defines the same
// scenario name twice.
func Load(r io.Reader) (ScenarioSet, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return ScenarioSet{}, fmt.Errorf("hostsettings: reading scenarios: %w", err)
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return ScenarioSet{}, fmt.Errorf("hostsettings: parsing scenarios: %w", err)
	}

	set := ScenarioSet{scenarios: make(map[string]host.Settings, len(doc.Scenarios))}
	for _, s := range doc.Scenarios {
		if s.Name == "" {
			return ScenarioSet{}, fmt.Errorf("hostsettings: scenario with empty name")
		}
		if _, exists := set.scenarios[s.Name]; exists {
			return ScenarioSet{}, fmt.Errorf("hostsettings: duplicate scenario name %q", s.Name)
		}
		set.scenarios[s.Name] = s.Settings.toSettings()
		set.order = append(set.order, s.Name)
	}
	return set, nil
}

// Get returns the settings registered under name.
func (s ScenarioSet) Get(name string) (host.Settings, bool) {
	v, ok := s.scenarios[name]
	return v, ok
}

// Names returns every scenario name, in the order Load encountered them.
func (s ScenarioSet) Names() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of scenarios in the set.
func (s ScenarioSet) Len() int {
	return len(s.order)
}
