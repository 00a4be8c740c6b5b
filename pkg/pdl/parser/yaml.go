package parser

import (
	"gopkg.in/yaml.v3"
)

// yamlDocument is the intermediate shape a PDL file decodes into. Threshold
// and target-role entries stay as raw nodes so the builder can recover
// their source lines.
type yamlDocument struct {
	PDLVersion  string      `yaml:"pdl_version"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Thresholds  []yaml.Node `yaml:"thresholds"`
	TargetRoles []yaml.Node `yaml:"target_roles"`
	Skip        []string    `yaml:"skip"`
	Uncertainty []string    `yaml:"uncertainty"`
	Notes       []string    `yaml:"notes"`
}

// yamlThreshold is the decoded form of one thresholds entry.
type yamlThreshold struct {
	Field      string  `yaml:"field"`
	Comparison string  `yaml:"comparison"`
	Value      float64 `yaml:"value"`
}

// yamlTargetRole is the decoded form of one target_roles entry.
type yamlTargetRole struct {
	Size         string   `yaml:"size"`
	MinHeadcount *int     `yaml:"min_headcount"`
	MaxHeadcount *int     `yaml:"max_headcount"`
	Titles       []string `yaml:"titles"`
}

// parseYAMLBytes decodes PDL source into the intermediate document.
func parseYAMLBytes(data []byte) (*yamlDocument, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
