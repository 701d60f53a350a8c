package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ExportsFileName is the store-level export specification file, relative to
// the store's metadata directory.
const ExportsFileName = "exports.yaml"

// ExportSpec describes one aggregation job: an ordered list of gitignore-style
// source patterns and a destination file.
type ExportSpec struct {
	// Source patterns are evaluated in order; later patterns override
	// earlier verdicts and a '!' prefix flips a match back to exclusion.
	Source []string `yaml:"source"`

	// Destination is the merged output file. "~" is expanded.
	Destination string `yaml:"destination"`
}

// ExpandedDestination returns Destination with "~" expanded.
func (e ExportSpec) ExpandedDestination() string {
	return expandHome(e.Destination)
}

// ExportsPath returns the exports file path inside a store's metadata
// directory.
func ExportsPath(metaDir string) string {
	return filepath.Join(metaDir, ExportsFileName)
}

// LoadExports reads the export specification set for a store. A missing file
// yields an empty set, not an error.
func LoadExports(path string) (map[string]ExportSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]ExportSpec{}, nil
		}
		return nil, fmt.Errorf("read exports file %s: %w", path, err)
	}

	var specs map[string]ExportSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse exports file %s: %w", path, err)
	}
	if specs == nil {
		specs = map[string]ExportSpec{}
	}

	for name, spec := range specs {
		if spec.Destination == "" {
			return nil, fmt.Errorf("export %q: missing destination", name)
		}
		if len(spec.Source) == 0 {
			return nil, fmt.Errorf("export %q: missing source patterns", name)
		}
	}
	return specs, nil
}

// StarterExports is written by 'mmr init' as a commented example.
const StarterExports = `# Export specifications: name -> {source patterns, destination}.
#
# Patterns are gitignore-style, evaluated in order; '!' flips a match back
# to exclusion. Example:
#
# all_refs:
#   source:
#     - "/**"
#   destination: "~/refs/all.bib"
#
# cs_only:
#   source:
#     - "/cs/**"
#     - "!/cs/private/**"
#   destination: "~/refs/cs.bib"
`
