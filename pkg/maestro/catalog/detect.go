package catalog

import (
	"os"
	"path/filepath"
)

// Signature lists the marker files or directories that identify a project type.
type Signature struct {
	Type    string
	Markers []string
}

// Signatures are checked in order; a project may match several.
var Signatures = []Signature{
	{Type: "nodejs", Markers: []string{"package.json", "node_modules"}},
	{Type: "python", Markers: []string{"pyproject.toml", "setup.py", "setup.cfg", "Pipfile", "requirements.txt"}},
	{Type: "rust", Markers: []string{"Cargo.toml"}},
	{Type: "general", Markers: []string{"Makefile", "Dockerfile", "docker-compose.yml", "docker-compose.yaml", "CMakeLists.txt"}},
}

// Detection reports a matched project type and the first marker found.
type Detection struct {
	Type       string `json:"type" yaml:"type"`
	DetectedBy string `json:"detected_by" yaml:"detected_by"`
}

// DetectProjectTypes checks rootDir for each signature's markers. Only
// presence is tested; file contents are never read.
func DetectProjectTypes(rootDir string) []Detection {
	var out []Detection
	for _, sig := range Signatures {
		for _, marker := range sig.Markers {
			if _, err := os.Stat(filepath.Join(rootDir, marker)); err == nil {
				out = append(out, Detection{Type: sig.Type, DetectedBy: marker})
				break
			}
		}
	}
	return out
}

// DetectedIDs returns the preset ids of the given detections.
func DetectedIDs(ds []Detection) []string {
	ids := make([]string, len(ds))
	for i, d := range ds {
		ids[i] = d.Type
	}
	return ids
}
