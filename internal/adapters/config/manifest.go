package config

import (
	"encoding/json"

	"go.trai.ch/esmx/internal/core/domain"
)

// Manifest is the subset of a dependency manifest (package.json) the
// resolver consumes.
type Manifest struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Main             string            `json:"main"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
	// Field is the nested activation field (domain.ManifestFieldName).
	Field json.RawMessage `json:"esmx"`
}

// optionsField extracts the activation settings carried in the manifest's
// nested field, when present. The field may be an options record, a bare
// mode string, or a boolean opt-in.
func (m *Manifest) optionsField() (domain.RawOptions, bool) {
	if len(m.Field) == 0 || string(m.Field) == "null" {
		return nil, false
	}

	var v any
	if err := json.Unmarshal(m.Field, &v); err != nil {
		return nil, false
	}
	switch val := v.(type) {
	case map[string]any:
		return domain.RawOptions(val), true
	case string:
		return domain.RawOptions{"mode": val}, true
	case bool:
		if val {
			return domain.RawOptions{}, true
		}
	}
	return nil, false
}

// versionRange extracts the declared version constraint for the tool, in
// fixed priority order: direct dependencies, then peer dependencies. A
// development-only declaration counts only when configFound is set: a dev
// dependency alone, with no explicit activation, does not imply activation.
func (m *Manifest) versionRange(configFound bool) string {
	if v, ok := m.Dependencies[domain.ToolPackageName]; ok {
		return v
	}
	if v, ok := m.PeerDependencies[domain.ToolPackageName]; ok {
		return v
	}
	if _, ok := m.DevDependencies[domain.ToolPackageName]; ok && configFound {
		return domain.RangeAll
	}
	return ""
}
