package fleet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidVolume is returned for a -v/--volume argument the engine would reject.
var ErrInvalidVolume = errors.New("invalid volume spec")

// Mount is one parsed -v/--volume argument.
type Mount struct {
	// Source is a host path or a volume name. Empty for an anonymous volume.
	Source string
	Target string
	// Mode holds the comma-separated options after the target, e.g. "ro" or "ro,z".
	Mode string
}

// ReadOnly reports whether the mount is read-only.
func (m Mount) ReadOnly() bool {
	for _, opt := range strings.Split(m.Mode, ",") {
		if opt == "ro" {
			return true
		}
	}
	return false
}

// String renders the mount in engine bind format.
func (m Mount) String() string {
	s := m.Target
	if m.Source != "" {
		s = m.Source + ":" + s
	}
	if m.Mode != "" {
		s += ":" + m.Mode
	}
	return s
}

// ParseVolume parses "target", "source:target" or "source:target:mode".
// A leading ~ in a host path is expanded and relative host paths starting
// with . are made absolute.
func ParseVolume(raw string) (Mount, error) {
	parts := strings.Split(raw, ":")
	var m Mount
	switch len(parts) {
	case 1:
		m.Target = parts[0]
	case 2:
		m.Source, m.Target = parts[0], parts[1]
	case 3:
		m.Source, m.Target, m.Mode = parts[0], parts[1], parts[2]
	default:
		return Mount{}, fmt.Errorf("%w %q: too many fields", ErrInvalidVolume, raw)
	}

	if !strings.HasPrefix(m.Target, "/") {
		return Mount{}, fmt.Errorf("%w %q: container path must be absolute", ErrInvalidVolume, raw)
	}
	if len(parts) > 1 && m.Source == "" {
		return Mount{}, fmt.Errorf("%w %q: empty source", ErrInvalidVolume, raw)
	}

	source, err := expandPath(m.Source)
	if err != nil {
		return Mount{}, fmt.Errorf("%w %q: %w", ErrInvalidVolume, raw, err)
	}
	m.Source = source
	return m, nil
}

// ParseVolumes parses every argument and returns them in engine bind format.
func ParseVolumes(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	binds := make([]string, 0, len(raw))
	for _, r := range raw {
		m, err := ParseVolume(r)
		if err != nil {
			return nil, err
		}
		binds = append(binds, m.String())
	}
	return binds, nil
}

// expandPath expands ~ to the home directory and resolves ./ and ../ paths.
// Anything else, such as a named volume, is returned unchanged.
func expandPath(path string) (string, error) {
	switch {
	case path == "~" || strings.HasPrefix(path, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	case path == "." || strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../"):
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		return abs, nil
	}
	return path, nil
}
