// Package config loads the optional mountaineer.toml file that carries the
// subset of BundleConfig fields worth pinning per-project, overlaying it
// onto CLI-flag defaults. Unknown keys are reported as warnings rather than
// failing the load, since a typo'd key should not be fatal to a build.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig is the project-local subset of BundleConfig that a
// mountaineer.toml file can pin. CLI flags passed to the core always take
// precedence over whatever this file sets.
type FileConfig struct {
	Environment     string `toml:"environment"`
	NodeModulesPath string `toml:"node_modules_path"`
	LogLevel        string `toml:"log_level"`
	Minify          bool   `toml:"minify"`
}

// Default returns the FileConfig used when no mountaineer.toml is present.
func Default() FileConfig {
	return FileConfig{
		Environment: "development",
		LogLevel:    "WARN",
		Minify:      false,
	}
}

// Load reads path, overlaying its values onto Default(). A missing file is
// not an error — the defaults are returned unchanged, since mountaineer.toml
// is always optional. A malformed file is an error. The second return value
// lists unrecognized keys as warnings, useful for surfacing typos without
// failing the build.
func Load(path string) (FileConfig, []string, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil, nil
		}
		return FileConfig{}, nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	var warnings []string
	for _, key := range meta.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("unknown config key: %s", key))
	}

	return cfg, warnings, nil
}
