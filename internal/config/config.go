package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory
// and then in the user config directory.
const FileName = ".exnote.yaml"

// FileConfig is the content of .exnote.yaml. Pointer fields distinguish
// "absent" from the zero value.
type FileConfig struct {
	TracebackInfo *bool   `yaml:"traceback_info"`
	VerboseString *string `yaml:"verbose_string"`
	RemoveCache   *bool   `yaml:"remove_cache"`
	CommentMarker string  `yaml:"comment_marker"`
	Jobs          int     `yaml:"jobs"`
	NoColor       *bool   `yaml:"no_color"`
	Verbosity     int     `yaml:"verbosity"`
	LogFile       string  `yaml:"log_file"`
}

// LoadFile reads the configuration file at path. An empty path searches the
// default locations; finding nothing is not an error. The returned path is
// the file actually read, or "".
func LoadFile(path string) (*FileConfig, string, error) {
	if path == "" {
		path = getConfigPath()
		if path == "" {
			return &FileConfig{}, "", nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &FileConfig{}, "", nil
		}
		return nil, path, fmt.Errorf("reading config file %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, path, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &fc, path, nil
}

// getConfigPath checks the working directory first, then the user config
// directory (exnote/.exnote.yaml under it).
func getConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	configHome, err := os.UserConfigDir()
	// UserConfigDir can return "/" in stripped-down environments.
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, "exnote", FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}
