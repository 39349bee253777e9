// SPDX-License-Identifier: Unlicense OR MIT

// Package config loads startup defaults from the per-application
// shell.yaml file. Explicit options passed by the embedding program
// always win over file values; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the on-disk startup configuration.
type File struct {
	// Backend selects the graphics backend: "raster" or "gpu".
	Backend string `yaml:"backend"`
	// VSync enables presentation synchronization where supported.
	VSync *bool `yaml:"vsync"`
	// Multisampling is the MSAA sample count, 0 to disable.
	Multisampling *int `yaml:"multisampling"`
	// HardwareAcceleration is "required", "preferred" or "off".
	HardwareAcceleration string `yaml:"hardware_acceleration"`
	// Theme is "light", "dark" or "system".
	Theme string `yaml:"theme"`
}

// Path returns the config file path for appID.
func Path(appID string) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appID, "shell.yaml"), nil
}

// Load reads the configuration for appID. A missing file yields the
// zero File and no error.
func Load(appID string) (File, error) {
	path, err := Path(appID)
	if err != nil {
		return File{}, err
	}
	return LoadPath(path)
}

// LoadPath reads a configuration file from an explicit path.
func LoadPath(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return File{}, nil
	}
	if err != nil {
		return File{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return File{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return f, nil
}
