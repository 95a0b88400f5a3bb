// Package shellconfig loads the YAML configuration of the dev shell: the
// window the webview opens with, the bridge endpoint, and the sidecar dev
// server process.
package shellconfig

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/filipecabaco/ex-tauri-sub000/errors"
)

// Config is the root of the shell configuration file.
type Config struct {
	Window Window `yaml:"window"`
	Bridge Bridge `yaml:"bridge"`
	Dev    Dev    `yaml:"dev"`
}

// Window describes the shell window hosting the webview.
type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	URL    string `yaml:"url"`
}

// Bridge describes where the bridge socket is served.
type Bridge struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
}

// Dev describes the sidecar development server the shell supervises.
type Dev struct {
	Command []string          `yaml:"command"`
	Dir     string            `yaml:"dir"`
	Env     map[string]string `yaml:"env"`
	URL     string            `yaml:"url"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Window: Window{
			Title:  "App",
			Width:  800,
			Height: 600,
		},
		Bridge: Bridge{
			Addr: "127.0.0.1:9631",
			Path: "/bridge",
		},
	}
}

// Load reads, parses and validates the configuration at path. Missing
// optional fields fall back to defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("read %s", path).
			Cause(err).
			Build()
	}
	return Parse(data)
}

// Parse parses and validates raw YAML configuration.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Decode(errors.PhaseConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks invariants the rest of the shell relies on.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.InvalidInput(errors.PhaseConfig, "window dimensions must be positive")
	}
	if c.Bridge.Addr == "" {
		return errors.InvalidInput(errors.PhaseConfig, "bridge addr must not be empty")
	}
	if c.Bridge.Path == "" || c.Bridge.Path[0] != '/' {
		return errors.InvalidInput(errors.PhaseConfig, "bridge path must start with /")
	}
	return nil
}
