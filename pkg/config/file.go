package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultFiles are probed in the working directory when no --config is given
var DefaultFiles = []string{".minicpp.toml", ".minicpp.yaml", ".minicpp.yml"}

// FileSettings is the on-disk shape of a config file:
//
//	[features]
//	caret = true
//	[warnings]
//	shadow = true
type FileSettings struct {
	Features map[string]bool `toml:"features" yaml:"features"`
	Warnings map[string]bool `toml:"warnings" yaml:"warnings"`
}

// ParseSettings decodes content as TOML or YAML depending on the file extension of name
func ParseSettings(name string, content []byte) (*FileSettings, error) {
	var fs FileSettings
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &fs); err != nil {
			return nil, fmt.Errorf("%s: YAML parse error: %w", name, err)
		}
	case ".toml", "":
		if _, err := toml.Decode(string(content), &fs); err != nil {
			return nil, fmt.Errorf("%s: TOML parse error: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported config format '%s'", name, filepath.Ext(name))
	}
	return &fs, nil
}

// Apply copies the settings into c. Unknown names are an error.
func (fs *FileSettings) Apply(c *Config) error {
	for _, name := range sortedKeys(fs.Features) {
		if err := c.SetFeatureByName(name, fs.Features[name]); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(fs.Warnings) {
		if err := c.SetWarningByName(name, fs.Warnings[name]); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads a TOML or YAML settings file and applies it
func (c *Config) LoadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file '%s': %w", path, err)
	}
	fs, err := ParseSettings(path, content)
	if err != nil {
		return err
	}
	return fs.Apply(c)
}

// FindDefault returns the first of DefaultFiles present in dir, or ""
func FindDefault(dir string) string {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
