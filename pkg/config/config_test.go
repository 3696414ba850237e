package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/minicpp/minicpp/pkg/cli"
)

func enabledFeatures(c *Config) map[string]bool {
	out := make(map[string]bool)
	for _, info := range c.Features {
		out[info.Name] = info.Enabled
	}
	return out
}

func enabledWarnings(c *Config) map[string]bool {
	out := make(map[string]bool)
	for _, info := range c.Warnings {
		out[info.Name] = info.Enabled
	}
	return out
}

func TestDefaults(t *testing.T) {
	c := NewConfig()
	wantFeatures := map[string]bool{
		"keyword-ops": true, "stream-check": true, "defined-check": true, "div-zero-check": true,
		"arg-check": true, "index-check": true, "return-check": true, "caret": false,
	}
	if diff := cmp.Diff(wantFeatures, enabledFeatures(c)); diff != "" {
		t.Errorf("features mismatch (-want +got):\n%s", diff)
	}
	wantWarnings := map[string]bool{"shadow": false, "empty-body": true, "unreachable-code": true}
	if diff := cmp.Diff(wantWarnings, enabledWarnings(c)); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyFlag(t *testing.T) {
	tests := []struct {
		flags    []string
		warning  Warning
		feature  Feature
		wantWarn bool
		wantFeat bool
	}{
		{[]string{"-Wshadow"}, WarnShadow, FeatCaret, true, false},
		{[]string{"-Wno-empty-body", "-Fcaret"}, WarnEmptyBody, FeatCaret, false, true},
		{[]string{"-Wall", "-Fno-arg-check"}, WarnShadow, FeatArgCheck, true, false},
		{[]string{"-Wall", "-Wno-all"}, WarnUnreachableCode, FeatKeywordOps, false, true},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.flags, " "), func(t *testing.T) {
			c := NewConfig()
			for _, f := range tt.flags {
				if err := c.ApplyFlag(f); err != nil {
					t.Fatalf("ApplyFlag(%q): %v", f, err)
				}
			}
			if got := c.IsWarningEnabled(tt.warning); got != tt.wantWarn {
				t.Errorf("warning %s = %v, want %v", c.Warnings[tt.warning].Name, got, tt.wantWarn)
			}
			if got := c.IsFeatureEnabled(tt.feature); got != tt.wantFeat {
				t.Errorf("feature %s = %v, want %v", c.Features[tt.feature].Name, got, tt.wantFeat)
			}
		})
	}

	c := NewConfig()
	for _, bad := range []string{"-Wnope", "-Fno-nope", "-Xcaret"} {
		if err := c.ApplyFlag(bad); err == nil {
			t.Errorf("ApplyFlag(%q) accepted an unknown flag", bad)
		}
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{".minicpp.toml", "[features]\ncaret = true\narg-check = false\n\n[warnings]\nshadow = true\n"},
		{".minicpp.yaml", "features:\n  caret: true\n  arg-check: false\nwarnings:\n  shadow: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if got := FindDefault(dir); got != path {
				t.Errorf("FindDefault() = %q, want %q", got, path)
			}
			c := NewConfig()
			if err := c.LoadFile(path); err != nil {
				t.Fatalf("LoadFile() error: %v", err)
			}
			if !c.IsFeatureEnabled(FeatCaret) || c.IsFeatureEnabled(FeatArgCheck) || !c.IsWarningEnabled(WarnShadow) {
				t.Errorf("settings not applied: features=%v warnings=%v", enabledFeatures(c), enabledWarnings(c))
			}
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"unknown.toml": "[features]\nteleport = true\n",
		"broken.yaml":  "features: [caret\n",
		"settings.ini": "caret=1\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := NewConfig().LoadFile(path); err == nil {
			t.Errorf("LoadFile(%s) succeeded", name)
		}
	}
	if err := NewConfig().LoadFile(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("LoadFile of a missing file succeeded")
	}
	if got := FindDefault(t.TempDir()); got != "" {
		t.Errorf("FindDefault() in an empty dir = %q", got)
	}
}

func TestFlagGroups(t *testing.T) {
	c := NewConfig()
	fs := cli.NewFlagSet("minicpp")
	sw := c.SetupFlagGroups(fs)
	if err := fs.Parse([]string{"-Wshadow", "-Fcaret", "-Fno-arg-check", "-Farg-check", "input.cpp"}); err != nil {
		t.Fatal(err)
	}
	if err := c.ApplyFlagGroups(sw); err != nil {
		t.Fatal(err)
	}

	if !c.IsWarningEnabled(WarnShadow) || !c.IsFeatureEnabled(FeatCaret) {
		t.Error("enabling switches were not applied")
	}
	if c.IsFeatureEnabled(FeatArgCheck) {
		t.Error("-Fno-arg-check must win over -Farg-check")
	}
	if diff := cmp.Diff([]string{"input.cpp"}, fs.Args()); diff != "" {
		t.Errorf("Args() mismatch (-want +got):\n%s", diff)
	}
}

func TestWallSwitches(t *testing.T) {
	tests := []struct {
		args []string
		want map[string]bool
	}{
		{[]string{"-Wall"}, map[string]bool{"shadow": true, "empty-body": true, "unreachable-code": true}},
		{[]string{"-Wno-shadow", "-Wall"}, map[string]bool{"shadow": false, "empty-body": true, "unreachable-code": true}},
		{[]string{"-Wno-all"}, map[string]bool{"shadow": false, "empty-body": false, "unreachable-code": false}},
		{[]string{"-Wno-all", "-Wempty-body"}, map[string]bool{"shadow": false, "empty-body": true, "unreachable-code": false}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			c := NewConfig()
			fs := cli.NewFlagSet("minicpp")
			sw := c.SetupFlagGroups(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if err := c.ApplyFlagGroups(sw); err != nil {
				t.Fatalf("ApplyFlagGroups: %v", err)
			}
			if diff := cmp.Diff(tt.want, enabledWarnings(c)); diff != "" {
				t.Errorf("warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
