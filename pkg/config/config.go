package config

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type Feature int

const (
	FeatKeywordOps Feature = iota
	FeatStreamCheck
	FeatDefinedCheck
	FeatDivZeroCheck
	FeatArgCheck
	FeatIndexCheck
	FeatReturnCheck
	FeatCaret
	FeatCount
)

type Warning int

const (
	WarnShadow Warning = iota
	WarnEmptyBody
	WarnUnreachableCode
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning
	// Stderr receives warnings; nil means os.Stderr
	Stderr io.Writer
}

func NewConfig() *Config {
	cfg := &Config{
		Features:   make(map[Feature]Info),
		Warnings:   make(map[Warning]Info),
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
		Stderr:     os.Stderr,
	}

	features := map[Feature]Info{
		FeatKeywordOps:   {"keyword-ops", true, "Accept 'and', 'or' and 'not' as operator spellings."},
		FeatStreamCheck:  {"stream-check", true, "Require <iostream> and 'using namespace std' for cin/cout/endl."},
		FeatDefinedCheck: {"defined-check", true, "Reject reads of variables that were never assigned."},
		FeatDivZeroCheck: {"div-zero-check", true, "Reject '/' and '%' by a literal zero."},
		FeatArgCheck:     {"arg-check", true, "Check argument count and types of function calls."},
		FeatIndexCheck:   {"index-check", true, "Reject literal array indexes outside the declared size."},
		FeatReturnCheck:  {"return-check", true, "Require non-void function bodies to end in 'return' or 'exit'."},
		FeatCaret:        {"caret", false, "Show the source line with a caret under diagnostics."},
	}

	warnings := map[Warning]Info{
		WarnShadow:          {"shadow", false, "Warn when a declaration hides a binding from an outer block."},
		WarnEmptyBody:       {"empty-body", true, "Warn when a loop body is a bare ';'."},
		WarnUnreachableCode: {"unreachable-code", true, "Warn about statements after return, exit, break or continue."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// Output returns the warning sink
func (c *Config) Output() io.Writer {
	if c.Stderr == nil {
		return os.Stderr
	}
	return c.Stderr
}

// SetFeatureByName is SetFeature keyed by the feature's flag name
func (c *Config) SetFeatureByName(name string, enabled bool) error {
	ft, ok := c.FeatureMap[name]
	if !ok {
		return fmt.Errorf("unknown feature '%s'", name)
	}
	c.SetFeature(ft, enabled)
	return nil
}

// SetWarningByName is SetWarning keyed by the warning's flag name
func (c *Config) SetWarningByName(name string, enabled bool) error {
	wt, ok := c.WarningMap[name]
	if !ok {
		return fmt.Errorf("unknown warning '%s'", name)
	}
	c.SetWarning(wt, enabled)
	return nil
}

// ApplyFlag handles -W<name>, -Wno-<name>, -F<name>, -Fno-<name>, -Wall and -Wno-all.
func (c *Config) ApplyFlag(flag string) error {
	trimmed := strings.TrimPrefix(flag, "-")
	var isWarning bool
	switch {
	case strings.HasPrefix(trimmed, "W"):
		isWarning = true
	case strings.HasPrefix(trimmed, "F"):
	default:
		return fmt.Errorf("unrecognized flag '%s'", flag)
	}
	name := trimmed[1:]
	enable := !strings.HasPrefix(name, "no-")
	name = strings.TrimPrefix(name, "no-")

	if name == "all" && isWarning {
		for i := Warning(0); i < WarnCount; i++ {
			c.SetWarning(i, enable)
		}
		return nil
	}
	if isWarning {
		return c.SetWarningByName(name, enable)
	}
	return c.SetFeatureByName(name, enable)
}
