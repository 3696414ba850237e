package config

import "github.com/minicpp/minicpp/pkg/cli"

// Switches holds the command-line switches registered by SetupFlagGroups
type Switches struct {
	All      bool
	NoAll    bool
	Warnings []cli.FlagGroupEntry
	Features []cli.FlagGroupEntry
}

// SetupFlagGroups registers -Wall, -Wno-all, -W<name>/-Wno-<name> and
// -F<name>/-Fno-<name> on fs. Group entries are indexed by Warning and Feature.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) *Switches {
	sw := &Switches{}
	fs.Bool(&sw.All, "Wall", "", false, "Enable all warnings")
	fs.Bool(&sw.NoAll, "Wno-all", "", false, "Disable all warnings")
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		sw.Warnings = append(sw.Warnings, cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description, Default: info.Enabled,
			Enabled: new(bool), Disabled: new(bool),
		})
	}
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		sw.Features = append(sw.Features, cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description, Default: info.Enabled,
			Enabled: new(bool), Disabled: new(bool),
		})
	}
	fs.AddFlagGroup("Warning Flags", "Enable or disable specific warnings", "warning", "Available Warnings:", sw.Warnings)
	fs.AddFlagGroup("Feature Flags", "Enable or disable front end features", "feature", "Available Features:", sw.Features)
	return sw
}

// ApplyFlagGroups copies parsed switches into c. -Wall and -Wno-all go
// first so a specific -W<name> or -Wno-<name> overrides them; within a
// group disabling wins over enabling.
func (c *Config) ApplyFlagGroups(sw *Switches) error {
	if sw.All {
		if err := c.ApplyFlag("-Wall"); err != nil {
			return err
		}
	}
	if sw.NoAll {
		if err := c.ApplyFlag("-Wno-all"); err != nil {
			return err
		}
	}
	for i, entry := range sw.Warnings {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, entry := range sw.Features {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
	return nil
}
