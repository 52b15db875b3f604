package am

import (
	"fmt"

	"github.com/spf13/viper"
)

// Default values
const (
	DefaultSourceDir = "src"
	DefaultOutputDir = "stubs"
	DefaultLogTheme  = "everforest"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source_dir", DefaultSourceDir)
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("registry_file", "")
	v.SetDefault("docstring_debug_notes", false)
	v.SetDefault("exclude", []string{})

	v.SetDefault("log.json", false)
	v.SetDefault("log.theme", DefaultLogTheme)
}

// Default returns the configuration produced by the defaults alone
func Default() *Config {
	return &Config{
		SourceDir: DefaultSourceDir,
		OutputDir: DefaultOutputDir,
		Exclude:   []string{},
		Log:       LogConfig{Theme: DefaultLogTheme},
	}
}

// GetLogTheme returns the log theme (default: everforest)
func (c *Config) GetLogTheme() string {
	if c.Log.Theme == "" {
		return DefaultLogTheme
	}
	return c.Log.Theme
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{SourceDir: %s, OutputDir: %s, Exclude: %d patterns, DebugNotes: %t}",
		c.SourceDir, c.OutputDir, len(c.Exclude), c.DocstringDebugNotes)
}
