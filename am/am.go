// Package am holds the stubgen configuration.
//
// Values are merged from defaults, /etc/stubgen/config.toml,
// ~/.stubgen/config.toml, the nearest stubgen.toml above the working
// directory and STUBGEN_* environment variables, lowest to highest.
package am

// Config represents the stubgen configuration
type Config struct {
	SourceDir           string    `mapstructure:"source_dir" toml:"source_dir"`                       // FreeCAD src/ directory
	OutputDir           string    `mapstructure:"output_dir" toml:"output_dir"`                       // Root of the generated .pyi tree
	RegistryFile        string    `mapstructure:"registry_file" toml:"registry_file"`                 // Optional YAML class table overrides
	DocstringDebugNotes bool      `mapstructure:"docstring_debug_notes" toml:"docstring_debug_notes"` // Append generator notes to docstrings
	Exclude             []string  `mapstructure:"exclude" toml:"exclude"`                             // Glob patterns relative to source_dir
	Log                 LogConfig `mapstructure:"log" toml:"log"`
}

// LogConfig configures log output
type LogConfig struct {
	JSON  bool   `mapstructure:"json" toml:"json"`   // zap production JSON instead of console lines
	Theme string `mapstructure:"theme" toml:"theme"` // Console color theme: everforest, gruvbox
}

// File names
const (
	ProjectConfigName = "stubgen.toml"
	UserConfigDir     = ".stubgen"
	UserConfigName    = "config.toml"
	SystemConfigPath  = "/etc/stubgen/config.toml"
	EnvPrefix         = "STUBGEN"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
