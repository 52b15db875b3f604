package am

import (
	"path/filepath"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return errors.WithHint(
			errors.New("source_dir cannot be empty"),
			"point source_dir at the src/ directory of a FreeCAD checkout")
	}
	if c.OutputDir == "" {
		return errors.New("output_dir cannot be empty")
	}
	if filepath.Clean(c.SourceDir) == filepath.Clean(c.OutputDir) {
		return errors.Newf("output_dir must differ from source_dir, both are %s", c.SourceDir)
	}

	for _, pattern := range c.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return errors.Wrapf(err, "invalid exclude pattern %q", pattern)
		}
	}

	// Empty theme means default
	if c.Log.Theme != "" && !logger.HasTheme(c.Log.Theme) {
		return errors.Newf("log.theme %q is not a known theme", c.Log.Theme)
	}

	return nil
}
