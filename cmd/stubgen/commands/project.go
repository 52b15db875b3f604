package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/am"
	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/registry"
	"github.com/teranos/stubgen/stubgen"
)

// projectFlags are shared by generate and check.
type projectFlags struct {
	source     string
	output     string
	registry   string
	exclude    []string
	debugNotes bool
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "FreeCAD src/ directory (overrides source_dir)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output directory (overrides output_dir)")
	cmd.Flags().StringVar(&f.registry, "registry", "", "YAML class table overrides (overrides registry_file)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Glob patterns to skip, relative to the source directory (added to exclude)")
	cmd.Flags().BoolVar(&f.debugNotes, "debug-notes", false, "Append generator notes to every docstring")
}

// apply returns a copy of cfg with the flags set on cmd taking precedence.
func (f *projectFlags) apply(cmd *cobra.Command, cfg *am.Config) *am.Config {
	out := *cfg
	out.Exclude = append([]string(nil), cfg.Exclude...)

	flags := cmd.Flags()
	if flags.Changed("source") {
		out.SourceDir = f.source
	}
	if flags.Changed("output") {
		out.OutputDir = f.output
	}
	if flags.Changed("registry") {
		out.RegistryFile = f.registry
	}
	if flags.Changed("exclude") {
		out.Exclude = append(out.Exclude, f.exclude...)
	}
	if flags.Changed("debug-notes") {
		out.DocstringDebugNotes = f.debugNotes
	}
	return &out
}

// loadConfig loads, overrides and validates the configuration.
func (f *projectFlags) loadConfig(cmd *cobra.Command) (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	cfg = f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// newProject builds a generation project from cfg.
func newProject(cfg *am.Config) (*stubgen.Project, error) {
	reg := registry.Default()
	if cfg.RegistryFile != "" {
		table, err := registry.LoadTable(cfg.RegistryFile)
		if err != nil {
			return nil, err
		}
		reg = reg.WithOverrides(table)
	}

	return &stubgen.Project{
		SourceDir:  cfg.SourceDir,
		OutputDir:  cfg.OutputDir,
		Exclude:    cfg.Exclude,
		Registry:   reg,
		DebugNotes: cfg.DocstringDebugNotes,
		Log:        logger.ComponentLogger("stubgen"),
	}, nil
}
