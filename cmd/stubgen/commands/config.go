package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/stubgen/am"
	"github.com/teranos/stubgen/errors"
)

// ConfigCmd manages stubgen.toml
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Create and inspect the stubgen configuration",
	Long: `Create and inspect the stubgen configuration.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (STUBGEN_* prefix, e.g. STUBGEN_SOURCE_DIR)
3. Project config (stubgen.toml, searched upwards from the working directory)
4. User config (~/.stubgen/config.toml)
5. System config (/etc/stubgen/config.toml)
6. Default values

Examples:
  stubgen config init --source ~/FreeCAD/src
  stubgen config show --format yaml
  stubgen config where`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a stubgen.toml with default values",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where each setting comes from",
	RunE:  runConfigWhere,
}

var (
	configInitPath   string
	configInitForce  bool
	configInitSource string
	configInitOutput string
	configFormat     string
)

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", am.ProjectConfigName, "File to write")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing file (the old one is kept as .back1)")
	configInitCmd.Flags().StringVarP(&configInitSource, "source", "s", "", "FreeCAD src/ directory to record")
	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "", "Output directory to record")
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configWhereCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configInitPath); err == nil && !configInitForce {
		return errors.WithHint(
			errors.Newf("%s already exists", configInitPath),
			"pass --force to overwrite it")
	}

	cfg := am.Default()
	if configInitSource != "" {
		cfg.SourceDir = configInitSource
	}
	if configInitOutput != "" {
		cfg.OutputDir = configInitOutput
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	if err := am.WriteConfig(configInitPath, cfg); err != nil {
		return err
	}
	pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Wrote %s", configInitPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# stubgen configuration\n%s", data)

	case "toml":
		data, err := am.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(out, string(data))

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}
	return nil
}

func runConfigWhere(cmd *cobra.Command, args []string) error {
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return errors.Wrap(err, "failed to get config introspection")
	}

	out := cmd.OutOrStdout()
	if intro.ConfigFile != "" {
		pterm.Info.WithWriter(out).Printfln("Active config file: %s", intro.ConfigFile)
	} else {
		pterm.Info.WithWriter(out).Println("No config file found, using defaults and environment")
	}

	data := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, s := range intro.Settings {
		value := fmt.Sprintf("%v", s.Value)
		if len(value) > 50 {
			value = value[:47] + "..."
		}
		data = append(data, []string{s.Key, value, string(s.Source), s.SourcePath})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(out).Render()
}
