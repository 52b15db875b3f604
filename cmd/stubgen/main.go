package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/am"
	"github.com/teranos/stubgen/cmd/stubgen/commands"
	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "stubgen",
	Short: "Generate Python type stubs for FreeCAD",
	Long: `stubgen - Python type stubs for the FreeCAD source tree.

Reads the XML class declarations (*Py.xml) and PyCXX bindings of a FreeCAD
checkout and writes one __init__.pyi per Python module.

Available commands:
  generate - Generate stubs (optionally watching the source tree)
  check    - Report stubs that are missing or out of date
  config   - Create and inspect stubgen.toml
  version  - Show build information

Examples:
  stubgen generate --source ~/FreeCAD/src --output stubs
  stubgen generate --watch
  stubgen check
  stubgen config init`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")

		jsonOutput := false
		cfg, err := am.Load()
		if err == nil {
			jsonOutput = cfg.Log.JSON
			logger.SetTheme(cfg.GetLogTheme())
		}
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
