package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/errors"
)

// CheckCmd compares the stubs on disk with a fresh generation
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report stubs that are missing or out of date",
	Long: `Generate in memory and compare with the stubs below the output directory.

The source revision header line is ignored. Exits non-zero when any stub
file is missing or differs, which makes it suitable for CI.`,
	RunE: runCheck,
}

var checkFlags projectFlags

func init() {
	checkFlags.register(CheckCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := checkFlags.loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := newProject(cfg)
	if err != nil {
		return err
	}

	stale, report, err := p.Check(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "check failed")
	}

	out := cmd.OutOrStdout()
	if err := printSummary(out, report); err != nil {
		return err
	}
	printStale(out, stale)
	if len(stale) > 0 {
		return errors.WithHint(
			errors.Newf("%d stub files are out of date", len(stale)),
			"run 'stubgen generate' to refresh them")
	}
	return nil
}
