package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/am"
	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/stubgen"
)

// GenerateCmd writes stubs for the configured source tree
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate Python stubs",
	Long: `Generate one __init__.pyi per Python module below the output directory.

Files that fail to generate are reported and skipped; the command still
succeeds so that the rest of the tree is usable.

With --watch the tree is regenerated after every change to a .xml, .cpp or
.h file, and after every change to the active stubgen.toml.

Examples:
  stubgen generate --source ~/FreeCAD/src --output stubs
  stubgen generate --exclude 'Mod/Test*' --debug-notes
  stubgen generate --watch`,
	RunE: runGenerate,
}

var (
	generateFlags projectFlags
	generateWatch bool
)

func init() {
	generateFlags.register(GenerateCmd)
	GenerateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate whenever sources or the config file change")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := generateFlags.loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if generateWatch {
		return watch(ctx, cmd, cfg)
	}

	p, err := newProject(cfg)
	if err != nil {
		return err
	}
	report, err := p.Generate(ctx)
	if err != nil {
		return errors.Wrap(err, "generation failed")
	}
	return printSummary(cmd.OutOrStdout(), report)
}

// watch regenerates on source changes. A change to the active config file
// restarts the watch with the reloaded configuration.
func watch(ctx context.Context, cmd *cobra.Command, cfg *am.Config) error {
	out := cmd.OutOrStdout()
	onReport := func(report *stubgen.Report, err error) {
		if err != nil {
			logger.Errorw("Regeneration failed", logger.FieldError, err)
			return
		}
		if err := printSummary(out, report); err != nil {
			logger.Warnw("Cannot print summary", logger.FieldError, err)
		}
	}

	for {
		p, err := newProject(cfg)
		if err != nil {
			return err
		}

		runCtx, cancel := context.WithCancel(ctx)
		reloaded := make(chan *am.Config, 1)
		cw := watchConfig(cancel, reloaded)

		pterm.Info.WithWriter(out).Printfln("Watching %s", cfg.SourceDir)
		err = p.Watch(runCtx, onReport)
		cancel()
		if cw != nil {
			cw.Stop()
		}
		if err != nil {
			return errors.Wrap(err, "watch failed")
		}
		if ctx.Err() != nil {
			return nil
		}

		select {
		case next := <-reloaded:
			cfg = generateFlags.apply(cmd, next)
			if err := cfg.Validate(); err != nil {
				return errors.Wrap(err, "reloaded configuration is invalid")
			}
			pterm.Info.WithWriter(out).Println("Configuration changed, restarting")
		default:
			return nil
		}
	}
}

// watchConfig starts a watcher on the active config file that cancels the
// current run on change. Returns nil when no config file is in use.
func watchConfig(cancel context.CancelFunc, reloaded chan<- *am.Config) *am.ConfigWatcher {
	path := am.ConfigFileUsed()
	if path == "" {
		return nil
	}
	cw, err := am.NewConfigWatcher(path)
	if err != nil {
		logger.Warnw("Config changes will not be picked up", logger.FieldFile, path, logger.FieldError, err)
		return nil
	}
	cw.OnReload(func(cfg *am.Config) error {
		select {
		case reloaded <- cfg:
		default:
		}
		cancel()
		return nil
	})
	cw.Start()
	return cw
}
