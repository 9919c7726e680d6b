package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hydra-dynamix/erasmus/internal/adapters/watch"
)

var backupRulesFile bool

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Watch the planning files and merge on every change",
	Long:    "Watch the three live planning files for changes, debounce, and merge into the editor's rules file. Runs until interrupted.",
	GroupID: "daemon",
	Example: "  erasmus watch\n  erasmus watch --project ./myapp",
	RunE:    runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&backupRulesFile, "backup", false, "copy the rules file to <name>.old before the first write")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(ProjectRoot)
	if err != nil {
		return err
	}

	if backupRulesFile {
		if err := backupRulesFileIfPresent(d); err != nil {
			d.logger.Warn("backup failed, continuing without one", "error", err)
		}
	}

	if err := d.engine.Merge(cmd.Context()); err != nil {
		d.logger.Warn("initial merge failed, watching anyway", "error", err)
	}

	w := watch.New(d.resolver, d.engine, d.logger, d.debounce)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return err
	}
	d.report.PrintInfo("watching for changes, press Ctrl-C to stop")

	<-ctx.Done()
	return w.Stop()
}
