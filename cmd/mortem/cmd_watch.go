package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kingrea/mortem/internal/artifact"
	"github.com/kingrea/mortem/internal/watch"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Render request files as they land in the inbox",
		Long: `Watch the inbox (watch.inbox) for *.yaml request files. Each settled file is
rendered into the output directory and moved to inbox/done. Rejected requests
stay in the inbox and are reported in .mortem/logs/mortem.log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			logger := openLogger(cfg, cmd)
			defer logger.Close()

			w, err := watch.New(watch.Options{
				Inbox:      cfg.InboxDir(),
				Done:       cfg.DoneDir(),
				Debounce:   cfg.WatchDebounce(),
				TotalBeats: cfg.TotalBeats(),
				Network:    cfg.Network(),
				Store:      artifact.NewStore(cfg.OutputDir(), artifact.WithManifest(cfg.WriteManifest())),
				Logger:     logger.With("watch"),
				Journal:    openJournal(cfg, cmd),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			if once {
				if err := os.MkdirAll(cfg.InboxDir(), 0o755); err != nil {
					return err
				}
				outcomes, err := w.Drain(ctx)
				if err != nil {
					return err
				}
				for _, o := range outcomes {
					fmt.Fprintln(out, o.Artifact)
				}
				return reportRejected(w.Stats())
			}

			fmt.Fprintf(out, "watching %s (ctrl+c to stop)\n", cfg.InboxDir())
			if err := w.Run(ctx); err != nil {
				return err
			}
			stats := w.Stats()
			fmt.Fprintf(out, "rendered %d, rejected %d\n", stats.Rendered, stats.Rejected)
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Render what is already in the inbox and exit")
	return cmd
}

func reportRejected(stats watch.Stats) error {
	if stats.Rejected == 0 {
		return nil
	}
	return fmt.Errorf("%d request(s) rejected; last error: %s", stats.Rejected, stats.LastError)
}
