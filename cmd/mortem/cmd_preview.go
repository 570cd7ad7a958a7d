package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/mortem/internal/artifact"
	"github.com/kingrea/mortem/internal/lifecycle"
	"github.com/kingrea/mortem/internal/tui"
)

func newPreviewCmd(root *rootOptions) *cobra.Command {
	var (
		text      string
		phase     string
		total     uint64
		remaining uint64
		step      uint64
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Step through a lifetime and watch the illustration change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			opts := tui.Options{
				Reflection: text,
				TotalBeats: total,
				Remaining:  remaining,
				Step:       step,
				Store:      artifact.NewStore(cfg.OutputDir(), artifact.WithManifest(cfg.WriteManifest())),
			}
			if opts.TotalBeats == 0 {
				opts.TotalBeats = cfg.TotalBeats()
			}
			if !cmd.Flags().Changed("remaining") {
				opts.Remaining = opts.TotalBeats
			}
			if phase != "" {
				if opts.Phase, err = lifecycle.ParsePhase(phase); err != nil {
					return err
				}
			}
			model, err := tui.NewPreview(opts)
			if err != nil {
				return err
			}
			if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("run preview: %w", err)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&text, "text", "t", "I was. I thought. I end.", "Reflection text")
	f.StringVar(&phase, "phase", "", "Pin the phase (default: follow life fraction)")
	f.Uint64Var(&total, "total", 0, "Total beats (default: lifecycle.total_beats)")
	f.Uint64Var(&remaining, "remaining", 0, "Starting beats remaining (default: total)")
	f.Uint64Var(&step, "step", 0, "Beats per arrow key (default: 1000)")
	return cmd
}
