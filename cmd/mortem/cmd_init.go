package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/mortem/internal/config"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the .mortem directory and default config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := opts.projectDir()
			if err != nil {
				return err
			}
			if err := config.InitMortemDir(dir); err != nil {
				return fmt.Errorf("initialize %s: %w", config.MortemDir, err)
			}
			cfg, err := config.NewConfig(dir)
			if err != nil {
				return err
			}
			if outDir != "" {
				if err := cfg.SetOutputDir(outDir); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s\n", cfg.MortemProjectDir)
			fmt.Fprintf(cmd.OutOrStdout(), "artifacts go to %s\n", cfg.OutputDir())
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory to save as output.dir (relative to the project)")
	return cmd
}
