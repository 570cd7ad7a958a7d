package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingrea/mortem/internal/artifact"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "check [file.svg...]",
		Short: "Verify artifacts decode and match their hash and manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			dir := cfg.OutputDir()
			if outDir != "" {
				dir = outDir
			}
			store := artifact.NewStore(dir)
			names := make([]string, 0, len(args))
			for _, arg := range args {
				names = append(names, filepath.Base(arg))
			}
			if len(names) == 0 {
				if names, err = store.List(); err != nil {
					return err
				}
			}
			bad := 0
			for _, name := range names {
				result, _ := store.Check(name)
				line := fmt.Sprintf("%-8s %s", result.State, name)
				if result.Err != nil {
					line += ": " + result.Err.Error()
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
				if result.State != artifact.StateReady {
					bad++
				}
			}
			if bad > 0 {
				return fmt.Errorf("%d of %d artifacts failed verification", bad, len(names))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: output.dir)")
	return cmd
}
