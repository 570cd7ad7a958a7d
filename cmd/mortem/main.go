// cmd/mortem/main.go
//
// This is the entry point for the mortem CLI.
//
// Commands:
//   init      create .mortem/ with a default config.yaml
//   generate  render one reflection into an SVG artifact
//   decode    recover the reflection hidden in an SVG
//   check     verify every artifact in the output directory
//   preview   step through a lifetime interactively
//   watch     render request files as they land in the inbox
//   journal   show the most recent renders

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingrea/mortem/internal/config"
	"github.com/kingrea/mortem/internal/logbook"
	"github.com/kingrea/mortem/internal/logging"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	project string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "mortem",
		Short: "Render an agent's reflections as generative art",
		Long: `mortem turns a reflection and the agent's position in its lifetime into a
deterministic SVG illustration that carries the reflection text hidden in
its particle coordinates.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.project, "project", "C", "", "Project directory (default: current)")

	root.AddCommand(
		newInitCmd(opts),
		newGenerateCmd(opts),
		newDecodeCmd(),
		newCheckCmd(opts),
		newPreviewCmd(opts),
		newWatchCmd(opts),
		newJournalCmd(opts),
	)
	return root
}

// projectDir resolves --project, defaulting to the working directory.
func (o *rootOptions) projectDir() (string, error) {
	if o.project != "" {
		return o.project, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return cwd, nil
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	dir, err := o.projectDir()
	if err != nil {
		return nil, err
	}
	return config.NewConfig(dir)
}

// openLogger returns a nil-safe logger; a log file that cannot be opened
// never blocks rendering.
func openLogger(cfg *config.Config, cmd *cobra.Command) *logging.Logger {
	logger, err := logging.New(cfg.LogsDir())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		return nil
	}
	return logger
}

// openJournal returns the render journal, or nil when it cannot be created.
func openJournal(cfg *config.Config, cmd *cobra.Command) *logbook.Logbook {
	journal, err := logbook.New(filepath.Join(cfg.LogsDir(), logbook.FileName))
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: open journal: %v\n", err)
		return nil
	}
	return journal
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
