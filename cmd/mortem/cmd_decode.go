package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/mortem/internal/art"
	"github.com/kingrea/mortem/internal/stego"
)

func newDecodeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "decode [file.svg...]",
		Short: "Recover the reflection hidden in SVG artifacts",
		Long: `Decode reads each SVG (or stdin when no file or "-" is given) and prints
the recovered reflection. --format yaml or json prints the full decode result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"-"}
			}
			failed := 0
			for _, name := range args {
				data, err := readInput(cmd, name)
				if err != nil {
					return err
				}
				result := art.Decode(string(data))
				if !result.Success {
					failed++
				}
				if err := printResult(cmd.OutOrStdout(), format, name, result, len(args) > 1); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents did not decode", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, yaml or json")
	return cmd
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func printResult(w io.Writer, format, name string, result stego.Result, labelled bool) error {
	switch format {
	case "text":
		if labelled {
			fmt.Fprintf(w, "==> %s <==\n", name)
		}
		if !result.Success {
			_, err := fmt.Fprintf(w, "decode failed: %s\n", result.Reason)
			return err
		}
		_, err := fmt.Fprintln(w, result.Text)
		return err
	case "yaml":
		data, err := yaml.Marshal(map[string]stego.Result{name: result})
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			File string `json:"file"`
			stego.Result
		}{name, result})
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
