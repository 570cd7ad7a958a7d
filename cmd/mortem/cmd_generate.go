package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kingrea/mortem/internal/art"
	"github.com/kingrea/mortem/internal/artifact"
	"github.com/kingrea/mortem/internal/lifecycle"
)

type generateOptions struct {
	file      string
	text      string
	phase     string
	beat      uint64
	total     uint64
	remaining uint64
	timestamp string
	outDir    string
	stdout    bool

	txID    string
	wallet  string
	trust   float64
	network string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render one reflection into an SVG artifact",
		Long: `Render a reflection either from a request file (--file) or from flags.
Missing counters are derived: total defaults to lifecycle.total_beats,
remaining defaults to total minus beat, and phase follows the life fraction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "Request YAML file (- for stdin)")
	f.StringVarP(&opts.text, "text", "t", "", "Reflection text")
	f.StringVar(&opts.phase, "phase", "", "Lifecycle phase (default: derived from life fraction)")
	f.Uint64Var(&opts.beat, "beat", 0, "Beat number")
	f.Uint64Var(&opts.total, "total", 0, "Total beats (default: lifecycle.total_beats)")
	f.Uint64Var(&opts.remaining, "remaining", 0, "Beats remaining (default: total - beat)")
	f.StringVar(&opts.timestamp, "timestamp", "", "Timestamp recorded in the metadata block")
	f.StringVarP(&opts.outDir, "out", "o", "", "Output directory (default: output.dir)")
	f.BoolVar(&opts.stdout, "stdout", false, "Write the SVG to stdout instead of the output directory")
	f.StringVar(&opts.txID, "tx", "", "Chain transaction id")
	f.StringVar(&opts.wallet, "wallet", "", "Chain wallet address")
	f.Float64Var(&opts.trust, "trust", 0, "Chain trust score")
	f.StringVar(&opts.network, "network", "", "Chain network (default: chain.network)")
	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	req, source, err := opts.request(cmd, cfg.TotalBeats(), cfg.Network())
	if err != nil {
		return err
	}
	a, err := art.Generate(req)
	if err != nil {
		return err
	}
	if opts.stdout {
		_, err := io.WriteString(cmd.OutOrStdout(), a.Document)
		return err
	}

	logger := openLogger(cfg, cmd)
	defer logger.Close()
	log := logger.With("generate")

	dir := cfg.OutputDir()
	if opts.outDir != "" {
		dir = opts.outDir
	}
	store := artifact.NewStore(dir, artifact.WithManifest(cfg.WriteManifest()))
	path, err := store.Write(a, source)
	if err != nil {
		log.Event("failed", "artifact", a.Filename, "error", err)
		return err
	}
	log.Event("wrote", "path", path, "phase", a.Phase.Lower(), "hash", a.ContentHash, "units", a.Units, "source", source)
	openJournal(cfg, cmd).Record(a, source)
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", path)
	return nil
}

// request builds the request from --file or from flags. source names where it
// came from for the manifest.
func (o *generateOptions) request(cmd *cobra.Command, defaultTotal uint64, defaultNetwork string) (lifecycle.Request, string, error) {
	if o.file != "" {
		var (
			data []byte
			err  error
		)
		if o.file == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(o.file)
		}
		if err != nil {
			return lifecycle.Request{}, "", fmt.Errorf("read request: %w", err)
		}
		req, err := lifecycle.ParseRequest(data, defaultTotal)
		if err != nil {
			return lifecycle.Request{}, "", err
		}
		if req.Chain != nil && req.Chain.Network == "" {
			req.Chain.Network = defaultNetwork
		}
		return req, o.file, nil
	}

	if !cmd.Flags().Changed("text") {
		return lifecycle.Request{}, "", fmt.Errorf("either --text or --file is required")
	}
	raw := lifecycle.RequestFile{
		Reflection: o.text,
		Phase:      o.phase,
		Beat:       o.beat,
		TotalBeats: o.total,
		Timestamp:  o.timestamp,
	}
	if cmd.Flags().Changed("remaining") {
		remaining := o.remaining
		raw.BeatsRemaining = &remaining
	}
	if o.txID != "" || o.wallet != "" || cmd.Flags().Changed("trust") {
		network := o.network
		if network == "" {
			network = defaultNetwork
		}
		raw.Chain = &lifecycle.ChainMeta{
			TransactionID: o.txID,
			WalletAddress: o.wallet,
			TrustScore:    o.trust,
			Network:       network,
		}
	}
	req, err := raw.Resolve(defaultTotal)
	if err != nil {
		return lifecycle.Request{}, "", err
	}
	return req, "flags", nil
}
