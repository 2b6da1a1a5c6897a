package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"surveyhub/internal/model"
	"surveyhub/internal/reconcile"
	"surveyhub/internal/source"
)

var (
	previewFromDir string
	previewOutput  string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Reconcile the feeds without writing to the database",
	Long: `Reconcile the three feeds and print a summary. Feeds are fetched from
the configured URLs, or read from --from-dir (source1.json, source2.json,
source3.xml). Use --output to write the reconciled documents as JSON.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringVar(&previewFromDir, "from-dir", "", "Read feeds from a directory instead of the network")
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "Write reconciled documents to this path ('-' for stdout)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	var payloads *model.Payloads
	if previewFromDir != "" {
		payloads, err = source.LoadDir(previewFromDir)
	} else {
		client := source.NewClient(log,
			source.WithTimeout(cfg.Sources.Timeout),
			source.WithMaxRetries(cfg.Sources.MaxRetries),
		)
		fetcher := source.NewFetcher(client, source.Endpoints{
			First:  cfg.Sources.First,
			Second: cfg.Sources.Second,
			Third:  cfg.Sources.Third,
		}, nil, log)
		payloads, err = fetcher.FetchAll(cmd.Context())
	}
	if err != nil {
		return err
	}

	res, err := reconcile.NewEngine(log).Reconcile(payloads)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "entries:   source1=%d source2=%d source3=%d\n", res.Fetched.First, res.Fetched.Second, res.Fetched.Third)
	fmt.Fprintf(out, "skipped:   %d\n", res.Skipped)
	fmt.Fprintf(out, "questions: %d\n", res.Questions)
	fmt.Fprintf(out, "documents: %d\n", len(res.Documents))

	switch previewOutput {
	case "":
		return nil
	case "-":
		return writeDocuments(out, res.Documents)
	default:
		f, err := os.Create(previewOutput)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", previewOutput, err)
		}
		if err := writeDocuments(f, res.Documents); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}

func writeDocuments(w io.Writer, docs []model.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}
