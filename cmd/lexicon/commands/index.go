package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abiiranathan/lexicon-sub000/pkg/ingest"
	"github.com/abiiranathan/lexicon-sub000/pkg/metrics"
	"github.com/abiiranathan/lexicon-sub000/pkg/store/postgres"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a directory tree of PDF files",
	Long: `index walks a directory tree, extracts and sanitises the text of
every PDF page and stores it for full-text search. Re-running over the same
tree is safe: existing pages are left untouched.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringP("root", "r", "", "directory tree to index")
	indexCmd.Flags().Int("min_pages", 4, "skip documents with fewer pages")
	indexCmd.Flags().Bool("dryrun", false, "scan and report without writing to the database")
	_ = indexCmd.MarkFlagRequired("root")

	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	root, _ := cmd.Flags().GetString("root")
	minPages, _ := cmd.Flags().GetInt("min_pages")
	dryRun, _ := cmd.Flags().GetBool("dryrun")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !dryRun {
		if err := postgres.Migrate(cfg.PGConn); err != nil {
			return err
		}
	}

	indexer := ingest.NewIndexer(cfg.PGConn, metrics.NewIngestMetrics())
	return indexer.Run(ctx, ingest.Options{
		Root:     root,
		MinPages: minPages,
		DryRun:   dryRun,
	})
}
