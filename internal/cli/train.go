package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer"
	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
)

func newTrainCmd(root *rootOptions) *cobra.Command {
	var (
		method    string
		threshold float64
		intents   string
		qaSources []string
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Build and save retrieval indexes",
		Long: `Loads the intents file and the Q/A CSV sources, builds the index for each
requested method and writes it to the artifacts directory. Cached match
decisions are invalidated afterwards.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			methods, err := parseMethods(method)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Training.Threshold
			}
			if threshold < 0 {
				return apperrors.Newf(apperrors.ErrInvalidInput, "threshold must be >= 0, got %v", threshold)
			}
			if !cmd.Flags().Changed("intents") {
				intents = cfg.Training.IntentsPath
			}
			if !cmd.Flags().Changed("qa-sources") {
				qaSources = cfg.Training.QASources
			}

			ctx := cmd.Context()
			rt := newRuntime(ctx, cfg, backends{cache: true})
			defer rt.close()

			summaries, err := indexer.NewTrainer(rt.store, rt.metrics).Train(ctx, methods,
				indexer.Sources{IntentsPath: intents, QASources: qaSources}, threshold)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range summaries {
				fmt.Fprintf(out, "Trained %-7s %d patterns (%d from CSV), %d vocabulary terms -> %s\n",
					s.Method, s.Patterns, s.FromCSV, s.Vocabulary, s.Path)
			}
			fmt.Fprintf(out, "Artifacts saved to: %s\n", rt.store.Dir())

			if rt.cache != nil {
				if err := rt.cache.Invalidate(ctx); err != nil {
					rt.logger.Warn("match cache invalidation failed", "error", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "all", "method to train: tfidf, bow, bm25, boolean, a comma list or all")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.25, "minimum match score stored into the index")
	cmd.Flags().StringVar(&intents, "intents", "", "intents JSON file (empty skips intents)")
	cmd.Flags().StringSliceVar(&qaSources, "qa-sources", nil, "Q/A CSV files or directories of *.csv")
	return cmd
}
