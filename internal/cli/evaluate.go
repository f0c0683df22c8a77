package cli

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/evaluator"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
)

// thresholdLoader remembers the threshold of every index it loads so the
// stored run can record what each method was evaluated against.
type thresholdLoader struct {
	loader     evaluator.Loader
	mu         sync.Mutex
	thresholds map[faq.Method]float64
}

func (l *thresholdLoader) Load(method faq.Method) (*index.Payload, error) {
	p, err := l.loader.Load(method)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.thresholds[method] = p.Threshold
	l.mu.Unlock()
	return p, nil
}

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	var (
		method  string
		outPath string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Measure leave-one-out accuracy of trained indexes",
		Long: `Every stored pattern is used as a query with its own row excluded. The
top match counts as correct when it carries the same tag; a best score
below the index threshold counts as a fallback.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			methods, err := parseMethods(method)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("out") {
				outPath = cfg.Evaluation.OutPath
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Evaluation.Workers
			}
			if workers < 0 {
				return apperrors.Newf(apperrors.ErrInvalidInput, "workers must be >= 0, got %d", workers)
			}

			ctx := cmd.Context()
			rt := newRuntime(ctx, cfg, backends{postgres: true})
			defer rt.close()

			loader := &thresholdLoader{loader: rt, thresholds: make(map[faq.Method]float64)}
			results, err := evaluator.NewRunner(loader, workers, rt.metrics).Run(ctx, methods)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := evaluator.WriteTable(out, results); err != nil {
				return err
			}
			if outPath != "" {
				if err := evaluator.SaveCSV(outPath, results); err != nil {
					return err
				}
				fmt.Fprintf(out, "Saved CSV: %s\n", outPath)
			}

			if rt.pg != nil {
				store := evaluator.NewStore(rt.pg)
				if err := store.Migrate(ctx); err != nil {
					return err
				}
				runID := uuid.NewString()
				if err := store.SaveRun(ctx, runID, results, loader.thresholds); err != nil {
					return err
				}
				fmt.Fprintf(out, "Stored run: %s\n", runID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "all", "method to evaluate, a comma list or all")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "optional CSV output path, e.g. results/eval.csv")
	cmd.Flags().IntVar(&workers, "workers", 4, "parallel queries per method (0 evaluates sequentially)")
	return cmd
}
