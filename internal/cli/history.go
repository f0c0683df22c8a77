package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/evaluator"
	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored evaluation runs",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !root.cfg.Postgres.Enabled {
				return apperrors.New(apperrors.ErrBackendDisabled, "evaluation history needs postgres.enabled")
			}
			if limit <= 0 {
				return apperrors.Newf(apperrors.ErrInvalidInput, "limit must be > 0, got %d", limit)
			}
			ctx := cmd.Context()
			rt := newRuntime(ctx, root.cfg, backends{postgres: true})
			defer rt.close()
			if rt.pg == nil {
				return fmt.Errorf("postgres at %s:%d is unreachable", root.cfg.Postgres.Host, root.cfg.Postgres.Port)
			}

			store := evaluator.NewStore(rt.pg)
			if err := store.Migrate(ctx); err != nil {
				return err
			}
			runs, err := store.LatestRuns(ctx, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "EVALUATED AT\tRUN\tMETHOD\tTOTAL\tACCURACY\tFALLBACK RATE\tTHRESHOLD")
			for _, run := range runs {
				threshold := "-"
				if run.Threshold.Valid {
					threshold = fmt.Sprintf("%.3f", run.Threshold.Float64)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f%%\t%.2f%%\t%s\n",
					run.EvaluatedAt.Local().Format(time.DateTime), shortID(run.RunID), run.Result.Method,
					run.Result.Total, run.Result.Accuracy()*100, run.Result.FallbackRate()*100, threshold)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of rows to show")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
