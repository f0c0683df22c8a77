package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/analytics"
	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/kafka"
)

func newStatsCmd(root *rootOptions) *cobra.Command {
	var (
		duration time.Duration
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate published chat events from Kafka",
		Long: `Consumes chat events from the configured Kafka topic and prints the
aggregate once the duration elapses or the command is interrupted. A zero
duration consumes until interrupted.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if !cfg.Kafka.Enabled {
				return apperrors.New(apperrors.ErrBackendDisabled, "chat statistics need kafka.enabled")
			}
			ctx := cmd.Context()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}
			rt := newRuntime(ctx, cfg, backends{})
			defer rt.close()

			stats := analytics.NewSessionStats()
			consumer := kafka.NewConsumer(cfg.Kafka, analytics.HandleMessage(stats))
			defer consumer.Close()
			handled, err := consumer.Run(ctx)
			if err != nil {
				return err
			}
			rt.logger.Info("chat events consumed", "events", handled, "topic", cfg.Kafka.Topic)
			return printStats(cmd, stats.Stats(), asJSON)
		},
	}
	cmd.Flags().DurationVarP(&duration, "duration", "d", 10*time.Second, "how long to consume (0 until interrupted)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the aggregate as JSON")
	return cmd
}

func printStats(cmd *cobra.Command, st analytics.Stats, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	fmt.Fprintf(out, "Queries:        %d (answered %d, fallbacks %d, empty %d)\n",
		st.Total, st.Answered, st.Fallbacks, st.EmptyQueries)
	fmt.Fprintf(out, "Fallback rate:  %.2f%%\n", st.FallbackRate*100)
	fmt.Fprintf(out, "Average score:  %.3f\n", st.AvgScore)
	fmt.Fprintf(out, "Latency:        avg %.2fms, p95 %.2fms\n", st.AvgLatencyMs, st.P95LatencyMs)
	fmt.Fprintf(out, "Cache hits:     %d\n", st.CacheHits)
	if len(st.TopTags) > 0 {
		fmt.Fprintln(out, "Top tags:")
		for _, q := range st.TopTags {
			fmt.Fprintf(out, "  %-30s %d\n", q.Query, q.Count)
		}
	}
	if len(st.UnansweredTop) > 0 {
		fmt.Fprintln(out, "Top unanswered:")
		for _, q := range st.UnansweredTop {
			fmt.Fprintf(out, "  %-30s %d\n", q.Query, q.Count)
		}
	}
	return nil
}
