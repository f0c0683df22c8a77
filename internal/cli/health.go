package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/health"
)

func newHealthCmd(root *rootOptions) *cobra.Command {
	var (
		asJSON  bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check trained indexes and the configured backends",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt := newRuntime(ctx, root.cfg, backends{cache: true, postgres: true})
			defer rt.close()

			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			report := rt.checker.Run(checkCtx)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else if err := health.WriteText(out, report); err != nil {
				return err
			}
			if report.Status == health.StatusDown {
				return fmt.Errorf("unhealthy: at least one component is down")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "overall time limit for the checks")
	return cmd
}
