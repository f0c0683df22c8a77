package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
)

func newTopicsCmd(root *rootOptions) *cobra.Command {
	var (
		method  string
		samples int
	)
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List the topics of a trained index with sample questions",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("method") {
				method = root.cfg.Chat.Method
			}
			m, err := faq.ParseMethod(method)
			if err != nil {
				return err
			}
			rt := newRuntime(cmd.Context(), root.cfg, backends{})
			defer rt.close()

			p, err := rt.loadPayload(m)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			summaries := faq.SummarizeTopics(p.Examples, samples)
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No examples found in the loaded index.")
				return nil
			}
			for _, s := range summaries {
				fmt.Fprintf(out, "- %s [%s] (%d questions)\n", faq.FormatTopicName(s.Topic), s.Topic, s.Questions)
				for _, sample := range s.Samples {
					fmt.Fprintf(out, "    • %s\n", sample)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "tfidf", "index to read topics from")
	cmd.Flags().IntVar(&samples, "samples", 3, "sample questions shown per topic")
	return cmd
}
