package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
)

type askResult struct {
	Method    string  `json:"method"`
	Answer    string  `json:"answer"`
	Score     float64 `json:"score"`
	Tag       string  `json:"tag,omitempty"`
	SourceURL string  `json:"source_url,omitempty"`
	Fallback  bool    `json:"fallback"`
}

func newAskCmd(root *rootOptions) *cobra.Command {
	var (
		method string
		topic  string
		seed   uint64
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question and exit",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if !cmd.Flags().Changed("method") {
				method = cfg.Chat.Method
			}
			if !cmd.Flags().Changed("topic") {
				topic = cfg.Chat.Topic
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Chat.Seed
			}
			m, err := faq.ParseMethod(method)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rt := newRuntime(ctx, cfg, backends{cache: true, analytics: true})
			defer rt.close()

			mt, err := rt.loadMatcher(m, matcherOptions{seed: seed})
			if err != nil {
				return err
			}
			resolved, err := faq.ResolveTopic(mt.Payload().Examples, topic)
			if err != nil {
				return err
			}

			ans := mt.Answer(ctx, strings.Join(args, " "), resolved)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(askResult{
					Method:    m.String(),
					Answer:    ans.Text,
					Score:     ans.Score,
					Tag:       ans.Tag,
					SourceURL: ans.SourceURL,
					Fallback:  ans.Fallback,
				})
			}
			fmt.Fprintln(out, ans.Text)
			fmt.Fprintf(out, "  score: %.3f\n", ans.Score)
			if ans.SourceURL != "" {
				fmt.Fprintf(out, "  source: %s\n", ans.SourceURL)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "tfidf", "retrieval method: tfidf, bow, bm25 or boolean")
	cmd.Flags().StringVarP(&topic, "topic", "t", "all", "restrict matching to one topic")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for response selection (0 picks a random seed)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the answer as JSON")
	return cmd
}
