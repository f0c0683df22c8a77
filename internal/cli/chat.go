package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/chat"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
)

func newChatCmd(root *rootOptions) *cobra.Command {
	var (
		method string
		topic  string
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Args:  usageArgs(cobra.NoArgs),
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

			stats := analytics.NewSessionStats()
			mt, err := rt.loadMatcher(m, matcherOptions{seed: seed, sinks: []analytics.Sink{stats}})
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			prompt := false
			if f, ok := in.(*os.File); ok {
				prompt = term.IsTerminal(int(f.Fd()))
			}
			session := chat.NewSession(mt, stats, in, cmd.OutOrStdout(), chat.Config{Topic: topic, Prompt: prompt})
			return session.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "tfidf", "retrieval method: tfidf, bow, bm25 or boolean")
	cmd.Flags().StringVarP(&topic, "topic", "t", "all", "initial topic filter")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for response selection (0 picks a random seed)")
	return cmd
}
