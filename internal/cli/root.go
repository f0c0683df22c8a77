// Package cli implements the faqbot command tree: training indexes,
// interactive chat, one-shot questions, evaluation and operational
// commands over the optional backends.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/logger"
)

// rootOptions carries persistent flags and the loaded config to
// subcommands.
type rootOptions struct {
	configPath string
	cfg        *config.Config
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "faqbot",
		Short: "Retrieval-based FAQ chatbot",
		Long: `faqbot answers questions by matching them against stored FAQ patterns.
Indexes are trained once per retrieval method (tfidf, bow, bm25, boolean)
and loaded by the chat, ask, topics and evaluate commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return apperrors.Newf(apperrors.ErrInvalidInput, "loading config: %v", err)
			}
			logger.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			opts.cfg = cfg
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return apperrors.New(apperrors.ErrInvalidInput, err.Error())
	})

	cmd.AddCommand(
		newTrainCmd(opts),
		newChatCmd(opts),
		newAskCmd(opts),
		newTopicsCmd(opts),
		newEvaluateCmd(opts),
		newHistoryCmd(opts),
		newHealthCmd(opts),
		newStatsCmd(opts),
	)
	return cmd
}

// Execute runs the command tree with args and returns the process exit
// code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return apperrors.ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.ExitOK
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return apperrors.ExitCode(err)
}

// usageArgs wraps a cobra positional-args validator so that violations map
// to the usage exit code.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return apperrors.New(apperrors.ErrInvalidInput, err.Error())
		}
		return nil
	}
}
