package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/laisky-support-bot/library/faq"
	"github.com/Laisky/laisky-support-bot/library/log"
)

var faqCMD = &cobra.Command{
	Use:   "faq",
	Short: "inspect the configured faq",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
}

var faqAskCMD = &cobra.Command{
	Use:   "ask <question...>",
	Short: "resolve one question against the faq",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, err := buildResolver(loadFAQSettings(sharedSettingsReader()))
		if err != nil {
			return errors.WithStack(err)
		}

		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return errors.WithStack(err)
		}

		return faqAsk(cmd.Context(), cmd.OutOrStdout(), resolver, strings.Join(args, " "), verbose)
	},
}

var faqCheckCMD = &cobra.Command{
	Use:   "check",
	Short: "load the faq source and report its status",
	Args:  gcmd.NoExtraArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, err := buildResolver(loadFAQSettings(sharedSettingsReader()))
		if err != nil {
			return errors.WithStack(err)
		}

		return faqCheck(cmd.Context(), cmd.OutOrStdout(), resolver)
	},
}

func init() {
	faqAskCMD.Flags().BoolP("verbose", "v", false, "print the score of every faq question")
	faqCMD.AddCommand(faqAskCMD, faqCheckCMD)
	rootCMD.AddCommand(faqCMD)
}

func faqAsk(ctx context.Context, w io.Writer, resolver *faq.Resolver, question string, verbose bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	result := resolver.Resolve(ctx, question)
	fmt.Fprintf(w, "source: %s\n", result.SourceStatus)
	fmt.Fprintf(w, "best score: %.4f (threshold %.4f)\n", result.Score, resolver.Threshold())
	if result.Found {
		fmt.Fprintf(w, "question: %s\n", result.Question)
		fmt.Fprintf(w, "answer: %s\n", result.Answer)
	} else {
		fmt.Fprintln(w, "no answer")
	}

	if !verbose {
		return nil
	}

	ranked, _ := resolver.Rank(ctx, question)
	for _, sc := range ranked {
		fmt.Fprintf(w, "  %.4f  %s\n", sc.Score, sc.Entry.Question)
	}

	return nil
}

// faqCheck returns an error when the source is unavailable or malformed
func faqCheck(ctx context.Context, w io.Writer, resolver *faq.Resolver) error {
	if ctx == nil {
		ctx = context.Background()
	}

	loaded := resolver.Load(ctx)
	fmt.Fprintf(w, "status: %s\n", loaded.Status)
	fmt.Fprintf(w, "entries: %d\n", len(loaded.Entries))
	if loaded.Status.Degraded() {
		return errors.Errorf("faq source is %s: %v", loaded.Status, loaded.Err)
	}

	return nil
}
