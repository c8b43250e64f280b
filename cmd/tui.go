// Package cmd command line
package cmd

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Laisky/laisky-support-bot/cmd/tui"
	"github.com/Laisky/laisky-support-bot/library/log"
)

var tuiCMD = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive faq playground",
	Long: `Launch an interactive Terminal User Interface (TUI) to try questions
against the configured faq.

Every faq question is scored against what you type, the best candidate is
marked and shown with its answer when it clears the threshold.

Example:
  go run main.go tui -c settings.yml

Keyboard shortcuts:
  Enter       Score the question
  Esc         Clear
  Ctrl+C      Quit`,
	Args: gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	rootCMD.AddCommand(tuiCMD)
}

// runTUI starts the interactive Terminal User Interface and returns any start/run error.
func runTUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	resolver, err := buildResolver(loadFAQSettings(sharedSettingsReader()))
	if err != nil {
		return errors.WithStack(err)
	}

	p := tea.NewProgram(
		tui.NewModel(ctx, resolver),
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err = p.Run()
	return errors.WithStack(err)
}
