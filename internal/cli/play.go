package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"personality-quiz/internal/app"
	"personality-quiz/internal/config"
	"personality-quiz/internal/domain"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	resultStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

// NewPlayCmd runs the quiz interactively in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var store, session string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Answer the quiz in the terminal; progress is kept between runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("store") || cfg.Progress.Store == config.StoreMemory {
				cfg.Progress.Store = store
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			b, err := buildBackends(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.close()

			sessions := app.NewSessionService(b.quizzes, b.store, cfg.Quiz.Name, cfg.Progress.Key, slog.Default())
			engine, err := sessions.Open(ctx, session)
			if err != nil {
				return err
			}
			return playSession(ctx, engine, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&store, "store", config.StoreSQLite, "progress store (memory, sqlite, redis, postgres); a configured memory store is replaced by this value")
	cmd.Flags().StringVar(&session, "session", "", "session id appended to the progress key")
	return cmd
}

// playSession reads one command per line: an option number answers the
// current question, "r" restarts and "q" (or EOF) quits.
func playSession(ctx context.Context, engine *app.Engine, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, titleStyle.Render(engine.Title()))

	for {
		view := engine.View()
		switch view.Status {
		case domain.StatusEmpty:
			fmt.Fprintln(out, "This quiz has no questions.")
			return nil
		case domain.StatusFinished:
			if view.Result == "" {
				fmt.Fprintln(out, "No result could be determined.")
			} else {
				fmt.Fprintln(out, resultStyle.Render(view.Result))
			}
			fmt.Fprint(out, "[r] restart  [q] quit > ")
		default:
			renderQuestion(out, view)
		}

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		input := strings.TrimSpace(strings.ToLower(scanner.Text()))

		switch input {
		case "q", "quit":
			return nil
		case "r", "restart":
			engine.Reset(ctx)
			continue
		}

		if view.Question == nil {
			fmt.Fprintln(out, "Choose r or q.")
			continue
		}
		n, err := strconv.Atoi(input)
		if err != nil || n < 1 || n > len(view.Question.Options) {
			fmt.Fprintf(out, "Choose a number between 1 and %d.\n", len(view.Question.Options))
			continue
		}
		engine.SubmitAnswer(ctx, view.Question.ID, view.Question.Options[n-1].ID)
	}
}

func renderQuestion(out io.Writer, view domain.View) {
	fmt.Fprintln(out, progressStyle.Render(fmt.Sprintf("Question %d/%d (%d%%)", view.Index+1, view.Total, view.Percent)))
	fmt.Fprintln(out, view.Question.Text)
	for i, opt := range view.Question.Options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, opt.Text)
	}
	fmt.Fprint(out, "> ")
}
