package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikeboe/research-assistant/pkg/chat"
	"github.com/mikeboe/research-assistant/pkg/config"
	"github.com/mikeboe/research-assistant/pkg/logging"
	"github.com/mikeboe/research-assistant/pkg/render"
	"github.com/mikeboe/research-assistant/pkg/research"
	"github.com/mikeboe/research-assistant/pkg/session"
	"github.com/mikeboe/research-assistant/pkg/tui"
)

var version = "dev"

var (
	query      string
	strict     bool
	markdown   bool
	outputFile string
)

func main() {
	// It's okay if .env doesn't exist, as long as env vars are set
	_ = godotenv.Load()

	cfg := config.Load()

	// Logs go to stderr so the report on stdout stays clean.
	slog.SetDefault(slog.New(logging.NewHandler(os.Stderr, cfg.LogFormat, cfg.LogLevel)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:           "research-assistant",
		Short:         "A terminal-based research assistant",
		Long:          `research-assistant answers a research question with a Gemini agent that can search the web, read Wikipedia and save notes to a file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}

			q := query
			if !cmd.Flags().Changed("query") {
				q, err = readQuery(os.Stdin, os.Stdout)
				if err != nil {
					return err
				}
			}

			outcome, err := engine.Run(ctx, q, nil)
			if err != nil {
				return err
			}
			return render.Outcome(os.Stdout, outcome, render.Options{Markdown: markdown})
		},
	}

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive research chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			return tui.Run(ctx, engine, session.NewHistory())
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Require every field of the research result")
	rootCmd.PersistentFlags().StringVar(&outputFile, "output", "", "File the save tool appends to (default $OUTPUT_FILE)")
	rootCmd.Flags().StringVarP(&query, "query", "q", "", "The research query")
	rootCmd.Flags().BoolVar(&markdown, "markdown", false, "Render the summary as markdown")
	rootCmd.AddCommand(chatCmd, versionCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_ = render.ErrorReport(os.Stderr, err)
		os.Exit(1)
	}
}

// newEngine applies the command line overrides to cfg and builds the engine.
func newEngine(cfg *config.Config) (*research.ResearchEngine, error) {
	mode, err := research.ParseStrictness(cfg.ParseMode)
	if err != nil {
		return nil, err
	}
	if strict {
		mode = research.Strict
	}
	if outputFile != "" {
		cfg.OutputFile = outputFile
	}
	return chat.NewEngine(cfg, mode, chat.NewToolset(cfg)), nil
}

// readQuery prompts on w and reads a single line from r.
func readQuery(r io.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, "What can i help you research? ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", research.ErrEmptyQuery
	}
	return line, nil
}
