package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mikeboe/summit-buddy/pkg/config"
	"github.com/mikeboe/summit-buddy/pkg/dataset"
	"github.com/mikeboe/summit-buddy/pkg/entities"
	"github.com/mikeboe/summit-buddy/pkg/prompt"
	"github.com/mikeboe/summit-buddy/pkg/server"
	"github.com/mikeboe/summit-buddy/pkg/usage"
)

var (
	dataDir    string
	promptMode string
	role       string
	interests  []string
	days       []int
	priority   string
	statsOnly  bool
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Logs go to stderr so match and prompt output can be piped.
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	slog.SetDefault(slog.New(handler))

	rootCmd := &cobra.Command{
		Use:   "summit-buddy",
		Short: "AI guide for the India AI Impact Summit 2026",
		Long:  `Summit Buddy answers attendee questions over the summit agenda, speakers and exhibitors, and highlights the entities it mentions.`,
	}
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", cfg.DataDir, "Directory holding the ETL JSON documents")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Run: func(cmd *cobra.Command, args []string) {
			cfg.DataDir = dataDir

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := server.NewApp(ctx, cfg)
			if err != nil {
				slog.Error("Failed to start", "error", err)
				os.Exit(1)
			}
			if err := app.Run(ctx); err != nil {
				slog.Error("Server stopped", "error", err)
				os.Exit(1)
			}
		},
	}

	matchCmd := &cobra.Command{
		Use:   "match [text]",
		Short: "Print the sessions, speakers and exhibitors mentioned in text",
		Long:  `Runs entity detection over the given text, or over stdin when no argument is given, and prints the matches as JSON.`,
		Run: func(cmd *cobra.Command, args []string) {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					slog.Error("Failed to read stdin", "error", err)
					os.Exit(1)
				}
				text = string(raw)
			}

			d := mustLoad()
			matches := entities.NewIndex(d.Cards()).FindInText(text)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(matches); err != nil {
				slog.Error("Failed to encode matches", "error", err)
				os.Exit(1)
			}
		},
	}

	promptCmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the system prompt for a profile",
		Run: func(cmd *cobra.Command, args []string) {
			d := mustLoad()
			profile := &dataset.UserProfile{
				Role:      role,
				Interests: interests,
				Days:      days,
				Priority:  priority,
			}

			mode := prompt.ParseMode(promptMode)
			system := prompt.Build(mode, d, profile)
			if statsOnly {
				fmt.Fprintf(cmd.OutOrStdout(), "mode=%s chars=%d est_tokens=%d\n",
					mode, len([]rune(system)), usage.EstimateTokens(system))
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), system)
		},
	}
	promptCmd.Flags().StringVarP(&promptMode, "mode", "m", cfg.PromptMode, "Prompt mode: compressed or full")
	promptCmd.Flags().StringVarP(&role, "role", "r", "", "Attendee role")
	promptCmd.Flags().StringSliceVarP(&interests, "interests", "i", nil, "Comma separated interests")
	promptCmd.Flags().IntSliceVar(&days, "days", nil, "Attending days (1-5)")
	promptCmd.Flags().StringVarP(&priority, "priority", "p", "", "What the attendee wants most from the summit")
	promptCmd.Flags().BoolVar(&statsOnly, "stats", false, "Print size and token estimate instead of the prompt")

	rootCmd.AddCommand(serveCmd, matchCmd, promptCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}

func mustLoad() *dataset.Dataset {
	d, err := dataset.Load(dataDir)
	if err != nil {
		slog.Error("Failed to load dataset", "error", err)
		os.Exit(1)
	}
	return d
}
