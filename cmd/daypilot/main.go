package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"daypilot/internal/agent"
	"daypilot/internal/config"
	"daypilot/internal/digest"
	"daypilot/internal/llm"
	"daypilot/internal/logging"
	"daypilot/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string
	userID     string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "daypilot",
	Short: "daypilot - AI-assisted personal productivity",
	Long: `daypilot keeps your tasks, meetings, and school work in one place and
lets you drive it with natural language.

The assistant translates chat messages into typed actions (create, update,
complete, reschedule, summarize) executed against a local SQLite store.
With no API key configured, a deterministic rule engine handles chat.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// setup loads config, initializes logging, and opens the store.
func setup() (*config.Config, *store.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := logging.Initialize(config.DefaultStateDir(), cfg.Logging.DebugMode, cfg.Logging.Level); err != nil {
		return nil, nil, err
	}

	st, err := store.New(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	return cfg, st, nil
}

// chatCmd runs one agent turn.
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send one message to the assistant",
	Long: `Runs a full agent turn: assembles your current workload into a prompt,
asks the completion provider for actions, executes them, and prints the
reply. Example:

  daypilot chat "create a task called Buy milk"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, st, err := setup()
		if err != nil {
			return err
		}
		defer st.Close()

		client, err := llm.NewClientFromConfig(cfg)
		if err != nil {
			return err
		}

		message := ""
		for i, a := range args {
			if i > 0 {
				message += " "
			}
			message += a
		}

		a := agent.New(st, client)
		result, err := a.HandleTurn(cmd.Context(), userID, message, nil)
		if err != nil {
			return err
		}

		fmt.Println(result.Response)
		if result.Navigate != "" {
			logger.Debug("navigation suggested", zap.String("path", result.Navigate))
		}
		return nil
	},
}

// summaryCmd prints the current workload summary without a chat turn.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a workload summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")

		_, st, err := setup()
		if err != nil {
			return err
		}
		defer st.Close()

		payload, _ := json.Marshal(map[string]string{"period": period})
		res := agent.NewDispatcher(st).Execute(cmd.Context(), userID,
			agent.Action{Kind: agent.KindGetSummary, Data: payload})
		if !res.Success {
			return fmt.Errorf("%s", res.Message)
		}
		fmt.Println(res.Message)
		if summary, ok := res.Data.(agent.SummaryData); ok {
			for _, it := range summary.Upcoming {
				fmt.Printf("  - %s (due %s)\n", it.Title, it.DueAt.Format("2006-01-02"))
			}
		}
		return nil
	},
}

// digestCmd prints the weekly digest, or keeps generating it on schedule.
var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Generate the weekly digest",
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		cfg, st, err := setup()
		if err != nil {
			return err
		}
		defer st.Close()

		if !watch {
			report, err := digest.Build(cmd.Context(), st, userID, time.Now())
			if err != nil {
				return err
			}
			fmt.Print(report.Text)
			return nil
		}

		sched, err := digest.NewScheduler(st, userID, cfg.Digest.CronSpec, func(r *digest.Report) {
			fmt.Print(r.Text)
		})
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		logger.Info("digest scheduler running", zap.String("spec", cfg.Digest.CronSpec))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		return nil
	},
}

// versionCmd prints the version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the daypilot version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.DefaultConfig().Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "local", "User the commands act for")

	summaryCmd.Flags().String("period", "today", "Summary period: today, week, or month")
	digestCmd.Flags().Bool("watch", false, "Keep running and generate digests on schedule")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
