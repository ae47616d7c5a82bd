package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/liuran001/KnowItAll-Go/bot/app"
	"github.com/liuran001/KnowItAll-Go/bot/config"
	logpkg "github.com/liuran001/KnowItAll-Go/bot/logger"

	_ "github.com/liuran001/KnowItAll-Go/plugins/bytesize"
)

var (
	versionName = ""
	commitSHA   = ""
	buildTime   = ""
	sourceURL   = ""
)

var (
	configPath string
	envFile    string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := createRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "knowitall",
		Short: "Telegram bot that explains data sizes mentioned in chat",
		Long: `knowitall watches chat messages for data size expressions such as
"10 GB", "512 KiB" or "100 megabits" and replies with the exact byte count
and the size in the other unit system.`,
		SilenceUsage: true,
		RunE:         runBot,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.ini", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file with KNOWITALL_* overrides")
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return loadEnvFile(envFile)
	}

	rootCmd.AddCommand(createAnnotateCommand())
	rootCmd.AddCommand(createVersionCommand())
	return rootCmd
}

func buildInfo() app.BuildInfo {
	return app.BuildInfo{
		RuntimeVer: runtime.Version(),
		BinVersion: versionName,
		CommitSHA:  commitSHA,
		BuildTime:  buildTime,
		BuildArch:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SourceURL:  sourceURL,
	}
}

func runBot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	application, err := app.New(ctx, configPath, buildInfo())
	if err != nil {
		return err
	}

	if err := application.Start(ctx); err != nil {
		_ = application.Shutdown(context.Background())
		return err
	}

	if err := application.Run(ctx); err != nil {
		application.Logger.Error("polling stopped", "error", err)
	}
	return application.Shutdown(context.Background())
}

// createAnnotateCommand works without Telegram or a database.
func createAnnotateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "annotate",
		Short: "Annotate stdin line by line and print the tooltips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfigOrDefaults(configPath)
			if err != nil {
				return err
			}
			log := logpkg.NewWithWriter(cmd.ErrOrStderr(), conf.GetString("LogLevel"), conf.GetString("LogFormat"), conf.GetBool("LogSource"))
			registry := app.LoadProviders(conf, log)
			return app.AnnotateStream(cmd.Context(), registry, cmd.InOrStdin(), cmd.OutOrStdout(), conf.GetInt("MaxTooltipsPerMessage"))
		},
	}
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, _ []string) {
			info := buildInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "KnowItAll-Go %s\n", info.BinVersion)
			fmt.Fprintf(out, "Go: %s\n", info.RuntimeVer)
			fmt.Fprintf(out, "Commit: %s\n", info.CommitSHA)
			fmt.Fprintf(out, "Built: %s\n", info.BuildTime)
			fmt.Fprintf(out, "Arch: %s\n", info.BuildArch)
		},
	}
}

// loadEnvFile exports the variables of a dotenv file. A missing file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// loadConfigOrDefaults falls back to defaults when path does not exist.
func loadConfigOrDefaults(path string) (*config.Config, error) {
	conf, err := config.Load(path)
	if err == nil {
		return conf, nil
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return config.Defaults(), nil
	}
	return nil, err
}
