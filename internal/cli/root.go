// Package cli defines the newsingest command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"NewsIngest/internal/config"
	"NewsIngest/internal/logging"
)

// Version is overridden at build time with -ldflags "-X NewsIngest/internal/cli.Version=...".
var Version = "dev"

const envPrefix = "NEWSINGEST"

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the command tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "newsingest",
		Short: "Fetch, deduplicate, summarize and store news articles",
		Long: `newsingest pulls recent articles from the configured news sources,
drops duplicates, attaches an AI summary and a location to each article,
and stores the ones not seen before.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "YAML config file (env NEWSINGEST_CONFIG)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("addr", "", "HTTP listen address for serve")
	for _, name := range []string{"config", "log-level", "addr"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(
		newRunCommand(v),
		newServeCommand(v),
		newMigrateCommand(v),
		newVersionCommand(),
	)
	return root
}

// loadConfig resolves .env, the YAML file and environment, then applies flag overrides.
func loadConfig(v *viper.Viper) (config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(v.GetString("config"))
	if err != nil {
		return config.Config{}, err
	}
	if level := v.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if addr := v.GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	return logging.NewWithWriter(w, cfg.Logging.Level, cfg.Logging.Format)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newsingest %s\n", Version)
		},
	}
}
