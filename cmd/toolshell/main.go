// Package main is the entry point for the toolshell host.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/claytechnologie/toolsdk/internal/app"
	"github.com/claytechnologie/toolsdk/internal/dispatcher"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// settings are the command line defaults, overridable from the environment.
type settings struct {
	ConfigPath string `env:"TOOLSHELL_CONFIG"`
	LibRoot    string `env:"TOOLSHELL_LIB_ROOT"`
	LogLevel   string `env:"TOOLSHELL_LOG_LEVEL" envDefault:"warn"`
	LogFormat  string `env:"TOOLSHELL_LOG_FORMAT" envDefault:"text"`
	LogFile    string `env:"TOOLSHELL_LOG_FILE"`
	NoWatch    bool   `env:"TOOLSHELL_NO_WATCH"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var s settings
	if err := env.Parse(&s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: parse env: %v\n", err)
		return 1
	}
	if s.ConfigPath == "" {
		s.ConfigPath = app.DefaultConfigPath
	}
	if s.LibRoot == "" {
		s.LibRoot = dispatcher.DefaultLibRoot
	}

	cmd := newRootCommand(&s)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand(s *settings) *cobra.Command {
	root := &cobra.Command{
		Use:   "toolshell",
		Short: "Interactive tool menu with live-reloaded extensions",
		Long: `toolshell shows a numbered menu of built-in tools and authorized
extensions, dispatches the selected entry, and picks up edits to its
settings record without a restart.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd.Context(), s, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := root.Flags()
	flags.StringVarP(&s.ConfigPath, "config", "c", s.ConfigPath, "path to the settings record")
	flags.StringVar(&s.LibRoot, "lib-root", s.LibRoot, "directory code units are resolved below")
	flags.StringVar(&s.LogLevel, "log-level", s.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&s.LogFormat, "log-format", s.LogFormat, "log format (text, json)")
	flags.StringVar(&s.LogFile, "log-file", s.LogFile, "append logs to this file instead of stderr")
	flags.BoolVar(&s.NoWatch, "no-watch", s.NoWatch, "disable the settings file watcher")

	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "toolshell %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
		},
	}
}

func validateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", level)
	}
}

func runShell(ctx context.Context, s *settings, in io.Reader, out io.Writer) error {
	if err := validateLogLevel(s.LogLevel); err != nil {
		return err
	}

	lc := app.DefaultLoggerConfig()
	lc.Level = s.LogLevel
	if s.LogFormat != "" {
		lc.Format = s.LogFormat
	}
	if s.LogFile != "" {
		f, err := os.OpenFile(s.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		lc.Output = f
	}
	logger := app.NewLogger(lc)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	application, err := app.New(app.Options{
		ConfigPath: s.ConfigPath,
		LibRoot:    s.LibRoot,
		Watch:      !s.NoWatch,
		Logger:     logger,
		In:         in,
		Out:        out,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
