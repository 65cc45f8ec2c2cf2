package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskly-dev/taskly/internal/config"
	"github.com/taskly-dev/taskly/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var dir string

	rootCmd := &cobra.Command{
		Use:   "taskly",
		Short: "The Todo App web front end",
		Long: `Taskly serves the Todo App: login and signup forms validated and
submitted on the server, plus the todos and profile pages.

Configuration comes from taskly.json, .env and TASKLY_* environment
variables in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&dir, "dir", "C", ".", "Directory holding taskly.json and .env")

	rootCmd.AddCommand(
		serveCmd(&dir),
		mockapiCmd(&dir),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger returns a text logger in dev mode and a JSON logger otherwise.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Dev {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
