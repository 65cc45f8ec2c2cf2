package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskly-dev/taskly"
	"github.com/taskly-dev/taskly/internal/config"
)

func serveCmd(dir *string) *cobra.Command {
	var (
		addr string
		api  string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web app",
		Long: `Start the web app.

Flags override taskly.json and the environment.

Examples:
  taskly serve
  taskly serve --addr=:8080 --api=https://api.example.com/
  taskly serve --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*dir)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if api != "" {
				cfg.APIBaseURL = api
			}
			if dev {
				cfg.Dev = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(os.Stderr, cfg)
			if path := cfg.Path(); path != "" {
				logger.Info("config loaded", "path", path)
			}

			app, err := taskly.New(taskly.ConfigFrom(cfg, logger))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, cfg.Addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")
	cmd.Flags().StringVar(&api, "api", "", "Auth backend base URL (default from config)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Development mode: text logs at debug level, any live origin")

	return cmd
}
