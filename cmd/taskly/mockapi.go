package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskly-dev/taskly/internal/config"
	"github.com/taskly-dev/taskly/internal/mockapi"
)

// mockShutdownTimeout bounds how long in-flight requests may delay exit.
const mockShutdownTimeout = 10 * time.Second

func mockapiCmd(dir *string) *cobra.Command {
	var (
		addr  string
		delay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mockapi",
		Short: "Start the in-memory auth backend",
		Long: `Start an in-memory auth backend for local development.

It serves POST /api/users/signup/ and POST /api/auth/login/ and keeps
users in memory until it exits.

Examples:
  taskly mockapi
  taskly mockapi --delay=1s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*dir)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.MockAPI.Addr = addr
			}
			if cmd.Flags().Changed("delay") {
				cfg.MockAPI.Delay = delay.String()
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(os.Stderr, cfg)

			srv := &http.Server{
				Handler:           mockapi.New(mockapi.Config{Delay: cfg.MockDelay(), Logger: logger}),
				ReadHeaderTimeout: 10 * time.Second,
			}
			ln, err := net.Listen("tcp", cfg.MockAPI.Addr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			success("Mock auth backend listening on http://%s/", ln.Addr())
			return serveUntilDone(ctx, srv, ln, mockShutdownTimeout)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Delay added before every response")

	return cmd
}

// serveUntilDone serves on ln until ctx is done, then shuts srv down. Requests
// still running after timeout are cut off.
func serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return err
		}
		return nil
	}
}
