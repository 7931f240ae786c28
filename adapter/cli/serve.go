package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var serveSyncOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the metrics HTTP API",
	Long: `Serve derived project metrics over HTTP until interrupted.

Outbox events are delivered while serving, so GET /api/sync/status
reflects syncs run by this process and by the worker.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Server == nil {
			return errors.New("serve requires database connection")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if app.StartEvents != nil {
			if err := app.StartEvents(ctx); err != nil {
				return err
			}
		}

		if serveSyncOnStart && app.Syncer != nil {
			go func() {
				if _, err := app.Syncer.SyncAll(ctx); err != nil && logger != nil {
					logger.ErrorContext(ctx, "startup sync failed", "error", err)
				}
			}()
		}

		errCh := make(chan error, 1)
		go func() {
			if err := app.Server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		timeout := app.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Server stopped.")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveSyncOnStart, "sync-on-start", false, "run a full sync when the server starts")
	rootCmd.AddCommand(serveCmd)
}
