package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/go-sales-client/internal/fakebackend"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (c *cli) serveFakeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve-fake",
		Short: "Run an in-memory backend for trying the client out",
		Long: fmt.Sprintf(`Run an in-memory stand-in for the sales backend. Data is lost on exit.

Seeded accounts:
  %s / %s (admin)
  %s / %s (vendedor)`,
			fakebackend.AdminEmail, fakebackend.AdminPassword,
			fakebackend.SellerEmail, fakebackend.SellerPassword),
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noSession: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(c.out, "Sales Backend")
			backend := fakebackend.New(fakebackend.WithLogger(log.Logger))
			server := &http.Server{Addr: addr, Handler: backend, ReadHeaderTimeout: 10 * time.Second}

			errCh := make(chan error, 1)
			go func() { errCh <- listenAndServe(server) }()

			select {
			case err := <-errCh:
				return err
			case <-waitForStopSignal(cmd.Context()):
			}
			return shutdown(server)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8000", "listen address")
	return cmd
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("fake backend listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal(ctx context.Context) <-chan struct{} {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		stop()
		close(done)
	}()
	return done
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
