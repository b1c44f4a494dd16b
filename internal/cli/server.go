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

	"github.com/treatbank/mintd/internal/server"
)

var (
	// Server flags
	port     int
	bindAddr string
)

// serverCmd starts the HTTP daemon (default action).
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the mintd HTTP daemon",
	Long: `Start the mintd server which provides:
- GET  /setup-accounts             account provisioning and funding
- POST /issue-asset                trustline-then-payment issuance
- GET  /check-balance/<account>    custom asset balance
- GET  /check-xlm-balance/<account> native balance
- GET  /issuances                  recorded issuance runs
- GET  /health and /metrics

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Set server as the default command
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serverCmd.RunE(cmd, args)
	}

	serverCmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	serverCmd.Flags().StringVar(&bindAddr, "bind", "", "address to bind to (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	a, err := buildApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	listenPort := a.cfg.Server.Port
	if port != 0 {
		listenPort = port
	}
	bind := a.cfg.Server.Bind
	if bindAddr != "" {
		bind = bindAddr
	}
	listenAddr := fmt.Sprintf("%s:%d", bind, listenPort)

	timeout := time.Duration(a.cfg.Server.TimeoutSeconds) * time.Second
	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: server.New(a.svc, a.log, timeout, a.registry).Handler(),
	}

	a.log.Info("starting mintd server",
		"addr", listenAddr,
		"network", a.cfg.Network,
		"horizon", a.cfg.ResolvedHorizonURL(),
		"asset", a.cfg.Asset.Code)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-stop:
		a.log.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
