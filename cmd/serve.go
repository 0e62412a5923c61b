package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/cuebird/cuebird/internal/compose"
	"github.com/cuebird/cuebird/internal/config"
	"github.com/cuebird/cuebird/internal/container"
	"github.com/cuebird/cuebird/internal/log"
	"github.com/cuebird/cuebird/internal/server"
	"github.com/cuebird/cuebird/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP backend",
	Long: `Run the capability container behind an HTTP API for non-terminal
frontends. The API exposes content loading and parsing, settings,
reading control, session history, and a server-sent event stream.

Example:
  cuebird serve                  # Listen on the configured address
  cuebird serve --port 9000      # Override the port
  cuebird serve --dev            # Live reload logging for development`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
	serveDev  bool
	noWiring  bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Address to bind (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "Development mode: enable debug logging")
	serveCmd.Flags().BoolVar(&noWiring, "no-wiring", false, "Skip the composition root, serve an empty container")
}

func runServe(_ *cobra.Command, _ []string) error {
	if serveDev {
		debugFlag = true
	}

	cleanup, err := initDebugLog("cuebird-serve")
	if err != nil {
		return err
	}
	defer cleanup()

	if serveDev {
		log.SetMinLevel(log.LevelDebug)
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	host := cfg.Server.Host
	if serveHost != "" {
		host = serveHost
	}
	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}

	// The composition root registers factories only, so a capability
	// whose backing store is missing surfaces as a 503 on first use
	// rather than preventing startup.
	var c *container.Container
	if noWiring {
		c = container.New()
		log.Warn(log.CatServer, "running without wiring, all capabilities will 503")
	} else {
		c = compose.Backend(cfg)
	}

	var tracer trace.Tracer
	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		log.Warn(log.CatServer, "tracing unavailable", "error", err)
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(ctx); err != nil {
				log.ErrorErr(log.CatServer, "shutting down tracing", err)
			}
		}()
		if provider.Enabled() {
			tracer = provider.Tracer()
		}
	}

	srv, err := server.NewServer(server.Config{
		Addr:      fmt.Sprintf("%s:%d", host, port),
		Container: c,
		Tracer:    tracer,
	})
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Printf("cuebird backend listening on %s:%d\n", host, srv.Port())
	fmt.Println("Press Ctrl+C to stop")

	select {
	case sig := <-sigCh:
		fmt.Printf("\nReceived %s, shutting down...\n", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.ErrorErr(log.CatServer, "stopping server", err)
	}

	fmt.Println("Backend stopped")
	return nil
}
