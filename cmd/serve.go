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
	"github.com/spf13/viper"

	"github.com/sbessler/pyra/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview a generated pyramid folder over HTTP",
	Long: `Start a static HTTP server on top of an already-generated target
directory. Nothing is generated on the fly; the server only delivers the
tiles, markers and viewer files that a previous run produced.

Examples:
  # Serve ./out on the default port 8080
  pyra serve --dir out

  # Custom bind address and port
  pyra serve --dir out --bind 0.0.0.0 --port 3000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("dir", ".", "generated target directory to serve")
	serveCmd.Flags().StringP("bind", "b", "localhost", "bind address")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().Duration("timeout", 30*time.Second, "request timeout")

	viper.BindPFlag("server.dir", serveCmd.Flags().Lookup("dir"))
	viper.BindPFlag("server.bind", serveCmd.Flags().Lookup("bind"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.timeout", serveCmd.Flags().Lookup("timeout"))
}

func runServe(cmd *cobra.Command, args []string) error {
	dir := viper.GetString("server.dir")
	bind := viper.GetString("server.bind")
	port := viper.GetInt("server.port")
	timeout := viper.GetDuration("server.timeout")

	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("target directory not readable: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", bind, port)
	srv := server.New(dir, version, log)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(timeout),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Errorf("server shutdown error: %v", err)
		}
	}()

	log.Infof("serving %s on http://%s", dir, addr)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %v", err)
	}

	return nil
}
