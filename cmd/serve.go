// =============================================================================
// EDI JSON Consolidator - Serve Command
// =============================================================================
//
// The 'serve' command starts the HTTP upload shell.
//
// ENDPOINTS:
//   POST /api/consolidate              multipart "files" -> CSV attachment
//   POST /api/consolidate?format=json  multipart "files" -> {columns, rows, errors}
//   GET  /healthz
//
// The number of failed files is returned in the X-Processing-Errors header.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/edi-json-consolidator/internal/converter"
	"github.com/ginjaninja78/edi-json-consolidator/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP upload server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		conv := converter.New(converter.Options{
			RecordKey:   cfg.RecordKey,
			MetaPaths:   cfg.Paths(),
			MaxFileSize: cfg.MaxFileSize(),
		}, logger)
		srv := web.NewServer(converter.NewConsolidator(conv, cfg.MaxConcurrency, logger), web.Options{
			CSV:            cfg.CSVOptions(),
			MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		}, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(addr)
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}
