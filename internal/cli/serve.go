package cli

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

	"genstudio/internal/httpapi"
	"genstudio/internal/registry"
)

func defaultAddr() string {
	if v := os.Getenv("GENSTUDIO_ADDR"); v != "" {
		return v
	}
	return ":8080"
}

func newServeCmd(o *rootOptions) *cobra.Command {
	var (
		requestLog      string
		generateTimeout int64
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := o.cfg
			mergeString(cmd, "addr", &cfg.Addr)
			mergeBool(cmd, "preload", &cfg.Preload)
			mergeInt64(cmd, "max-body-bytes", &cfg.MaxBodyBytes)
			mergeStrings(cmd, "cors-origins", &cfg.CORSOrigins)
			if cfg.DefaultModel == "" {
				cfg.DefaultModel = registry.PresetSynopsis
			}

			mgr, err := newManager(cfg, o.log)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()

			report := mgr.SanityCheck()
			ev := o.log.Info()
			if report.Error != "" {
				ev = o.log.Warn().Str("error", report.Error)
			}
			ev.Str("event", "sanity").Bool("llama_built", report.LlamaBuilt).
				Strs("backends", report.Backends).Strs("unserved", report.Unserved).Msg("registry check")

			httpapi.SetLogger(o.log)
			httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
			httpapi.SetCORSOptions(len(cfg.CORSOrigins) > 0, cfg.CORSOrigins, nil, nil)
			httpapi.SetRequestLogLevel(requestLog)
			httpapi.SetGenerateTimeoutSeconds(generateTimeout)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			httpapi.SetBaseContext(ctx)
			defer httpapi.SetBaseContext(context.Background())

			if cfg.Preload {
				go func() {
					if err := mgr.Preload(ctx); err != nil {
						o.log.Error().Str("event", "preload").Err(err).Msg("default model failed to load")
					}
				}()
			}

			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			srv := &http.Server{Handler: httpapi.NewMux(mgr), ReadHeaderTimeout: 10 * time.Second}
			errCh := make(chan error, 1)
			go func() {
				o.log.Info().Str("addr", ln.Addr().String()).Str("default_model", cfg.DefaultModel).Msg("genstudio listening")
				errCh <- srv.Serve(ln)
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			o.log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				o.log.Error().Err(err).Msg("graceful shutdown error")
				return err
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.String("addr", defaultAddr(), "HTTP listen address; defaults GENSTUDIO_ADDR or :8080")
	f.Bool("preload", false, "Load the default model at startup")
	f.Int64("max-body-bytes", 1<<20, "Maximum JSON request body size")
	f.StringSlice("cors-origins", nil, "Allowed CORS origins (enables CORS when set)")
	f.StringVar(&requestLog, "request-log", "info", "Per-request log level: off|error|info|debug")
	f.Int64Var(&generateTimeout, "generate-timeout", 0, "Seconds before a generation request times out (0 disables)")
	return cmd
}
