package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/glyph"
	"github.com/aretw0/glyph/internal/presentation/tui"
	httpAdapter "github.com/aretw0/glyph/pkg/adapters/http"
	"github.com/aretw0/glyph/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the drawing pad HTTP server",
	Long: `Starts a drawing pad wired to the configured prediction service and
exposes it over HTTP: pointer input, clear/resize/brush controls, state,
output, a PNG of the canvas and a server-sent event stream of the output.
Prometheus metrics are served on the metrics address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if addr, _ := cmd.Flags().GetString("metrics-addr"); cmd.Flags().Changed("metrics-addr") {
			cfg.Server.MetricsAddr = addr
		}
		if term.IsTerminal(int(os.Stderr.Fd())) {
			tui.PrintBanner(os.Stderr, glyph.Version)
		}

		metrics, err := observability.NewMetrics(prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}

		st := buildPredictor(cfg, logger)
		defer st.close()

		pad, err := buildPad(cfg, st.predictor, logger, metrics.Hooks())
		if err != nil {
			return err
		}
		defer pad.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		g, ctx := errgroup.WithContext(ctx)

		pad.Start(ctx)
		g.Go(func() error {
			if err := st.warm(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		})

		handlerOpts := []httpAdapter.HandlerOption{httpAdapter.WithLogger(logger)}
		if cfg.Server.MetricsAddr == "" {
			handlerOpts = append(handlerOpts, httpAdapter.WithMount("/metrics", promhttp.Handler()))
		}
		servers := []*http.Server{{
			Addr:    cfg.Server.Addr,
			Handler: httpAdapter.NewHandler(pad, handlerOpts...),
		}}
		if cfg.Server.MetricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			servers = append(servers, &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux})
		}

		for _, srv := range servers {
			g.Go(func() error {
				logger.Info("listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		}

		g.Go(func() error {
			<-ctx.Done()
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			var errs []error
			for _, srv := range servers {
				if err := srv.Shutdown(shutdownCtx); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		})

		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "HTTP listen address (default from config, :8080)")
	serveCmd.Flags().String("metrics-addr", "", "Metrics listen address; empty serves /metrics on the main address")
}
