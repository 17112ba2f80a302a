package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecdb"
	"github.com/hupe1980/vecdb/config"
	"github.com/hupe1980/vecdb/internal/resource"
	"github.com/hupe1980/vecdb/server"
	"github.com/hupe1980/vecdb/storage"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	d := config.Default()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Initialize the configured indexes and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
			}

			return serve(ctx, cfg, ln, cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.String("addr", d.Server.Addr, "HTTP listen address")
	flags.Bool("in-memory", d.Storage.InMemory, "Keep records in memory only")
	flags.String("storage-dir", d.Storage.Dir, "Record store directory when not in memory")
	flags.Int64("max-in-flight", d.Limits.MaxInFlight, "Maximum concurrent requests (0 = unlimited)")
	flags.Float64("rps", d.Limits.RequestsPerSecond, "Sustained requests per second (0 = unlimited)")
	flags.Int("burst", d.Limits.Burst, "Request burst size")

	bindFlags(v, flags, map[string]string{
		"addr":          "server.addr",
		"in-memory":     "storage.in_memory",
		"storage-dir":   "storage.dir",
		"max-in-flight": "limits.max_in_flight",
		"rps":           "limits.requests_per_second",
		"burst":         "limits.burst",
	})

	return cmd
}

// serve runs the HTTP API on ln until ctx is done.
func serve(ctx context.Context, cfg config.Config, ln net.Listener, logOut io.Writer) error {
	level, err := vecdb.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := vecdb.NewFormatLogger(logOut, cfg.Log.Format, level)

	store, err := storage.NewBadger(storage.BadgerOptions{
		InMemory: cfg.Storage.InMemory,
		Dir:      cfg.Storage.Dir,
		Logger:   logger.Logger,
	})
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer store.Close()

	metrics := &vecdb.BasicMetricsCollector{}

	db, err := vecdb.New(
		vecdb.WithStore(store),
		vecdb.WithLogger(logger),
		vecdb.WithMetricsCollector(metrics),
	)
	if err != nil {
		return err
	}
	defer db.Close()

	indexes, err := cfg.IndexConfigs()
	if err != nil {
		return err
	}
	for _, ic := range indexes {
		if err := db.Initialize(ctx, ic); err != nil {
			return fmt.Errorf("initialize %s index: %w", ic.Type, err)
		}
	}

	handler := server.New(db, func(o *server.Options) {
		o.Logger = logger
		o.Metrics = metrics
		o.MaxBodyBytes = cfg.Server.MaxBodyBytes
		o.Controller = resource.NewController(resource.Config{
			MaxInFlight:       cfg.Limits.MaxInFlight,
			RequestsPerSecond: cfg.Limits.RequestsPerSecond,
			Burst:             cfg.Limits.Burst,
			MemoryLimitBytes:  cfg.Limits.MemoryLimitBytes,
		})
	})

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("serving", "addr", ln.Addr().String(), "indexes", len(indexes), "version", version)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
