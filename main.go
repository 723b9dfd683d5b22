package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielhkuo/pollvote/cliparse"
	"github.com/danielhkuo/pollvote/db"
	"github.com/danielhkuo/pollvote/events"
	"github.com/danielhkuo/pollvote/handlers"
	"github.com/danielhkuo/pollvote/middleware"
	"github.com/danielhkuo/pollvote/registry"
	"github.com/danielhkuo/pollvote/router"
	"github.com/danielhkuo/pollvote/store"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Parse configuration
	cfg, rest, err := cliparse.ParseFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return middleware.ExitUsage
	}

	logger, err := middleware.SetupLogging(cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return middleware.ExitUsage
	}

	// Cancel in-flight store calls on Ctrl-C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("store setup failed", "store", cfg.StoreType, "error", err)
		return middleware.ExitInternal
	}
	defer st.Close()

	sink, closeSink, err := openSink(ctx, cfg, logger)
	if err != nil {
		slog.Error("event sink setup failed", "error", err)
		return middleware.ExitInternal
	}
	defer closeSink()

	reg := registry.New(st,
		registry.WithSink(sink),
		registry.WithLogger(logger),
	)

	r := router.NewRouter(handlers.Env{
		Registry: reg,
		Out:      stdout,
		Output:   cfg.Output,
	})

	if err := r.Dispatch(ctx, rest); err != nil {
		// JSON errors go where JSON results go
		w := stderr
		if cfg.Output == cliparse.OutputJSON {
			w = stdout
		}
		middleware.ErrorResponse(w, cfg.Output, err)
		return middleware.ExitCode(err)
	}
	return middleware.ExitOK
}

func openStore(ctx context.Context, cfg cliparse.Config) (store.Store, error) {
	switch cfg.StoreType {
	case cliparse.StoreMemory:
		return store.NewMemoryStore(), nil

	case cliparse.StoreSQLite, cliparse.StorePostgres:
		conn, err := db.Open(ctx, cfg.StoreType, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Debug("database schema ready", "type", cfg.StoreType)
		return store.NewSQLStore(conn), nil

	case cliparse.StoreRedis:
		client, err := store.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return store.NewRedisStore(client, cfg.RedisPrefix), nil
	}
	return nil, fmt.Errorf("unknown store type %q", cfg.StoreType)
}

// openSink always logs events; with an AMQP URL it also publishes them.
func openSink(ctx context.Context, cfg cliparse.Config, logger *slog.Logger) (events.Sink, func(), error) {
	logSink := events.NewLogSink(logger)
	if cfg.AMQPURL == "" {
		return logSink, func() {}, nil
	}

	conn, err := events.Connect(ctx, cfg.AMQPURL, 3, time.Second)
	if err != nil {
		return nil, nil, err
	}
	amqpSink, err := events.NewAMQPSink(conn, cfg.AMQPQueue)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := amqpSink.Close(); err != nil {
			slog.Warn("failed to close event channel", "error", err)
		}
		if err := conn.Close(); err != nil {
			slog.Warn("failed to close event connection", "error", err)
		}
	}
	return events.MultiSink{logSink, amqpSink}, closeFn, nil
}
