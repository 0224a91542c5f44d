package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cosmetica/internal/config"
	"cosmetica/internal/domain"
	"cosmetica/internal/http/handlers"
	applog "cosmetica/internal/log"
	"cosmetica/internal/outbox"
	"cosmetica/internal/repos"
)

const shutdownTimeout = 10 * time.Second

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadPath(path)
	}
	return config.Load()
}

// openLogFile tees the standard logger into cfg.LogFile. The returned closer
// is never nil.
func openLogFile(cfg config.Config) func() {
	if cfg.LogFile == "" {
		return func() {}
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		return func() {}
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return func() {
		log.SetOutput(os.Stdout)
		_ = f.Close()
	}
}

// newProcessor wires the outbox to Kafka when brokers are configured and to
// the application log otherwise.
func newProcessor(cfg config.Config, db *sqlx.DB) (*outbox.Processor, func(), error) {
	p := outbox.NewProcessor(repos.NewOutboxRepo(db), outbox.Config{
		PollingInterval: cfg.Outbox.Interval,
		BatchSize:       cfg.Outbox.BatchSize,
		MaxRetries:      cfg.Outbox.MaxRetries,
		Lease:           cfg.Outbox.Lease,
	})
	var h outbox.MessageHandler = outbox.LoggingHandler{}
	closer := func() {}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := outbox.NewKafkaProducer(cfg.Kafka.Brokers)
		if err != nil {
			return nil, nil, err
		}
		h = &outbox.KafkaHandler{Producer: producer, Topic: cfg.Kafka.Topic}
		closer = func() { _ = producer.Close() }
	}
	p.RegisterHandler(domain.EventOrderCreated, h)
	p.RegisterHandler(domain.EventOrderUpdated, h)
	return p, closer, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the outbox relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer openLogFile(cfg)()

			db, err := repos.OpenDB(cfg.DBDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			proc, closeProc, err := newProcessor(cfg, db)
			if err != nil {
				return err
			}
			defer closeProc()

			app := handlers.NewApp(cfg, handlers.NewDeps(db, cfg))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				applog.Info(nil, "server.start", map[string]any{"port": cfg.Port})
				if err := app.Listen(":" + cfg.Port); err != nil {
					return fmt.Errorf("listen: %w", err)
				}
				return nil
			})
			g.Go(func() error { return proc.Run(ctx) })
			g.Go(func() error {
				<-ctx.Done()
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				applog.Info(nil, "server.stop", nil)
				return app.ShutdownWithContext(sctx)
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
