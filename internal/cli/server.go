package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"health-risk-service/internal/app"
	"health-risk-service/internal/catalog"
	"health-risk-service/internal/config"
	"health-risk-service/internal/infra/memory"
	pgstore "health-risk-service/internal/infra/postgres"
	redisstore "health-risk-service/internal/infra/redis"
	transport "health-risk-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogs app.CatalogProvider = memory.NewStaticCatalogProvider(catalog.Builtin())
	if pool != nil {
		loader := pgstore.NewCatalogLoader(pool, cfg.Catalog.ID)
		if redisClient != nil {
			catalogs = redisstore.NewCatalogCache(redisClient, loader, catalogTTL)
		} else {
			catalogs = memory.NewCatalogCache(loader, catalogTTL)
		}
	}

	var store app.SessionStore = memory.NewSessionStore()
	switch {
	case pool != nil:
		store = pgstore.NewSessionStore(pool)
	case redisClient != nil:
		store = redisstore.NewSessionStore(redisClient, sessionTTL)
	}

	service := app.NewAssessmentService(store, catalogs)
	handler := transport.NewHandler(service)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go runSweeper(sweepCtx, service, cfg)

	go func() {
		log.Printf("starting assessment service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// runSweeper applies the time-based abandonment policy outside the request
// path. Redis-backed stores expire sessions via key TTL, so the sweep there
// is a no-op.
func runSweeper(ctx context.Context, service *app.AssessmentService, cfg config.Config) {
	idleAge := config.TTLDuration(cfg.Session.AbandonAfter, 30*time.Minute)
	interval := config.TTLDuration(cfg.Session.SweepInterval, 5*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := service.AbandonStale(ctx, idleAge)
			if err != nil {
				log.Printf("abandonment sweep failed: %v", err)
				continue
			}
			if swept > 0 {
				log.Printf("abandoned %d stale sessions", swept)
			}
		}
	}
}
