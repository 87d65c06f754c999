package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/safar/go-pos-store/internal/api"
	"github.com/safar/go-pos-store/internal/config"
	"github.com/safar/go-pos-store/internal/database"
	"github.com/safar/go-pos-store/internal/report"
	"github.com/safar/go-pos-store/internal/store"
	"github.com/safar/go-pos-store/internal/store/memory"
	"github.com/safar/go-pos-store/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	st, err := openStore(&cfg.Database)
	if err != nil {
		log.Fatalf("Open store: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)

	reports := report.NewService(st, cfg.Inventory.LowStockThreshold)
	server := api.NewServer(st, reports)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.WithCORS(server.Handler(), cfg.Server.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on port %s (store: %s)", cfg.Server.Port, cfg.Database.Driver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return drainAndClose(ctx, httpServer, st)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// drainAndClose stops the server and closes the store only once in-flight
// requests have finished or ctx expired.
func drainAndClose(ctx context.Context, server shutdowner, st io.Closer) error {
	log.Println("Shutting down HTTP server")
	shutdownErr := server.Shutdown(ctx)

	log.Println("Closing store")
	return errors.Join(shutdownErr, st.Close())
}

// openStore connects the store selected by STORE_DRIVER. The postgres schema
// is brought up to date before serving.
func openStore(cfg *config.DatabaseConfig) (store.Store, error) {
	if cfg.Driver == config.StoreDriverMemory {
		log.Printf("Using in-memory store")
		return memory.New(), nil
	}

	db, err := database.NewConnection(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to database successfully")

	applied, err := database.Migrate(context.Background(), db, database.MigrateUp)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("Applied %d migration(s)", len(applied))

	return postgres.New(db), nil
}
