package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recordbase/backend/internal/application/services"
	"github.com/recordbase/backend/internal/config"
	"github.com/recordbase/backend/internal/infrastructure/database"
	"github.com/recordbase/backend/internal/infrastructure/persistence"
	"github.com/recordbase/backend/internal/interfaces/rest"
	"github.com/recordbase/backend/pkg/auth"
	"github.com/recordbase/backend/pkg/jsonschema"
)

func main() {
	cfg, err := config.Load(".env", "../.env", "../../.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	conn, err := database.Open(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()
	log.Println("✅ Database connection established")

	// Initial schema load. Without it no record API can be served.
	schemaSvc := services.NewSchemaService(persistence.NewSchemaRepository(conn.DB()), jsonschema.NewRegistry(), cfg.UserTable)
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	_, err = schemaSvc.Refresh(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to load schema: %v", err)
	}

	var refresher *services.SchemaRefresher
	if cfg.SchemaRefreshCron != "" {
		refresher, err = services.NewSchemaRefresher(schemaSvc, cfg.SchemaRefreshCron)
		if err != nil {
			log.Fatalf("Failed to schedule schema refresh: %v", err)
		}
		refresher.Start()
	}

	recordSvc := services.NewRecordService(schemaSvc, persistence.NewRecordRepository(conn.DB()), cfg.RecordAPIs)
	log.Printf("🔧 %d record APIs configured", len(cfg.RecordAPIs))

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	responder := rest.ErrorResponder{Debug: cfg.Debug}
	rest.RegisterRoutes(router,
		auth.NewTokenManager(cfg.JWTSecret, 24*time.Hour),
		rest.NewRecordHandler(recordSvc, responder),
		rest.NewSchemaHandler(recordSvc, responder),
	)

	log.Printf("💚 Health check:   http://localhost:%s/health\n", cfg.Port)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if refresher != nil {
		refresher.Stop()
		log.Println("🛑 Schema refresher stopped")
	}

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
