package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nees-commerce/admin-gateway/internal/audit"
	"github.com/nees-commerce/admin-gateway/internal/config"
	"github.com/nees-commerce/admin-gateway/internal/handler"
	"github.com/nees-commerce/admin-gateway/internal/router"
	"github.com/nees-commerce/admin-gateway/internal/service"
	"github.com/nees-commerce/admin-gateway/internal/upstream"
	"github.com/nees-commerce/admin-gateway/internal/ws"
)

func main() {
	cfg := config.Load()

	backend := upstream.NewClient(cfg.UpstreamBaseURL)

	hub := ws.NewHub()
	go hub.Run()

	// The audit trail is optional; without a database the gateway
	// still runs, it just keeps no transition history.
	var (
		auditLog service.AuditLog
		history  handler.HistoryStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("connect to database: %v", err)
		}
		defer pool.Close()
		if err := pool.Ping(context.Background()); err != nil {
			log.Fatalf("ping database: %v", err)
		}
		recorder := audit.NewRecorder(pool)
		auditLog = recorder
		history = recorder
		log.Println("Audit trail enabled")
	} else {
		log.Println("DATABASE_URL not set, audit trail disabled")
	}

	workflow := service.NewWorkflow(backend, auditLog, hub)

	r := router.New(cfg, backend, workflow, history, hub)

	log.Printf("Starting server on :%s (upstream %s)", cfg.Port, cfg.UpstreamBaseURL)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
