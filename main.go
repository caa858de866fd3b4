package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"beaconmarket/app"
	"beaconmarket/config"
	"beaconmarket/controllers"
	dbpkg "beaconmarket/db"
	"beaconmarket/router"
	"beaconmarket/workers"

	"github.com/gin-gonic/gin"
)

// =====================
// Expected ENV (all optional, they override config.json / config.yaml)
// =====================
//
// Server
// - CONFIG_PATH                   (default config.json)
// - PORT                          (default 8080)
// - ADMIN_TOKEN                   (protects /api/events)
// - WEBHOOK_VERIFY_TOKEN          (token set on the WhatsApp dashboard)
// - WEBHOOK_APP_SECRET            (validates X-Hub-Signature-256)
//
// Storage
// - DATABASE / DB_*               (sqlite3 by default)
// - LISTING_STORE                 (gorm or supabase)
// - SUPABASE_URL / SUPABASE_ANON_KEY
//
// WhatsApp Cloud API (Meta)
// - WHATSAPP_ACCESS_TOKEN
// - WHATSAPP_PHONE_NUMBER_ID
// - POC_NO_WHATSAPP               (if true, replies are only recorded)
//
// OpenAI
// - OPENAI_API_KEY                (without it the heuristic extractor is used)
// - OPENAI_MODEL
//
// =====================

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg := config.Get(configPath)

	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err == nil {
		if f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		} else {
			log.Printf("log file %s: %v", cfg.LogPath, err)
		}
	}

	dbpkg.SetConfigurations(cfg)
	conn, err := dbpkg.Connect()
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := app.ListingStore(cfg, conn)
	b, windows := app.Bot(cfg, store, nil)
	app.SweepRateWindows(ctx, windows, time.Minute)

	whatsapp := app.WhatsApp(cfg)
	if cfg.WhatsApp.DryRun {
		log.Printf("POC_NO_WHATSAPP set, replies are recorded but not sent")
	}
	workers.NewProcessor(conn, b, whatsapp, cfg.WhatsApp.DryRun).Start(ctx)

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(conn))
	r.Use(dbpkg.SetListingsToContext(store))
	r.Use(controllers.SetBotToContext(b))
	router.Initialize(r, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.ApiPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("BeaconMarket listening on :%s", cfg.ApiPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
