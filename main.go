package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bingocall/pkg/config"
	"bingocall/pkg/ocr/tesseract"
	"bingocall/pkg/setup"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// `bingocall migrate` creates the draws table then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		fmt.Println("migration completed")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	setupRoutes(r, a)

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()
	log.Printf("listening on %s (tesseract %s, calibration %s)", cfg.Addr, tesseract.Version(), cfg.CalibrationFile)

	<-ctx.Done()
	log.Printf("shutting down")
	a.feed.close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store := setup.Store(cfg)
	hist, err := setup.History(cfg)
	if err != nil {
		return nil, err
	}
	rel, err := setup.Relay(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{
		pipeline:  setup.Pipeline(ctx, cfg, store, setup.Engine(cfg)),
		store:     store,
		history:   hist,
		feed:      newFeed(),
		jwtSecret: []byte(cfg.Auth.JWTSecret),
		maxUpload: cfg.MaxUploadBytes,
	}
	if cfg.Auth.OperatorPasswordHash != "" {
		a.operatorHash = []byte(cfg.Auth.OperatorPasswordHash)
	}
	// keep a.relay a nil interface when disabled
	if rel != nil {
		a.relay = rel
	}
	return a, nil
}
