// Command cmd_watch follows a screenshot folder, detects the called number in
// every new frame, logs it and relays label changes.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bingocall/pkg/config"
	"bingocall/pkg/history"
	"bingocall/pkg/ocr"
	"bingocall/pkg/setup"
	"bingocall/process/relay"
	"bingocall/process/watch"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "optional YAML config file")
	dirFlag := flag.String("dir", "", "screenshot directory to watch (default from config)")
	processed := flag.String("processed", "", "move handled frames here (default from config; empty keeps them)")
	workers := flag.Int("workers", 0, "worker pool size (default from config, 1 keeps capture order)")
	notify := flag.Bool("notify", true, "relay label changes when a relay is configured")
	verbose := flag.Bool("verbose", false, "verbose per-file logging")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ocr.Verbose = *verbose

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := setup.Store(cfg)
	hist, err := setup.History(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	var notifier *relay.Notifier
	if *notify {
		if notifier, err = setup.Relay(cfg); err != nil {
			log.Fatalf("relay: %v", err)
		}
	}

	w := &watch.Watcher{
		Pipeline:        setup.Pipeline(ctx, cfg, store, setup.Engine(cfg)),
		Dir:             pick(*dirFlag, cfg.Watch.Dir),
		ProcessedDir:    pick(*processed, cfg.Watch.ProcessedDir),
		Workers:         cfg.Watch.Workers,
		MaxHashDistance: cfg.Watch.MaxHashDistance,
		Verbose:         *verbose,
		OnDetect:        handler(hist, notifier),
	}
	if *workers > 0 {
		w.Workers = *workers
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		log.Fatalf("mkdir %s: %v", w.Dir, err)
	}
	log.Printf("calibration %+v from %s (history=%t relay=%t)", store.Load(), store.Path(), hist != nil, notifier != nil)
	if err := w.Run(ctx); err != nil {
		log.Fatalf("watch: %v", err)
	}
	log.Printf("stopped")
}

// handler records every detection and relays the ones that change the label.
func handler(hist *history.Recorder, notifier *relay.Notifier) watch.Handler {
	return func(ctx context.Context, ev watch.Event) {
		d := history.FromResult(ev.Result, "watch", ev.File)
		if err := hist.Record(ctx, &d); err != nil {
			log.Printf("WATCH record %s: %v", ev.File, err)
		}
		if notifier == nil || !ev.Changed {
			return
		}
		rctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		if err := notifier.Notify(rctx, d.Label); err != nil {
			log.Printf("RELAY %s failed: %v", d.Label, err)
			return
		}
		log.Printf("RELAY %s sent", d.Label)
		if err := hist.MarkNotified(rctx, d.ID); err != nil {
			log.Printf("RELAY mark notified: %v", err)
		}
	}
}

func pick(flagVal, cfgVal string) string {
	if flagVal != "" {
		return flagVal
	}
	return cfgVal
}
