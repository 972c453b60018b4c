package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"bingocall/pkg/config"
	"bingocall/pkg/setup"
	"bingocall/process/report"
)

func main() {
	day := flag.String("day", time.Now().UTC().Format("2006-01-02"), "day to report (YYYY-MM-DD, UTC)")
	list := flag.Bool("list", false, "list matching rows")
	cfgPath := flag.String("config", "config.yaml", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Database.DSN == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	hist, err := setup.History(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	start, end, err := report.DayBounds(*day)
	if err != nil {
		log.Fatalf("%v", err)
	}
	rows, err := report.Load(context.Background(), hist.DB(), start, end)
	if err != nil {
		log.Fatalf("%v", err)
	}
	report.Write(os.Stdout, report.Summarize(start, rows), rows, *list)
}
