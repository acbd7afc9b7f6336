package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"logsentry/config"
	"logsentry/internal/api"
	inputredis "logsentry/internal/input/redis"
	"logsentry/internal/input/udp"
	"logsentry/internal/logger"
	"logsentry/internal/metrics"
	"logsentry/internal/output/alertjson"
	"logsentry/internal/pipeline"
	"logsentry/internal/rules"
	"logsentry/internal/store"
	"logsentry/internal/transform/syslog"
)

func findConfigFile(configArg string) string {
	if configArg != "" {
		path := configArg
		if _, err := os.Stat(path); err == nil {
			return path
		}
		log.Printf("Warning: config file not found at %s, trying default locations", path)
	}

	if _, err := os.Stat("logsentry.yml"); err == nil {
		return "logsentry.yml"
	}

	exePath, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exePath)
		path := filepath.Join(exeDir, "logsentry.yml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "logsentry.yml"
}

func applyDefaults(cfg *config.Config) {
	if cfg.LogSentry.DB.Path == "" {
		cfg.LogSentry.DB.Path = "logsentry.db"
	}

	if cfg.LogSentry.Input.Mode == "" {
		cfg.LogSentry.Input.Mode = "udp"
	}
	if cfg.LogSentry.Input.EnvelopeMarker == "" {
		cfg.LogSentry.Input.EnvelopeMarker = "localhost"
	}
	if cfg.LogSentry.Input.UDP.Addr == "" {
		cfg.LogSentry.Input.UDP.Addr = "0.0.0.0:514"
	}
	if cfg.LogSentry.Input.UDP.ReadBuffer <= 0 {
		cfg.LogSentry.Input.UDP.ReadBuffer = 4096
	}
	if cfg.LogSentry.Input.Redis.Addr == "" {
		cfg.LogSentry.Input.Redis.Addr = "127.0.0.1:6379"
	}
	if cfg.LogSentry.Input.Redis.Key == "" {
		cfg.LogSentry.Input.Redis.Key = "logsentry_events"
	}
	if cfg.LogSentry.Input.Redis.BlockTimeout == 0 {
		cfg.LogSentry.Input.Redis.BlockTimeout = 5 * time.Second
	}

	if cfg.LogSentry.Rules.Interval <= 0 {
		cfg.LogSentry.Rules.Interval = 30 * time.Second
	}
	if cfg.LogSentry.Rules.Cooldown <= 0 {
		cfg.LogSentry.Rules.Cooldown = 2 * time.Minute
	}
	if cfg.LogSentry.Rules.SuppressionSize <= 0 {
		cfg.LogSentry.Rules.SuppressionSize = 4096
	}
	if cfg.LogSentry.Rules.BruteForce.Window <= 0 {
		cfg.LogSentry.Rules.BruteForce.Window = 5 * time.Minute
	}
	if cfg.LogSentry.Rules.BruteForce.Threshold <= 0 {
		cfg.LogSentry.Rules.BruteForce.Threshold = 5
	}
	if cfg.LogSentry.Rules.OffHours.Start == 0 && cfg.LogSentry.Rules.OffHours.End == 0 {
		cfg.LogSentry.Rules.OffHours.Start = 9
		cfg.LogSentry.Rules.OffHours.End = 18
	}
	if cfg.LogSentry.Rules.Domains.Recent <= 0 {
		cfg.LogSentry.Rules.Domains.Recent = 20
	}

	if cfg.LogSentry.API.Addr == "" {
		cfg.LogSentry.API.Addr = ":8080"
	}

	if cfg.LogSentry.Logging.Level == "" {
		cfg.LogSentry.Logging.Level = "info"
	}
}

func loadConfig(args []string, name string) *config.Config {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configArg := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	configPath := findConfigFile(*configArg)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = &config.Config{}
	}
	applyDefaults(cfg)

	lc := cfg.LogSentry.Logging
	if err := logger.Init(lc.Enabled, lc.Level, lc.File, lc.Console, logger.Rotation{
		Enabled:    lc.Rotate.Enabled,
		MaxSizeMB:  lc.Rotate.MaxSizeMB,
		MaxAgeDays: lc.Rotate.MaxAgeDays,
		MaxBackups: lc.Rotate.MaxBackups,
		Compress:   lc.Rotate.Compress,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	return cfg
}

func openStore(path string) *store.Store {
	st, err := store.Open(path)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	if err := st.Init(context.Background()); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	return st
}

func runIngest(args []string) {
	cfg := loadConfig(args, "ingest")

	st := openStore(cfg.LogSentry.DB.Path)
	defer st.Close()

	var source pipeline.Source
	switch cfg.LogSentry.Input.Mode {
	case "udp":
		recv, err := udp.NewReceiver(udp.Config{
			Addr:       cfg.LogSentry.Input.UDP.Addr,
			ReadBuffer: cfg.LogSentry.Input.UDP.ReadBuffer,
		})
		if err != nil {
			log.Fatalf("Failed to bind UDP receiver: %v", err)
		}
		source = recv
		logger.Infof("Listening for datagrams on %s", recv.Addr())
	case "redis":
		consumer, err := inputredis.NewConsumer(inputredis.Config{
			Addr:         cfg.LogSentry.Input.Redis.Addr,
			Password:     cfg.LogSentry.Input.Redis.Password,
			DB:           cfg.LogSentry.Input.Redis.DB,
			Key:          cfg.LogSentry.Input.Redis.Key,
			BlockTimeout: cfg.LogSentry.Input.Redis.BlockTimeout,
		})
		if err != nil {
			log.Fatalf("Failed to create Redis consumer: %v", err)
		}
		source = consumer
		logger.Infof("Consuming list %s on %s", cfg.LogSentry.Input.Redis.Key, cfg.LogSentry.Input.Redis.Addr)
	default:
		log.Fatalf("Unknown input mode: %s", cfg.LogSentry.Input.Mode)
	}

	parser := syslog.NewParser(cfg.LogSentry.Input.EnvelopeMarker)
	pipe := pipeline.NewIngest(source, parser, st, metrics.NewIngest())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := pipe.Run(ctx); err != nil && err != context.Canceled {
			logger.Errorf("Ingest pipeline error: %v", err)
		}
	}()

	waitForSignal()
	logger.Infof("Shutting down")
	cancel()
	if err := pipe.Close(); err != nil {
		logger.Errorf("Error closing ingest pipeline: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	logger.Infof("Ingest stopped")
}

func runRules(args []string) {
	cfg := loadConfig(args, "rules")

	st := openStore(cfg.LogSentry.DB.Path)
	defer st.Close()

	ruleSet := []rules.Rule{
		rules.NewBruteForce(rules.BruteForceConfig{
			Window:    cfg.LogSentry.Rules.BruteForce.Window,
			Threshold: cfg.LogSentry.Rules.BruteForce.Threshold,
		}),
		rules.NewOffHours(rules.OffHoursConfig{
			Start: cfg.LogSentry.Rules.OffHours.Start,
			End:   cfg.LogSentry.Rules.OffHours.End,
		}),
		rules.NewDomains(rules.DomainsConfig{
			Recent:     cfg.LogSentry.Rules.Domains.Recent,
			Indicators: cfg.LogSentry.Rules.Domains.Indicators,
		}),
	}

	engine := rules.NewEngine(st, ruleSet, rules.Config{
		Interval:        cfg.LogSentry.Rules.Interval,
		Cooldown:        cfg.LogSentry.Rules.Cooldown,
		SuppressionSize: cfg.LogSentry.Rules.SuppressionSize,
	}, metrics.NewEngine())

	var mirror *alertjson.Writer
	if cfg.LogSentry.Rules.AlertFile != "" {
		var err error
		mirror, err = alertjson.NewWriter(cfg.LogSentry.Rules.AlertFile)
		if err != nil {
			log.Fatalf("Failed to create alert mirror: %v", err)
		}
		engine.SetMirror(mirror)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := engine.Run(ctx); err != nil && err != context.Canceled {
			logger.Errorf("Rule engine error: %v", err)
		}
	}()

	waitForSignal()
	logger.Infof("Shutting down")
	cancel()
	if mirror != nil {
		if err := mirror.Close(); err != nil {
			logger.Errorf("Error closing alert mirror: %v", err)
		}
	}
	logger.Infof("Rule engine stopped")
}

func runAPI(args []string) {
	cfg := loadConfig(args, "api")

	st := openStore(cfg.LogSentry.DB.Path)
	defer st.Close()

	e := api.NewServer(st)
	go func() {
		logger.Infof("Query API listening on %s", cfg.LogSentry.API.Addr)
		if err := e.Start(cfg.LogSentry.API.Addr); err != nil {
			logger.Errorf("API server stopped: %v", err)
		}
	}()

	waitForSignal()
	logger.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error shutting down API server: %v", err)
	}
	logger.Infof("API stopped")
}

func runInit(args []string) {
	cfg := loadConfig(args, "init")

	st, err := store.Open(cfg.LogSentry.DB.Path)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	if err := st.Init(context.Background()); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	fmt.Printf("Schema ready in %s\n", cfg.LogSentry.DB.Path)
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <ingest|rules|api|init> [-config path]\n", filepath.Base(os.Args[0]))
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "ingest":
		runIngest(os.Args[2:])
	case "rules":
		runRules(os.Args[2:])
	case "api":
		runAPI(os.Args[2:])
	case "init":
		runInit(os.Args[2:])
	default:
		usage()
	}
}
