package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/nhicks00/courtcast/internal/api/rest"
	"github.com/nhicks00/courtcast/internal/broadcast"
	"github.com/nhicks00/courtcast/internal/engine"
	"github.com/nhicks00/courtcast/internal/fetch"
	"github.com/nhicks00/courtcast/internal/model"
	"github.com/nhicks00/courtcast/internal/overlay"
	"github.com/nhicks00/courtcast/internal/persist"
)

const (
	serviceName    = "courtcast"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s - Multi-Court Score Engine", serviceName, serviceVersion)

	config := loadConfig()

	// Open court persistence. A missing or corrupt database is non-fatal:
	// the engine falls back to empty courts 1..10.
	var (
		store  *persist.Store
		courts []*model.Court
	)
	store, err := persist.Open(config.DataPath)
	if err != nil {
		log.Printf("Court database unavailable: %v (starting with defaults)", err)
	} else {
		defer store.Close()
		courts, err = store.LoadCourts(context.Background())
		if err != nil {
			log.Printf("Court restore failed: %v (starting with defaults)", err)
		} else {
			log.Printf("✓ Restored %d courts from %s", len(courts), config.DataPath)
		}
	}

	// Fetch pipeline: HTTP client behind the deduplicating TTL cache.
	client := fetch.NewClient(config.FetchTimeout)
	cache := fetch.NewCache(client, config.CacheExpiration)

	broadcastStore := broadcast.NewStore()
	overlayServer := overlay.NewServer(broadcastStore)

	engineConfig := engine.Config{
		PollInterval:    config.PollInterval,
		CourtOffsetStep: 250 * time.Millisecond,
		MaxJitter:       time.Second,
	}

	var persister engine.Persister
	if store != nil {
		persister = store
	}
	eng := engine.New(engineConfig, cache, broadcastStore, overlayServer, persister, courts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng.Start(ctx)
	log.Println("✓ Engine started")

	if config.AutoStartPolling {
		eng.StartAllPolling()
		log.Println("✓ Polling started for all queued courts")
	}

	go func() {
		if err := overlayServer.Start(config.OverlayPort); err != nil {
			log.Printf("Overlay server error: %v", err)
		}
	}()
	log.Printf("✓ Overlay push server listening on :%s", config.OverlayPort)

	restServer := rest.NewServer(config.ControlPort, eng)
	go func() {
		if err := restServer.Start(); err != nil {
			log.Printf("Control API server error: %v", err)
		}
	}()
	log.Printf("✓ Control API listening on :%s", config.ControlPort)

	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Printf("  Overlay:  ws://127.0.0.1:%s/ws/overlay/{court}", config.OverlayPort)
	log.Printf("  Control:  http://127.0.0.1:%s/api/v1", config.ControlPort)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	eng.StopAllPolling()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Control API shutdown error: %v", err)
	}
	if err := overlayServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Overlay server shutdown error: %v", err)
	}

	log.Printf("%s stopped", serviceName)
}

type Config struct {
	OverlayPort      string
	ControlPort      string
	DataPath         string
	PollInterval     time.Duration
	CacheExpiration  time.Duration
	FetchTimeout     time.Duration
	AutoStartPolling bool
}

func loadConfig() Config {
	home, _ := os.UserHomeDir()
	defaultData := filepath.Join(home, ".courtcast", "courts.db")

	return Config{
		OverlayPort:      getEnv("OVERLAY_PORT", overlay.DefaultPort),
		ControlPort:      getEnv("CONTROL_PORT", "8788"),
		DataPath:         getEnv("COURTCAST_DB", defaultData),
		PollInterval:     getEnvDuration("POLL_INTERVAL", 3*time.Second),
		CacheExpiration:  getEnvDuration("CACHE_EXPIRATION", fetch.DefaultCacheExpiration),
		FetchTimeout:     getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
		AutoStartPolling: getEnv("AUTO_START_POLLING", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
