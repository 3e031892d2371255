package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mine-guard/config"
	app "mine-guard/internal/application"
	httpapi "mine-guard/internal/api/http"
	"mine-guard/internal/api/telegram"
	"mine-guard/internal/container"
	"mine-guard/internal/domain/port"
	"mine-guard/internal/infrastructure/describer"
	"mine-guard/internal/infrastructure/sensor"
	"mine-guard/internal/infrastructure/storage"
	"mine-guard/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	calibration, err := config.LoadCalibration(cfg.CalibrationFile)
	if err != nil {
		log.Fatalf("Failed to load calibration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Датчик газа пока симулируется
	gas := sensor.NewRandomGasLeakSimulator()
	if cfg.GasLeakSeeded {
		gas = sensor.NewGasLeakSimulator(cfg.GasLeakSeed)
	}
	pipeline := vision.NewPipeline(gas, cfg.JPEGQuality)

	// История кадров: Postgres, если задан DATABASE_URL, иначе память
	var results port.ResultStore = storage.NewMemoryResultStore(cfg.HistorySize)
	if cfg.DatabaseURL != "" {
		db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		pg := storage.NewPostgresResultStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to prepare schema: %v", err)
		}
		results = pg
		log.Println("History is stored in Postgres")
	}

	var primary port.HazardDescriber
	if cfg.GeminiAPIKey != "" {
		primary = describer.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel)
	}

	appContainer := container.New(container.Deps{
		Operators:   storage.NewMemoryOperatorRepository(),
		Analyzer:    pipeline,
		Results:     results,
		Describer:   primary,
		Fallback:    describer.NewTemplate(),
		Calibration: calibration,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewHandler(appContainer.MonitoringService).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on http://localhost%s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}
		go func() {
			log.Println("Bot is running...")
			if err := bot.Run(ctx); err != nil {
				log.Printf("Bot error: %v", err)
			}
		}()
	} else {
		log.Println("TELEGRAM_TOKEN is empty, bot is disabled")
	}

	// SIGHUP перечитывает файл калибровки без перезапуска
	go reloadCalibrationOnHUP(ctx, cfg.CalibrationFile, appContainer.MonitoringService)

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
}

func reloadCalibrationOnHUP(ctx context.Context, path string, monitoring *app.MonitoringService) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			cal, err := config.LoadCalibration(path)
			if err != nil {
				log.Printf("Calibration reload failed, keeping current values: %v", err)
				continue
			}
			if err := monitoring.SetCalibration(cal); err != nil {
				log.Printf("Calibration reload rejected: %v", err)
				continue
			}
			log.Printf("Calibration reloaded from %s", path)
		}
	}
}
