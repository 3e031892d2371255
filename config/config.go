package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string
	TelegramToken   string // пустой токен выключает бота
	CalibrationFile string
	DatabaseURL     string // пустой URL включает хранение истории в памяти
	GeminiAPIKey    string
	GeminiModel     string
	JPEGQuality     int
	HistorySize     int
	GasLeakSeed     uint64
	GasLeakSeeded   bool // true, если GAS_LEAK_SEED задан
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":5000"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		CalibrationFile: getEnv("CALIBRATION_FILE", "config/calibration.yaml"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     os.Getenv("GEMINI_MODEL"),
	}

	var err error
	if cfg.JPEGQuality, err = getInt("JPEG_QUALITY", 90); err != nil {
		return nil, err
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		return nil, fmt.Errorf("JPEG_QUALITY must be in [1, 100], got %d", cfg.JPEGQuality)
	}
	if cfg.HistorySize, err = getInt("HISTORY_SIZE", 100); err != nil {
		return nil, err
	}
	if cfg.HistorySize <= 0 {
		return nil, fmt.Errorf("HISTORY_SIZE must be positive, got %d", cfg.HistorySize)
	}

	if v := os.Getenv("GAS_LEAK_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("GAS_LEAK_SEED: %w", err)
		}
		cfg.GasLeakSeed = seed
		cfg.GasLeakSeeded = true
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
