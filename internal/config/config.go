package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the market simulator.
type Config struct {
	Port            int
	LogLevel        string
	OpeningPrice    float64 // dollars
	RoundInterval   time.Duration
	Rounds          int64 // 0 = run until shutdown
	Traders         int
	TraderQuantity  int64
	MakerQuantity   int64
	MakerMargin     float64
	Seed            int64 // 0 = time-based
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	openingPrice, err := getFloat("OPENING_PRICE", 100.0)
	if err != nil {
		return nil, fmt.Errorf("invalid OPENING_PRICE: %w", err)
	}
	if openingPrice <= 0 {
		return nil, fmt.Errorf("invalid OPENING_PRICE: must be positive")
	}

	roundInterval, err := getDuration("ROUND_INTERVAL", 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("invalid ROUND_INTERVAL: %w", err)
	}

	rounds, err := getInt64("ROUNDS", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid ROUNDS: %w", err)
	}
	if rounds < 0 {
		return nil, fmt.Errorf("invalid ROUNDS: must not be negative")
	}

	traders, err := getInt("TRADERS", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid TRADERS: %w", err)
	}
	if traders < 0 {
		return nil, fmt.Errorf("invalid TRADERS: must not be negative")
	}

	traderQuantity, err := getInt64("TRADER_QUANTITY", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid TRADER_QUANTITY: %w", err)
	}
	if traderQuantity <= 0 {
		return nil, fmt.Errorf("invalid TRADER_QUANTITY: must be positive")
	}

	makerQuantity, err := getInt64("MAKER_QUANTITY", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid MAKER_QUANTITY: %w", err)
	}
	if makerQuantity <= 0 {
		return nil, fmt.Errorf("invalid MAKER_QUANTITY: must be positive")
	}

	makerMargin, err := getFloat("MAKER_MARGIN", 0.02)
	if err != nil {
		return nil, fmt.Errorf("invalid MAKER_MARGIN: %w", err)
	}
	if makerMargin < 0 || makerMargin >= 2 {
		return nil, fmt.Errorf("invalid MAKER_MARGIN: must be in [0, 2)")
	}

	seed, err := getInt64("SEED", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid SEED: %w", err)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:            port,
		LogLevel:        logLevel,
		OpeningPrice:    openingPrice,
		RoundInterval:   roundInterval,
		Rounds:          rounds,
		Traders:         traders,
		TraderQuantity:  traderQuantity,
		MakerQuantity:   makerQuantity,
		MakerMargin:     makerMargin,
		Seed:            seed,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
