package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"keywordlens/internal/config"
	"keywordlens/internal/server"
	"keywordlens/pkg/logger"
)

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func main() {
	// Environment variable defaults (container friendly)
	defaultConfig := getEnvOrDefault("KEYWORDLENS_CONFIG", "")
	defaultHost := getEnvOrDefault("SERVER_HOST", "0.0.0.0")
	defaultPort := getEnvIntOrDefault("SERVER_PORT", 8080)
	defaultEndpoints := getEnvOrDefault("PROVIDER_ENDPOINTS", "")
	defaultAPIKey := getEnvOrDefault("PROVIDER_API_KEY", "")
	defaultTimeout := getEnvIntOrDefault("PROVIDER_TIMEOUT_MS", 30000)
	defaultRetries := getEnvIntOrDefault("PROVIDER_MAX_RETRIES", 3)
	defaultHistory := getEnvIntOrDefault("HISTORY_MAX_ENTRIES", 100)
	defaultExportRows := getEnvIntOrDefault("EXPORT_MAX_ROWS", 5000)
	defaultLogLevel := getEnvOrDefault("LOG_LEVEL", "info")

	// Command line flags (override environment variables)
	var (
		configPath = flag.String("config", defaultConfig, "Configuration file path (env: KEYWORDLENS_CONFIG)")
		host       = flag.String("host", defaultHost, "Listen host (env: SERVER_HOST)")
		port       = flag.Int("port", defaultPort, "Listen port (env: SERVER_PORT)")
		endpoints  = flag.String("provider-endpoints", defaultEndpoints, "Comma-separated SEO data provider endpoints (env: PROVIDER_ENDPOINTS)")
		apiKey     = flag.String("provider-api-key", defaultAPIKey, "Provider API key (env: PROVIDER_API_KEY)")
		timeoutMs  = flag.Int("provider-timeout-ms", defaultTimeout, "Provider request timeout in ms (env: PROVIDER_TIMEOUT_MS)")
		maxRetries = flag.Int("provider-max-retries", defaultRetries, "Provider retry attempts (env: PROVIDER_MAX_RETRIES)")
		maxHistory = flag.Int("history-max-entries", defaultHistory, "History entries kept per analysis type (env: HISTORY_MAX_ENTRIES)")
		exportRows = flag.Int("export-max-rows", defaultExportRows, "Maximum rows per export (env: EXPORT_MAX_ROWS)")
		logLevel   = flag.String("log-level", defaultLogLevel, "Log level: debug|info|warn|error (env: LOG_LEVEL)")
		logFormat  = flag.String("log-format", "json", "Log format: json|console")
	)
	flag.Parse()

	cfg, err := resolveConfig(*configPath, &config.Config{
		Server: config.ServerConfig{Host: *host, Port: *port},
		Provider: config.ProviderConfig{
			Endpoints:  *endpoints,
			APIKey:     *apiKey,
			TimeoutMs:  *timeoutMs,
			MaxRetries: *maxRetries,
		},
		History: config.HistoryConfig{MaxEntries: *maxHistory},
		Export:  config.ExportConfig{MaxRows: *exportRows},
		Logger:  config.LoggerConfig{Level: *logLevel, Format: *logFormat},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	logger.SetLogger(logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		TimeFormat: cfg.Logger.TimeFormat,
	}))
	log := logger.GetLogger().Component("main")

	log.WithFields(map[string]interface{}{
		"provider_endpoints": logger.MaskEndpoint(cfg.Provider.Endpoints),
		"provider_api_key":   logger.MaskAPIKey(cfg.Provider.APIKey),
		"history_entries":    cfg.History.MaxEntries,
		"export_max_rows":    cfg.Export.MaxRows,
	}).Info("Configuration loaded")

	srv, err := server.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to create server")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutdown signal received")
		if err := srv.Shutdown(); err != nil {
			log.WithError(err).Warn("Server shutdown was not clean")
		}
	}()

	if err := srv.Listen(); err != nil {
		log.WithError(err).Fatal("Server failed")
	}
	log.Info("Server stopped")
}

// resolveConfig prefers a config file when one is given; otherwise the
// flag/env assembled config is validated and used directly.
func resolveConfig(configPath string, fallback *config.Config) (*config.Config, error) {
	if configPath != "" {
		return config.NewManager().Load(configPath)
	}
	if fallback.Provider.Endpoints == "" {
		return nil, fmt.Errorf("provider endpoints are required: use -provider-endpoints or PROVIDER_ENDPOINTS")
	}
	return fallback, nil
}
