package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	Server   ServerConfig
	Detector DetectorConfig
	Scoring  ScoringConfig
	Redis    RedisConfig
	MQTT     MQTTConfig
	CORS     CORSConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            int
	MaxUploadMB     int
	ShutdownTimeout time.Duration
	GinMode         string
}

type DetectorConfig struct {
	URL       string
	HealthURL string
	Timeout   time.Duration
}

type ScoringConfig struct {
	ClassesFile   string
	MinConfidence float64
}

// RedisConfig enables score event pub/sub when URL is set.
type RedisConfig struct {
	URL     string
	Channel string
}

// MQTTConfig enables the MQTT score event publisher when URL is set.
type MQTTConfig struct {
	URL      string
	Topic    string
	ClientID string
}

type CORSConfig struct {
	AllowedOrigins string
}

type LogConfig struct {
	Level string
}

func (s ServerConfig) Addr() string {
	return ":" + strconv.Itoa(s.Port)
}

// MaxUploadBytes is the multipart memory limit handed to gin.
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

func LoadConfig() (*Config, error) {
	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, errors.Wrap(err, "invalid SERVER_PORT")
	}

	maxUpload, err := getIntEnv("MAX_UPLOAD_MB", 32)
	if err != nil {
		return nil, errors.Wrap(err, "invalid MAX_UPLOAD_MB")
	}
	if maxUpload <= 0 {
		return nil, errors.Errorf("invalid MAX_UPLOAD_MB: %d must be positive", maxUpload)
	}

	shutdownSec, err := getIntEnv("SHUTDOWN_TIMEOUT_SEC", 10)
	if err != nil {
		return nil, errors.Wrap(err, "invalid SHUTDOWN_TIMEOUT_SEC")
	}

	detectorTimeoutSec, err := getIntEnv("DETECTOR_TIMEOUT_SEC", 30)
	if err != nil {
		return nil, errors.Wrap(err, "invalid DETECTOR_TIMEOUT_SEC")
	}

	minConf, err := getFloatEnv("MIN_CONFIDENCE", 0)
	if err != nil {
		return nil, errors.Wrap(err, "invalid MIN_CONFIDENCE")
	}
	if minConf < 0 || minConf > 1 {
		return nil, errors.Errorf("invalid MIN_CONFIDENCE: %v not in [0,1]", minConf)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            serverPort,
			MaxUploadMB:     maxUpload,
			ShutdownTimeout: time.Duration(shutdownSec) * time.Second,
			GinMode:         getEnv("GIN_MODE", "release"),
		},
		Detector: DetectorConfig{
			URL:       getEnv("DETECTOR_URL", "http://localhost:5000/predict"),
			HealthURL: getEnv("DETECTOR_HEALTH_URL", "http://localhost:5000/health"),
			Timeout:   time.Duration(detectorTimeoutSec) * time.Second,
		},
		Scoring: ScoringConfig{
			ClassesFile:   getEnv("CLASSES_FILE", ""),
			MinConfidence: minConf,
		},
		Redis: RedisConfig{
			URL:     getEnv("REDIS_URL", ""),
			Channel: getEnv("REDIS_CHANNEL", "cleanliness:scores"),
		},
		MQTT: MQTTConfig{
			URL:      getEnv("MQTT_URL", ""),
			Topic:    getEnv("MQTT_TOPIC", "cleanliness/scores"),
			ClientID: getEnv("MQTT_CLIENT_ID", "cleanliness-api-"+time.Now().Format("20060102150405")),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getFloatEnv(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}
