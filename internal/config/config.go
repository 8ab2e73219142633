package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             int
	ServiceName      string
	UploadDirectory  string
	MaxUploadBytes   int64
	UploadMaxAge     time.Duration // Uploads older than this are removed by the sweeper
	ConfidenceThresh float64
	UnitLabel        string
	ModelPath        string
	ConfigPath       string // Empty for ONNX models
	ModelFormat      string // "yolov8" or "ssd"
	ModelInputSize   int
	DetectorMinScore float64
	NMSThreshold     float64
	DetectorWorkers  int // Number of independently loaded networks
	DatabasePath     string
	LogDirectory     string
	LogMaxSizeMB     int
	CORSOrigins      []string
	ShutdownTimeout  time.Duration
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:             getEnvAsInt("PORT", 8000),
		ServiceName:      getEnv("SERVICE_NAME", "YOLO Food Detection API"),
		UploadDirectory:  getEnv("UPLOAD_DIR", filepath.Join(".", "uploads")),
		MaxUploadBytes:   getEnvAsInt64("MAX_UPLOAD_BYTES", 10<<20),
		UploadMaxAge:     getEnvAsDuration("UPLOAD_MAX_AGE", 10*time.Minute),
		ConfidenceThresh: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.5),
		UnitLabel:        getEnv("UNIT_LABEL", "No.of"),
		ModelPath:        getEnv("MODEL_PATH", filepath.Join(".", "models", "yolov8n.onnx")),
		ConfigPath:       getEnv("CONFIG_PATH", ""),
		ModelFormat:      strings.ToLower(getEnv("MODEL_FORMAT", "yolov8")),
		ModelInputSize:   getEnvAsInt("MODEL_INPUT_SIZE", 640),
		DetectorMinScore: getEnvAsFloat("DETECTOR_MIN_SCORE", 0.25),
		NMSThreshold:     getEnvAsFloat("NMS_THRESHOLD", 0.45),
		DetectorWorkers:  getEnvAsInt("DETECTOR_WORKERS", 2),
		DatabasePath:     getEnv("DB_PATH", ""),
		LogDirectory:     getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LogMaxSizeMB:     getEnvAsInt("LOG_MAX_SIZE_MB", 10),
		CORSOrigins:      getEnvAsList("CORS_ORIGINS", []string{"*"}),
		ShutdownTimeout:  getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
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

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
