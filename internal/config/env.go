package config

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries every knob the extraction pipeline reads from the
// environment. All keys are optional and fall back to the defaults below.
type Config struct {
	// External binaries, resolved once at startup.
	FFmpegBin   string
	PdftoppmBin string
	EasyOCRBin  string
	WhisperBin  string

	WhisperModelDir string

	// Accelerator-memory thresholds (GB) for model-size selection.
	MemoryLargeGB  float64
	MemoryMediumGB float64
	MemorySmallGB  float64

	// OCR tuning.
	MinOCRConfidence float64
	OCRLanguages     []string

	// HTTP surface.
	Port       string
	APIKey     string
	APIKeyHash string
	JWTSecret  string

	// Optional post-extraction enrichment.
	GeminiAPIKey string
	GenModel     string

	// Remote input fetching.
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
}

// Load reads the environment (and an optional .env file) and returns the
// resolved configuration.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		FFmpegBin:   getEnv("FFMPEG_BIN", "ffmpeg"),
		PdftoppmBin: getEnv("PDFTOPPM_BIN", "pdftoppm"),
		EasyOCRBin:  getEnv("EASYOCR_BIN", "easyocr"),
		WhisperBin:  getEnv("WHISPER_BIN", "whisper"),

		WhisperModelDir: getEnv("WHISPER_MODEL_DIR", ""),

		MemoryLargeGB:  getEnvFloat("TOTAL_MEMORY_LARGE", 12),
		MemoryMediumGB: getEnvFloat("TOTAL_MEMORY_MEDIUM", 8),
		MemorySmallGB:  getEnvFloat("TOTAL_MEMORY_SMALL", 4),

		MinOCRConfidence: getEnvFloat("MIN_OCR_CONFIDENCE", 20),
		OCRLanguages:     []string{getEnv("OCR_LANG_PRIMARY", "vie"), getEnv("OCR_LANG_SECONDARY", "eng")},

		Port:       getEnv("PORT", "8080"),
		APIKey:     getEnv("API_KEY", ""),
		APIKeyHash: getEnv("API_KEY_HASH", ""),
		JWTSecret:  getEnv("JWT_SECRET", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", ""),
	}

	return cfg
}

// ResolveBinary checks that the named tool is actually invocable and returns
// its absolute path. Missing tools fail loudly here instead of surfacing as
// confusing mid-batch exec errors.
func ResolveBinary(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("external binary %q not found in PATH: %w", name, err)
	}
	return path, nil
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
