package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGroq      = "groq"

	OCREngineTesseract = "tesseract"
	OCREngineVision    = "vision"

	ModeHotkey = "hotkey"
	ModeWatch  = "watch"

	APIKeyPathEnvVar = "API_KEY_FILE"
	EnvPathEnvVar    = "QUIZ_OCR_LLM"
)

// LoadOptions carries command-line overrides. Empty fields are ignored.
type LoadOptions struct {
	EnvPath            string
	APIKeyPathOverride string
	Provider           string
	Model              string
	BoxesFile          string
	CaptureWindow      string
}

type Config struct {
	Provider   string
	APIKey     string
	APIKeyPath string
	Model      string
	LLMBaseURL string
	LLMTimeout time.Duration
	MaxRetries int
	RatePerSec float64

	BoxesFile     string
	CaptureWindow string
	OptionCount   int

	PollInterval time.Duration
	StableReads  int
	Hotkey       string

	OCREngine   string
	OCRLanguage string
	OCRPSM      int
	OCRScale    float64

	SolveDeadline time.Duration

	CopyToClipboard   bool
	EnableFileLogging bool
	LogLevel          string
	MetricsAddr       string
	SaveCaptures      bool
	// InstancePort guards against a second solver; 0 disables the guard.
	InstancePort int
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources in priority order:
	// 1) explicit --env-file
	// 2) .env next to the executable
	// 3) QUIZ_OCR_LLM env var as a path to a config file
	// 4) .env in the working directory
	envPath, err := resolveEnvPath(opts.EnvPath)
	if err != nil {
		return nil, err
	}
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	provider := resolveProvider(firstNonEmpty(opts.Provider, os.Getenv("PROVIDER")))
	apiKeyPath := resolveAPIKeyPath(opts, dotenvValues)

	cfg := &Config{
		Provider:   provider,
		APIKey:     resolveAPIKey(apiKeyPath, provider),
		APIKeyPath: apiKeyPath,
		Model:      firstNonEmpty(opts.Model, os.Getenv("MODEL")),
		LLMBaseURL: os.Getenv("LLM_BASE_URL"),
		LLMTimeout: time.Duration(positiveInt("LLM_TIMEOUT_SEC", 45)) * time.Second,
		MaxRetries: nonNegativeInt("LLM_MAX_RETRIES", 3),
		RatePerSec: nonNegativeFloat("LLM_RATE_PER_SEC", 1),

		BoxesFile:     firstNonEmpty(opts.BoxesFile, os.Getenv("BOXES_FILE"), "bounding_boxes.json"),
		CaptureWindow: firstNonEmpty(opts.CaptureWindow, os.Getenv("CAPTURE_WINDOW")),
		OptionCount:   positiveInt("OPTION_COUNT", 4),

		PollInterval: time.Duration(positiveInt("POLL_INTERVAL_MS", 100)) * time.Millisecond,
		StableReads:  positiveInt("STABLE_READS", 5),
		Hotkey:       getEnvWithDefault("HOTKEY", "Space"),

		OCREngine:   resolveOCREngine(os.Getenv("OCR_ENGINE")),
		OCRLanguage: getEnvWithDefault("OCR_LANGUAGE", "eng"),
		OCRPSM:      nonNegativeInt("OCR_PSM", 6),
		OCRScale:    positiveFloat("OCR_SCALE", 2),

		SolveDeadline: time.Duration(positiveInt("SOLVE_DEADLINE_SEC", 60)) * time.Second,

		CopyToClipboard:   envBool("COPY_TO_CLIPBOARD"),
		EnableFileLogging: envBool("ENABLE_FILE_LOGGING"),
		LogLevel:          strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		MetricsAddr:       os.Getenv("METRICS_ADDR"),
		SaveCaptures:      envBool("SAVE_CAPTURES"),
		InstancePort:      nonNegativeInt("INSTANCE_PORT", 49500),
	}

	return cfg, nil
}

// Validate reports settings that make an LLM call impossible.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%s is required. Checked key file %s and %s env var",
			APIKeyEnvVar(c.Provider), c.APIKeyPath, APIKeyEnvVar(c.Provider))
	}
	return nil
}

// RegionCount is the number of calibrated rectangles the given mode expects:
// [question number,] title, image, then one per option.
func (c *Config) RegionCount(mode string) int {
	n := 2 + c.OptionCount
	if mode == ModeWatch {
		n++
	}
	return n
}

// APIKeyEnvVar names the env var holding the key for provider.
func APIKeyEnvVar(provider string) string {
	if provider == ProviderGroq {
		return "GROQ_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}

func resolveEnvPath(explicit string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("env file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv, nil
		}
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt, nil
		}
	}

	if _, err := os.Stat(".env"); err == nil {
		return ".env", nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	return "", nil
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveAPIKeyPath(opts LoadOptions, dotenvValues map[string]string) string {
	var keyPath string

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.APIKeyPathOverride); overridePath != "" {
		keyPath = overridePath
	}

	return keyPath
}

func resolveAPIKey(keyPath, provider string) string {
	if keyPath != "" {
		if data, err := os.ReadFile(keyPath); err == nil {
			if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
				return fileKey
			}
		}
	}

	return strings.TrimSpace(os.Getenv(APIKeyEnvVar(provider)))
}

func resolveProvider(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case ProviderGroq:
		return ProviderGroq
	default:
		return ProviderAnthropic
	}
}

func resolveOCREngine(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case OCREngineVision, "llm":
		return OCREngineVision
	default:
		return OCREngineTesseract
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func envBool(key string) bool {
	return strings.ToLower(strings.TrimSpace(os.Getenv(key))) == "true"
}

func positiveInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func nonNegativeInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// nonNegativeFloat accepts 0, which callers treat as "off".
func nonNegativeFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f >= 0 {
			return f
		}
	}
	return def
}

func positiveFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}
