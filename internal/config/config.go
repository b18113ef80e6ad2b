package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Provider chain, tried in order.
	Providers []string

	// Provider credentials and endpoints
	DeepLAPIKey       string
	LibreTranslateURL string
	LibreTranslateKey string

	// Translation
	Workers        int
	ChunkMaxChars  int
	RequestTimeout time.Duration

	// Extraction
	ExtractMinChars int
	OCRLanguages    []string
	OCRDPI          int
	OCRMinChars     int

	// Reconstruction
	PDFFontName    string
	PDFMinFontSize float64
}

func Load() Config {
	cfg := Config{
		Providers: envList("DOCTRANS_PROVIDERS", []string{"google", "deepl", "libre"}),

		DeepLAPIKey:       os.Getenv("DOCTRANS_DEEPL_API_KEY"),
		LibreTranslateURL: envOr("DOCTRANS_LIBRE_URL", "http://localhost:5000"),
		LibreTranslateKey: os.Getenv("DOCTRANS_LIBRE_API_KEY"),

		Workers:        envInt("DOCTRANS_WORKERS", 4),
		ChunkMaxChars:  envInt("DOCTRANS_CHUNK_MAX_CHARS", 4500),
		RequestTimeout: envDuration("DOCTRANS_REQUEST_TIMEOUT", 30*time.Second),

		ExtractMinChars: envInt("DOCTRANS_EXTRACT_MIN_CHARS", 64),
		OCRLanguages:    envList("DOCTRANS_OCR_LANGS", []string{"eng"}),
		OCRDPI:          envInt("DOCTRANS_OCR_DPI", 300),
		OCRMinChars:     envInt("DOCTRANS_OCR_MIN_CHARS", 32),

		PDFFontName:    envOr("DOCTRANS_PDF_FONT", "Helvetica"),
		PDFMinFontSize: envFloat("DOCTRANS_PDF_MIN_FONT_SIZE", 4.0),
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.ChunkMaxChars <= 0 {
		cfg.ChunkMaxChars = 4500
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.ExtractMinChars <= 0 {
		cfg.ExtractMinChars = 64
	}
	if cfg.OCRDPI < 300 {
		cfg.OCRDPI = 300
	}
	if cfg.OCRMinChars <= 0 {
		cfg.OCRMinChars = 32
	}
	if cfg.PDFMinFontSize <= 0 {
		cfg.PDFMinFontSize = 4.0
	}

	return cfg
}

func (c Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("DOCTRANS_PROVIDERS must name at least one provider")
	}
	for _, p := range c.Providers {
		switch p {
		case "google", "libre":
		case "deepl":
			if c.DeepLAPIKey == "" {
				return fmt.Errorf("DOCTRANS_DEEPL_API_KEY is required when deepl is enabled")
			}
		default:
			return fmt.Errorf("unknown provider %q", p)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
