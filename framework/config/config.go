package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config is the central typed configuration struct.
type Config struct {
	App         AppConfig
	Log         LogConfig
	InputFilter InputFilterConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

type InputFilterConfig struct {
	// SpecDir is where relative spec paths given to the CLI are resolved.
	SpecDir string
	// RequiredMessage replaces the default isEmpty message when set.
	RequiredMessage string
	// StrictUnknown makes unknown fields fail the CLI run.
	StrictUnknown bool
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	cfg := &Config{
		App: AppConfig{
			Name:  Get("APP_NAME", "inputfilter"),
			Env:   Get("APP_ENV", "local"),
			Debug: GetBool("APP_DEBUG", false),
		},
		Log: LogConfig{
			Level:  Get("LOG_LEVEL", ""),
			Format: Get("LOG_FORMAT", ""),
		},
		InputFilter: InputFilterConfig{
			SpecDir:         Get("INPUTFILTER_SPEC_DIR", "."),
			RequiredMessage: Get("INPUTFILTER_REQUIRED_MESSAGE", ""),
			StrictUnknown:   GetBool("INPUTFILTER_STRICT_UNKNOWN", false),
		},
	}

	// APP_DEBUG and APP_ENV pick the log defaults; explicit LOG_* values win.
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
		if cfg.App.Debug {
			cfg.Log.Level = "debug"
		}
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
		if cfg.IsProduction() {
			cfg.Log.Format = "json"
		}
	}
	return cfg
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// GetBool returns a bool env value, falling back to defaultVal when the
// variable is unset or not a boolean.
func GetBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return defaultVal
	}
	return b
}
