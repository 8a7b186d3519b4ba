package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Aashish23092/ghost-shift-audit/logging"
	"github.com/Aashish23092/ghost-shift-audit/service"
)

const geminiPlaceholderKey = "YOUR_GOOGLE_API_KEY_HERE"

type Config struct {
	ServerPort        string
	MaxFileSize       int64
	TesseractDataPath string
	PaddleOCRURL      string

	GeminiAPIKey string
	GeminiModel  string

	HistoryDBPath    string
	HistoryRetention int
	RosterFile       string

	RateLimit      int
	RateWindow     time.Duration
	RedisAddr      string
	RedisPassword  string
	AllowedOrigins []string

	AnalyticsSecret string

	MatchThreshold          int
	TheftTolerance          int
	LateTolerance           int
	EarlyDepartureTolerance int
	CheckEarlyDeparture     bool
	RequireSupervisor       bool
	ReconcileWorkers        int

	LogLevel  string
	LogFormat string
}

// LoadConfig reads configuration from, in increasing precedence: defaults,
// the YAML config file, .env files and the environment. An empty
// configFile searches for ./ghost-audit.yaml and ignores its absence.
func LoadConfig(configFile string) (*Config, error) {
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	bindLegacyEnv(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("ghost-audit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		ServerPort:        v.GetString("server.port"),
		MaxFileSize:       v.GetInt64("server.max_upload_mb") * 1024 * 1024,
		TesseractDataPath: v.GetString("ocr.tessdata_prefix"),
		PaddleOCRURL:      v.GetString("ocr.paddle_url"),

		GeminiAPIKey: v.GetString("gemini.api_key"),
		GeminiModel:  v.GetString("gemini.model"),

		HistoryDBPath:    v.GetString("history.db_path"),
		HistoryRetention: v.GetInt("history.retention"),
		RosterFile:       v.GetString("roster.file"),

		RateLimit:      v.GetInt("ratelimit.limit"),
		RateWindow:     v.GetDuration("ratelimit.window"),
		RedisAddr:      v.GetString("redis.addr"),
		RedisPassword:  v.GetString("redis.password"),
		AllowedOrigins: origins(v),

		AnalyticsSecret: v.GetString("analytics.secret"),

		MatchThreshold:          v.GetInt("rules.match_threshold"),
		TheftTolerance:          v.GetInt("rules.theft_tolerance"),
		LateTolerance:           v.GetInt("rules.late_tolerance"),
		EarlyDepartureTolerance: v.GetInt("rules.early_departure_tolerance"),
		CheckEarlyDeparture:     v.GetBool("rules.check_early_departure"),
		RequireSupervisor:       v.GetBool("rules.require_supervisor"),
		ReconcileWorkers:        v.GetInt("rules.workers"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	rules := service.DefaultRuleConfig()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("ocr.tessdata_prefix", "/usr/share/tesseract-ocr/4.00/tessdata")
	v.SetDefault("ocr.paddle_url", "http://paddleocr:8866/predict/ocr_system")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("history.db_path", "data/audit.db")
	v.SetDefault("history.retention", 10)
	v.SetDefault("roster.file", "data/roster.yaml")
	v.SetDefault("ratelimit.limit", 10)
	v.SetDefault("ratelimit.window", time.Hour)
	v.SetDefault("cors.allowed_origins", "*")
	v.SetDefault("analytics.secret", "ghost2024stats")
	v.SetDefault("rules.match_threshold", rules.MatchThreshold)
	v.SetDefault("rules.theft_tolerance", rules.TheftTolerance)
	v.SetDefault("rules.late_tolerance", rules.LateTolerance)
	v.SetDefault("rules.early_departure_tolerance", rules.EarlyDepartureTolerance)
	v.SetDefault("rules.check_early_departure", false)
	v.SetDefault("rules.require_supervisor", false)
	v.SetDefault("rules.workers", rules.Workers)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
}

// bindLegacyEnv maps the variable names used by existing deployments.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("ocr.tessdata_prefix", "OCR_TESSDATA_PREFIX", "TESSDATA_PREFIX")
	_ = v.BindEnv("ocr.paddle_url", "OCR_PADDLE_URL", "PADDLEOCR_API_URL")
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS", "ALLOWED_ORIGINS")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
}

func origins(v *viper.Viper) []string {
	raw, ok := v.Get("cors.allowed_origins").(string)
	if !ok {
		return v.GetStringSlice("cors.allowed_origins")
	}

	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// GeminiEnabled reports whether a real Gemini API key is configured.
func (c *Config) GeminiEnabled() bool {
	return c.GeminiAPIKey != "" && c.GeminiAPIKey != geminiPlaceholderKey
}

func (c *Config) RuleConfig() service.RuleConfig {
	return service.RuleConfig{
		MatchThreshold:          c.MatchThreshold,
		TheftTolerance:          c.TheftTolerance,
		LateTolerance:           c.LateTolerance,
		EarlyDepartureTolerance: c.EarlyDepartureTolerance,
		CheckEarlyDeparture:     c.CheckEarlyDeparture,
		RequireSupervisor:       c.RequireSupervisor,
		Workers:                 c.ReconcileWorkers,
	}
}

func (c *Config) LogConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Format = c.LogFormat
	return cfg
}
