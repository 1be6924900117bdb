package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "NEWSINGEST_CONFIG"
	newsAPIKeyEnv      = "NEWS_API_KEY"
	openAIKeyEnv       = "OPENAI_API_KEY"
	anthropicKeyEnv    = "ANTHROPIC_API_KEY"
	geminiKeyEnv       = "GEMINI_API_KEY"
	databaseDSNEnv     = "DATABASE_DSN"
	storeDriverEnv     = "STORE_DRIVER"
	storeURLEnv        = "STORE_URL"
	storeKeyEnv        = "STORE_SERVICE_KEY"
	supabaseURLEnv     = "SUPABASE_URL"
	supabaseKeyEnv     = "SUPABASE_SERVICE_ROLE_KEY"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	logLevelEnv        = "LOG_LEVEL"
	httpAddrEnv        = "HTTP_ADDR"
	defaultPageSize    = 10
	defaultNewsAPIURL  = "https://newsapi.org/v2/top-headlines"
	defaultTable       = "news_articles"
	defaultSQLiteDSN   = "file:newsingest.db?_pragma=busy_timeout(5000)"
	defaultHTTPAddress = ":8080"
)

// Storage drivers understood by storage.Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverREST     = "rest"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	News          NewsConfig         `yaml:"news"`
	AI            AIConfig           `yaml:"ai"`
	Storage       StorageConfig      `yaml:"storage"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig selects slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig describes the HTTP trigger.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

// SchedulerConfig enables periodic runs inside `serve`; zero interval disables them.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// NewsConfig groups settings for the news search API and its sources.
type NewsConfig struct {
	APIKey      string         `yaml:"apiKey"`
	Endpoint    string         `yaml:"endpoint"`
	PageSize    int            `yaml:"pageSize"`
	Timeout     time.Duration  `yaml:"timeout"`
	Concurrency int            `yaml:"concurrency"`
	Sources     []SourceConfig `yaml:"sources"`
}

// SourceConfig names one upstream source and the scanner strategy that reads it.
type SourceConfig struct {
	ID      string            `yaml:"id"`
	Scanner string            `yaml:"scanner"`
	Options map[string]string `yaml:"options"`
}

// AIConfig defines summarization providers and enrichment tuning.
type AIConfig struct {
	OpenAI            ProviderConfig `yaml:"openai"`
	Anthropic         ProviderConfig `yaml:"anthropic"`
	Gemini            ProviderConfig `yaml:"gemini"`
	Temperature       float32        `yaml:"temperature"`
	MaxTokens         int            `yaml:"maxTokens"`
	Timeout           time.Duration  `yaml:"timeout"`
	Concurrency       int            `yaml:"concurrency"`
	RequestsPerSecond float64        `yaml:"requestsPerSecond"`
	CacheTTL          time.Duration  `yaml:"cacheTTL"`
}

// ProviderConfig defines how to contact one AI provider.
type ProviderConfig struct {
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseUrl"`
}

// StorageConfig selects the article store.
type StorageConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	URL        string `yaml:"url"`
	ServiceKey string `yaml:"serviceKey"`
	Table      string `yaml:"table"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if a path is given or NEWSINGEST_CONFIG is
// set) on top of the defaults and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)

		var zeros explicitZeros
		if err := yaml.Unmarshal(raw, &zeros); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		zeros.apply(&cfg)
	}

	cfg.applyEnvOverrides(os.Getenv)
	return cfg, nil
}

// Validate reports configuration that can never produce a working run.
func (c Config) Validate() error {
	if len(c.News.Sources) == 0 {
		return fmt.Errorf("config: no news sources configured")
	}
	if c.News.PageSize < 1 {
		return fmt.Errorf("config: news page size must be positive, got %d", c.News.PageSize)
	}
	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres, DriverREST:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

func (c *Config) applyEnvOverrides(getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v := strings.TrimSpace(getenv(key)); v != "" {
				*dst = v
				return
			}
		}
	}

	set(&c.News.APIKey, newsAPIKeyEnv)
	set(&c.AI.OpenAI.APIKey, openAIKeyEnv)
	set(&c.AI.Anthropic.APIKey, anthropicKeyEnv)
	set(&c.AI.Gemini.APIKey, geminiKeyEnv)
	set(&c.Storage.Driver, storeDriverEnv)
	set(&c.Storage.URL, storeURLEnv, supabaseURLEnv)
	set(&c.Storage.ServiceKey, storeKeyEnv, supabaseKeyEnv)
	set(&c.Notifications.Telegram.BotToken, telegramTokenEnv)
	set(&c.Notifications.Telegram.ChatID, telegramChatIDEnv)
	set(&c.Logging.Level, logLevelEnv)
	set(&c.Server.Addr, httpAddrEnv)

	explicitDriver := strings.TrimSpace(getenv(storeDriverEnv)) != ""
	if v := strings.TrimSpace(getenv(databaseDSNEnv)); v != "" {
		c.Storage.DSN = v
		if !explicitDriver && strings.HasPrefix(v, "postgres") {
			c.Storage.Driver = DriverPostgres
		}
		return
	}
	if !explicitDriver && (getenv(storeURLEnv) != "" || getenv(supabaseURLEnv) != "") {
		c.Storage.Driver = DriverREST
	}
}

// explicitZeros captures numeric keys where zero is a valid setting, so
// presence in the file decides instead of the value.
type explicitZeros struct {
	AI struct {
		Temperature       *float32 `yaml:"temperature"`
		RequestsPerSecond *float64 `yaml:"requestsPerSecond"`
	} `yaml:"ai"`
}

func (z explicitZeros) apply(cfg *Config) {
	if z.AI.Temperature != nil {
		cfg.AI.Temperature = *z.AI.Temperature
	}
	if z.AI.RequestsPerSecond != nil {
		cfg.AI.RequestsPerSecond = *z.AI.RequestsPerSecond
	}
}

func mergeConfig(base, override Config) Config {
	mergeString(&base.Logging.Level, override.Logging.Level)
	mergeString(&base.Logging.Format, override.Logging.Format)

	mergeString(&base.Server.Addr, override.Server.Addr)
	mergeDuration(&base.Server.ReadTimeout, override.Server.ReadTimeout)
	mergeDuration(&base.Server.WriteTimeout, override.Server.WriteTimeout)
	if len(override.Server.AllowedOrigins) > 0 {
		base.Server.AllowedOrigins = override.Server.AllowedOrigins
	}

	mergeDuration(&base.Scheduler.Interval, override.Scheduler.Interval)

	mergeString(&base.News.APIKey, override.News.APIKey)
	mergeString(&base.News.Endpoint, override.News.Endpoint)
	mergeInt(&base.News.PageSize, override.News.PageSize)
	mergeDuration(&base.News.Timeout, override.News.Timeout)
	mergeInt(&base.News.Concurrency, override.News.Concurrency)
	if len(override.News.Sources) > 0 {
		base.News.Sources = override.News.Sources
	}

	mergeProvider(&base.AI.OpenAI, override.AI.OpenAI)
	mergeProvider(&base.AI.Anthropic, override.AI.Anthropic)
	mergeProvider(&base.AI.Gemini, override.AI.Gemini)
	mergeInt(&base.AI.MaxTokens, override.AI.MaxTokens)
	mergeDuration(&base.AI.Timeout, override.AI.Timeout)
	mergeInt(&base.AI.Concurrency, override.AI.Concurrency)
	mergeDuration(&base.AI.CacheTTL, override.AI.CacheTTL)

	mergeString(&base.Storage.Driver, override.Storage.Driver)
	mergeString(&base.Storage.DSN, override.Storage.DSN)
	mergeString(&base.Storage.URL, override.Storage.URL)
	mergeString(&base.Storage.ServiceKey, override.Storage.ServiceKey)
	mergeString(&base.Storage.Table, override.Storage.Table)

	mergeString(&base.Notifications.Telegram.BotToken, override.Notifications.Telegram.BotToken)
	mergeString(&base.Notifications.Telegram.ChatID, override.Notifications.Telegram.ChatID)

	return base
}

func mergeProvider(dst *ProviderConfig, src ProviderConfig) {
	mergeString(&dst.APIKey, src.APIKey)
	mergeString(&dst.Model, src.Model)
	mergeString(&dst.BaseURL, src.BaseURL)
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func mergeDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

// Default returns the configuration used when nothing else is provided.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:           defaultHTTPAddress,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   5 * time.Minute,
			AllowedOrigins: []string{"*"},
		},
		News: NewsConfig{
			Endpoint:    defaultNewsAPIURL,
			PageSize:    defaultPageSize,
			Timeout:     15 * time.Second,
			Concurrency: 1,
			Sources: []SourceConfig{
				{ID: "bbc-news", Scanner: "newsapi"},
				{ID: "cnn", Scanner: "newsapi"},
				{ID: "reuters", Scanner: "newsapi"},
				{ID: "the-verge", Scanner: "newsapi"},
				{ID: "techcrunch", Scanner: "newsapi"},
			},
		},
		AI: AIConfig{
			OpenAI:      ProviderConfig{Model: "gpt-4o-mini"},
			Anthropic:   ProviderConfig{Model: "claude-3-5-haiku-20241022"},
			Gemini:      ProviderConfig{Model: "gemini-1.5-flash"},
			Temperature: 0.7,
			MaxTokens:   150,
			Timeout:     20 * time.Second,
			Concurrency: 4,
			CacheTTL:    24 * time.Hour,
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DSN:    defaultSQLiteDSN,
			Table:  defaultTable,
		},
	}
}
