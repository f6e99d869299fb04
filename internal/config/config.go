package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr        string   `yaml:"addr" env:"SERVER_ADDR" env-default:":8080"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"*"`
}

// FeedsConfig holds upstream API settings
type FeedsConfig struct {
	OddsBaseURL   string        `yaml:"odds_base_url" env:"ODDS_API_BASE" env-default:"https://api.the-odds-api.com"`
	OddsAPIKey    string        `yaml:"odds_api_key" env:"ODDS_API_KEY" env-required:"true"`
	Regions       string        `yaml:"regions" env:"ODDS_REGIONS" env-default:"us"`
	ESPNBaseURL   string        `yaml:"espn_base_url" env:"ESPN_BASE" env-default:"https://site.api.espn.com"`
	Timeout       time.Duration `yaml:"timeout" env:"FEED_TIMEOUT" env-default:"15s"`
	RetryAttempts int           `yaml:"retry_attempts" env:"FEED_RETRY_ATTEMPTS" env-default:"2"`
}

// ScheduleConfig controls which leagues and books are served
type ScheduleConfig struct {
	Leagues      []string      `yaml:"leagues" env:"LEAGUES" env-default:"icehockey_nhl"`
	Bookmakers   []string      `yaml:"bookmakers" env:"BOOKMAKERS" env-default:"draftkings,fanduel,betmgm"`
	PrimaryBook  string        `yaml:"primary_book" env:"PRIMARY_BOOK" env-default:"draftkings"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" env-default:"2m"`
	TimeZone     string        `yaml:"time_zone" env:"TIME_ZONE" env-default:"Local"`
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"` // 0 uses each league's own interval
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	URL      string `yaml:"url" env:"REDIS_URL" env-default:"localhost:6380"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
}

// PublisherConfig selects where snapshot updates are published
type PublisherConfig struct {
	Kind         string   `yaml:"kind" env:"PUBLISHER" env-default:"none"` // none, redis, kafka
	KafkaBrokers []string `yaml:"kafka_brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaTopic   string   `yaml:"kafka_topic" env:"KAFKA_TOPIC" env-default:"schedule.updates"`
}

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Feeds     FeedsConfig     `yaml:"feeds"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Redis     RedisConfig     `yaml:"redis"`
	Publisher PublisherConfig `yaml:"publisher"`
	LogLevel  string          `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads the YAML file at CONFIG_PATH when set, then environment
// variables, which take precedence
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Schedule.Leagues = trimAll(c.Schedule.Leagues)
	c.Schedule.Bookmakers = trimAll(c.Schedule.Bookmakers)
	c.Server.CORSOrigins = trimAll(c.Server.CORSOrigins)
	c.Publisher.KafkaBrokers = trimAll(c.Publisher.KafkaBrokers)
	c.Publisher.Kind = strings.ToLower(strings.TrimSpace(c.Publisher.Kind))
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.Feeds.OddsAPIKey == "" {
		return fmt.Errorf("ODDS_API_KEY is required")
	}
	if len(c.Schedule.Leagues) == 0 {
		return fmt.Errorf("at least one league must be configured")
	}
	if len(c.Schedule.Bookmakers) == 0 {
		return fmt.Errorf("at least one bookmaker must be configured")
	}
	if c.Schedule.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.Schedule.CacheTTL)
	}
	if c.Schedule.PollInterval < 0 || (c.Schedule.PollInterval > 0 && c.Schedule.PollInterval < 10*time.Second) {
		return fmt.Errorf("poll interval must be 0 or at least 10s, got %s", c.Schedule.PollInterval)
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	switch c.Publisher.Kind {
	case "", "none":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("redis publisher requires REDIS_ENABLED=true")
		}
	case "kafka":
		if len(c.Publisher.KafkaBrokers) == 0 {
			return fmt.Errorf("kafka publisher requires KAFKA_BROKERS")
		}
	default:
		return fmt.Errorf("unknown publisher %q", c.Publisher.Kind)
	}

	return nil
}

// Location resolves the configured time zone used for calendar days
func (c *Config) Location() (*time.Location, error) {
	if c.Schedule.TimeZone == "" || c.Schedule.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Schedule.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.Schedule.TimeZone, err)
	}
	return loc, nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
