package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"IntelPull/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Scheduler struct {
		Enabled      bool          `yaml:"enabled"`
		TickInterval time.Duration `yaml:"tick_interval"`
		UTCOffset    int           `yaml:"utc_offset"` // hours relative to UTC, -5 for EST
	} `yaml:"scheduler"`
	OpenAI struct {
		APIKey      string        `yaml:"api_key"`
		BaseURL     string        `yaml:"base_url"`
		MiniModel   string        `yaml:"mini_model"`
		DeepModel   string        `yaml:"deep_model"`
		Timeout     time.Duration `yaml:"timeout"`
		MaxAttempts int           `yaml:"max_attempts"`
	} `yaml:"openai"`
	News struct {
		APIKey   string        `yaml:"api_key"`
		BaseURL  string        `yaml:"base_url"`
		Query    string        `yaml:"query"`
		PageSize int           `yaml:"page_size"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"news"`
	Finnhub struct {
		APIKey         string        `yaml:"api_key"`
		BaseURL        string        `yaml:"base_url"`
		Symbols        []string      `yaml:"symbols"`
		Timeout        time.Duration `yaml:"timeout"`
		Stream         bool          `yaml:"stream"`
		WebSocketURL   string        `yaml:"websocket_url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"finnhub"`
	OpenSky struct {
		BaseURL    string        `yaml:"base_url"`
		Prefixes   []string      `yaml:"prefixes"`
		MaxFlights int           `yaml:"max_flights"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"opensky"`
	Reddit struct {
		ClientID   string        `yaml:"client_id"`
		Secret     string        `yaml:"secret"`
		AuthURL    string        `yaml:"auth_url"`
		SearchURL  string        `yaml:"search_url"`
		Subreddits []string      `yaml:"subreddits"`
		Query      string        `yaml:"query"`
		Limit      int           `yaml:"limit"`
		UserAgent  string        `yaml:"user_agent"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"reddit"`
	Cache struct {
		NewsTTL    time.Duration `yaml:"news_ttl"`
		QuoteTTL   time.Duration `yaml:"quote_ttl"`
		FlightTTL  time.Duration `yaml:"flight_ttl"`
		SocialTTL  time.Duration `yaml:"social_ttl"`
		MemMaxSize int           `yaml:"mem_max_size"`
		Redis      struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	return &c, nil
}

// LoadWithEnv loads config from YAML, overrides with environment variables
// and validates the result. Credentials normally arrive via environment, so
// validation must run after the overrides.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		c.News.APIKey = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("REDDIT_CLIENT_ID"); v != "" {
		c.Reddit.ClientID = v
	}
	if v := os.Getenv("REDDIT_SECRET"); v != "" {
		c.Reddit.Secret = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Finnhub.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Scheduler.TickInterval <= 0 {
		c.Scheduler.TickInterval = time.Minute
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.MiniModel == "" {
		c.OpenAI.MiniModel = "gpt-4o-mini"
	}
	if c.OpenAI.DeepModel == "" {
		c.OpenAI.DeepModel = "gpt-4o"
	}
	if c.OpenAI.Timeout <= 0 {
		c.OpenAI.Timeout = 60 * time.Second
	}
	if c.OpenAI.MaxAttempts <= 0 {
		c.OpenAI.MaxAttempts = 1
	}
	if c.News.BaseURL == "" {
		c.News.BaseURL = "https://newsapi.org/v2"
	}
	if c.News.Query == "" {
		c.News.Query = "military OR troops OR deployment OR strike OR conflict OR defense"
	}
	if c.News.PageSize <= 0 {
		c.News.PageSize = 50
	}
	if c.Finnhub.BaseURL == "" {
		c.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if len(c.Finnhub.Symbols) == 0 {
		c.Finnhub.Symbols = []string{"LMT", "RTX", "NOC", "GD", "BA", "HII", "LHX"}
	}
	if c.Finnhub.WebSocketURL == "" {
		c.Finnhub.WebSocketURL = "wss://ws.finnhub.io"
	}
	if c.Finnhub.ReconnectDelay <= 0 {
		c.Finnhub.ReconnectDelay = 5 * time.Second
	}
	if c.Finnhub.PingInterval <= 0 {
		c.Finnhub.PingInterval = 30 * time.Second
	}
	if c.OpenSky.BaseURL == "" {
		c.OpenSky.BaseURL = "https://opensky-network.org/api"
	}
	if len(c.OpenSky.Prefixes) == 0 {
		c.OpenSky.Prefixes = []string{"AE", "15", "16"}
	}
	if c.OpenSky.MaxFlights <= 0 {
		c.OpenSky.MaxFlights = 50
	}
	if c.Reddit.AuthURL == "" {
		c.Reddit.AuthURL = "https://www.reddit.com/api/v1/access_token"
	}
	if c.Reddit.SearchURL == "" {
		c.Reddit.SearchURL = "https://oauth.reddit.com"
	}
	if len(c.Reddit.Subreddits) == 0 {
		c.Reddit.Subreddits = []string{"worldnews", "geopolitics", "military"}
	}
	if c.Reddit.Query == "" {
		c.Reddit.Query = "military OR troops OR deployment"
	}
	if c.Reddit.Limit <= 0 {
		c.Reddit.Limit = 25
	}
	if c.Reddit.UserAgent == "" {
		c.Reddit.UserAgent = "intelpull/1.0"
	}
	if c.Cache.NewsTTL <= 0 {
		c.Cache.NewsTTL = 2 * time.Minute
	}
	if c.Cache.QuoteTTL <= 0 {
		c.Cache.QuoteTTL = 30 * time.Second
	}
	if c.Cache.FlightTTL <= 0 {
		c.Cache.FlightTTL = time.Minute
	}
	if c.Cache.SocialTTL <= 0 {
		c.Cache.SocialTTL = 2 * time.Minute
	}
	if c.Cache.MemMaxSize <= 0 {
		c.Cache.MemMaxSize = 1000
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	if len(c.Finnhub.Symbols) == 0 {
		return fmt.Errorf("finnhub.symbols cannot be empty")
	}
	if c.Scheduler.UTCOffset < -12 || c.Scheduler.UTCOffset > 14 {
		return fmt.Errorf("scheduler.utc_offset out of range: %d", c.Scheduler.UTCOffset)
	}
	return nil
}
