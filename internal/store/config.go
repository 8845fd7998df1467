package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir string `yaml:"data_dir"`

	Market struct {
		Timezone  string `yaml:"timezone"`
		OpenHour  int    `yaml:"open_hour"`
		OpenMin   int    `yaml:"open_min"`
		CloseHour int    `yaml:"close_hour"`
		CloseMin  int    `yaml:"close_min"`
	} `yaml:"market"`

	Scan struct {
		CycleSeconds         int    `yaml:"cycle_seconds"`
		WindowOpenMinutes    int    `yaml:"window_open_minutes"`
		WindowClosedMinutes  int    `yaml:"window_closed_minutes"`
		MaxMentionAgeMinutes int    `yaml:"max_mention_age_minutes"`
		ReplyPaceSeconds     int    `yaml:"reply_pace_seconds"`
		ErrorCooldownSeconds int    `yaml:"error_cooldown_seconds"`
		LockFile             string `yaml:"lock_file"`
		LockTimeoutSeconds   int    `yaml:"lock_timeout_seconds"`
	} `yaml:"scan"`

	Freshness struct {
		NewsTimeoutSeconds  int `yaml:"news_timeout_seconds"`
		PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	} `yaml:"freshness"`

	Report struct {
		CacheTTLMinutes int `yaml:"cache_ttl_minutes"`
	} `yaml:"report"`

	Sentiment struct {
		Reliability struct {
			Microblog float64 `yaml:"microblog"`
			Finance   float64 `yaml:"finance"`
			General   float64 `yaml:"general"`
		} `yaml:"reliability"`
		PositiveKeywords []string `yaml:"positive_keywords"`
		NegativeKeywords []string `yaml:"negative_keywords"`
	} `yaml:"sentiment"`

	Access struct {
		AuthorizedUsers []string `yaml:"authorized_users"`
		PromoAccounts   []string `yaml:"promo_accounts"`
	} `yaml:"access"`

	Usage struct {
		ReadCap     int `yaml:"read_cap"`
		PostCapUser int `yaml:"post_cap_user"`
		PostCapApp  int `yaml:"post_cap_app"`
	} `yaml:"usage"`

	Politics struct {
		RefreshCron string `yaml:"refresh_cron"` // empty disables scheduled refresh
		MaxWorkers  int    `yaml:"max_workers"`
		CallCeiling int    `yaml:"call_ceiling"`
	} `yaml:"politics"`

	News struct {
		MaxArticles           int `yaml:"max_articles"`
		FetchTimeoutSeconds   int `yaml:"fetch_timeout_seconds"`
		MicroblogMaxResults   int `yaml:"microblog_max_results"`
		MarketDataCacheMinute int `yaml:"market_data_cache_minutes"`
	} `yaml:"news"`
}

func (c *Config) Validate() error {
	if c.Scan.CycleSeconds <= 0 {
		return fmt.Errorf("scan.cycle_seconds must be positive, got %d", c.Scan.CycleSeconds)
	}
	if c.Scan.ReplyPaceSeconds < 0 {
		return fmt.Errorf("scan.reply_pace_seconds must not be negative, got %d", c.Scan.ReplyPaceSeconds)
	}
	if c.Freshness.NewsTimeoutSeconds <= 0 || c.Freshness.PollIntervalSeconds <= 0 {
		return errors.New("freshness.news_timeout_seconds and freshness.poll_interval_seconds must be positive")
	}
	if c.Freshness.PollIntervalSeconds > c.Freshness.NewsTimeoutSeconds {
		return errors.New("freshness.poll_interval_seconds must not exceed freshness.news_timeout_seconds")
	}
	for name, w := range map[string]float64{
		"microblog": c.Sentiment.Reliability.Microblog,
		"finance":   c.Sentiment.Reliability.Finance,
		"general":   c.Sentiment.Reliability.General,
	} {
		if w <= 0 || w > 1 {
			return fmt.Errorf("sentiment.reliability.%s must be in (0,1], got %.2f", name, w)
		}
	}
	if c.Usage.ReadCap <= 0 || c.Usage.PostCapUser <= 0 || c.Usage.PostCapApp <= 0 {
		return errors.New("usage caps must be positive")
	}
	if c.Politics.MaxWorkers <= 0 || c.Politics.MaxWorkers > 8 {
		return fmt.Errorf("politics.max_workers must be in 1-8, got %d", c.Politics.MaxWorkers)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// DefaultConfig returns a config with every default applied, used by tests
// and by callers that run without a config file.
func DefaultConfig() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Market.Timezone == "" {
		c.Market.Timezone = "America/New_York"
	}
	if c.Market.OpenHour == 0 && c.Market.OpenMin == 0 {
		c.Market.OpenHour, c.Market.OpenMin = 9, 30
	}
	if c.Market.CloseHour == 0 && c.Market.CloseMin == 0 {
		c.Market.CloseHour = 16
	}
	if c.Scan.CycleSeconds == 0 {
		c.Scan.CycleSeconds = 270
	}
	if c.Scan.WindowOpenMinutes == 0 {
		c.Scan.WindowOpenMinutes = 5
	}
	if c.Scan.WindowClosedMinutes == 0 {
		c.Scan.WindowClosedMinutes = 65
	}
	if c.Scan.MaxMentionAgeMinutes == 0 {
		c.Scan.MaxMentionAgeMinutes = 5
	}
	if c.Scan.ReplyPaceSeconds == 0 {
		c.Scan.ReplyPaceSeconds = 55
	}
	if c.Scan.ErrorCooldownSeconds == 0 {
		c.Scan.ErrorCooldownSeconds = 60
	}
	if c.Scan.LockFile == "" {
		c.Scan.LockFile = "mention_bot.lock"
	}
	if c.Scan.LockTimeoutSeconds == 0 {
		c.Scan.LockTimeoutSeconds = 30
	}
	if c.Freshness.NewsTimeoutSeconds == 0 {
		c.Freshness.NewsTimeoutSeconds = 30
	}
	if c.Freshness.PollIntervalSeconds == 0 {
		c.Freshness.PollIntervalSeconds = 2
	}
	if c.Report.CacheTTLMinutes == 0 {
		c.Report.CacheTTLMinutes = 10
	}
	if c.Sentiment.Reliability.Microblog == 0 {
		c.Sentiment.Reliability.Microblog = 0.7
	}
	if c.Sentiment.Reliability.Finance == 0 {
		c.Sentiment.Reliability.Finance = 1.0
	}
	if c.Sentiment.Reliability.General == 0 {
		c.Sentiment.Reliability.General = 0.9
	}
	if c.Usage.ReadCap == 0 {
		c.Usage.ReadCap = 15000
	}
	if c.Usage.PostCapUser == 0 {
		c.Usage.PostCapUser = 3000
	}
	if c.Usage.PostCapApp == 0 {
		c.Usage.PostCapApp = 50000
	}
	if c.Politics.MaxWorkers == 0 {
		c.Politics.MaxWorkers = 3
	}
	if c.Politics.CallCeiling == 0 {
		c.Politics.CallCeiling = 30
	}
	if c.News.MaxArticles == 0 {
		c.News.MaxArticles = 15
	}
	if c.News.FetchTimeoutSeconds == 0 {
		c.News.FetchTimeoutSeconds = 30
	}
	if c.News.MicroblogMaxResults == 0 {
		c.News.MicroblogMaxResults = 50
	}
	if c.News.MarketDataCacheMinute == 0 {
		c.News.MarketDataCacheMinute = 5
	}
}
