package config

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Compare  CompareConfig  `mapstructure:"compare"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Units    UnitsConfig    `mapstructure:"units"`
	Tickets  TicketsConfig  `mapstructure:"tickets"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Port     uint           `mapstructure:"port"`
	HttpLog  bool           `mapstructure:"http_log"`
}

type UpstreamConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	FixturesFile  string `mapstructure:"fixtures_file"`
	TimeoutMillis uint32 `mapstructure:"timeout_millis"`
}

type CompareConfig struct {
	FetchTimeoutMillis uint32 `mapstructure:"fetch_timeout_millis"`
	SessionIdleMinutes uint32 `mapstructure:"session_idle_minutes"`
}

type CatalogConfig struct {
	RefreshIntervalSeconds uint32 `mapstructure:"refresh_interval_seconds"`
}

type UnitsConfig struct {
	Precision int `mapstructure:"precision"`
}

type TicketsConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type MQTTConfig struct {
	Enable    bool
	Host      string
	Port      int
	Username  string
	Password  string
	BaseTopic string `mapstructure:"base_topic"`
}

func (c UpstreamConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMillis) * time.Millisecond
}

func (c CompareConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMillis) * time.Millisecond
}

func (c CompareConfig) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

func (c CatalogConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// Validate checks the bounds of the numeric settings.
func (c *Config) Validate() error {
	if c.Upstream.TimeoutMillis < 100 {
		return errors.New("config param upstream.timeout_millis should be >= 100")
	}
	if c.Compare.FetchTimeoutMillis < 500 {
		return errors.New("config param compare.fetch_timeout_millis should be >= 500")
	}
	if c.Compare.SessionIdleMinutes == 0 {
		return errors.New("config param compare.session_idle_minutes should be > 0")
	}
	if c.Catalog.RefreshIntervalSeconds != 0 && c.Catalog.RefreshIntervalSeconds < 60 {
		return errors.New("config param catalog.refresh_interval_seconds should be 0 (disabled) or >= 60")
	}
	if c.Units.Precision < 0 || c.Units.Precision > 9 {
		return errors.New("config param units.precision should be between 0 and 9")
	}
	if c.Upstream.BaseURL == "" && c.Upstream.FixturesFile == "" {
		return errors.New("one of upstream.base_url or upstream.fixtures_file is required")
	}
	if c.Tickets.DBPath == "" {
		return errors.New("config param tickets.db_path is required")
	}
	return nil
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
