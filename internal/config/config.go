package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
	MaxIdle  int    `yaml:"max_idle"`
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
}

// Config 同步服务配置
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	MQTT     MQTTConfig     `yaml:"mqtt"`

	// 时区（窗口计算和会话时间都使用同一个时区）
	Timezone string `yaml:"timezone"`

	Fit struct {
		BaseURL string `yaml:"base_url"`
		// 权威来源（精确匹配），重叠时仍然接受
		AuthoritativeSources []string `yaml:"authoritative_sources"`
		// 采样分辨率（聚合桶长度）
		Resolution time.Duration `yaml:"resolution"`
		// 子查询并发数，1 表示顺序执行
		Concurrency int           `yaml:"concurrency"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"fit"`

	Notion struct {
		BaseURL    string `yaml:"base_url"`
		Secret     string `yaml:"secret"`
		DatabaseID string `yaml:"database_id"`
		Version    string `yaml:"version"`
		// 日期属性名
		DateProperty string `yaml:"date_property"`
		// 振り返り（已回顾）复选框属性名
		ReflectionProperty string `yaml:"reflection_property"`
		// 新建页面标题前缀
		TitlePrefix string `yaml:"title_prefix"`
		// 是否写入扩展属性（安静心率、体脂率、冥想、活动汇总），数据库需要有对应列
		ExtendedProperties bool          `yaml:"extended_properties"`
		Timeout            time.Duration `yaml:"timeout"`
	} `yaml:"notion"`

	Credential struct {
		// 存储后端: redis / postgres
		Backend  string `yaml:"backend"`
		Key      string `yaml:"key"`
		TokenURI string `yaml:"token_uri"`
		// 超过该天数未更新时审计告警
		MaxAgeDays int `yaml:"max_age_days"`
	} `yaml:"credential"`

	GitHub struct {
		BaseURL   string `yaml:"base_url"`
		Token     string `yaml:"token"`
		RepoLimit int    `yaml:"repo_limit"`
		Property  string `yaml:"property"`
	} `yaml:"github"`

	Weather struct {
		BaseURL string `yaml:"base_url"`
		PrecNo  string `yaml:"prec_no"`
		BlockNo string `yaml:"block_no"`
	} `yaml:"weather"`

	Webhook struct {
		Addr     string        `yaml:"addr"`
		APIKey   string        `yaml:"api_key"`
		DedupTTL time.Duration `yaml:"dedup_ttl"`
		// 单次天气批处理的最大天数
		MaxWeatherDays int `yaml:"max_weather_days"`
	} `yaml:"webhook"`

	Batch struct {
		Delay time.Duration `yaml:"delay"`
	} `yaml:"batch"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load 加载配置
// 先设置默认值，再叠加 YAML 文件（path 为空时读取 CONFIG_FILE），最后由环境变量覆盖
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}

	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "journal"
	cfg.Database.SSLMode = "disable"

	cfg.Redis.Addr = "localhost:6379"

	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "journal-sync"
	cfg.MQTT.Topic = "journal/fit/trigger"
	cfg.MQTT.QoS = 1

	cfg.Timezone = "Asia/Tokyo"

	cfg.Fit.BaseURL = "https://www.googleapis.com/fitness/v1/users/me"
	cfg.Fit.AuthoritativeSources = []string{"AutoSleep"}
	cfg.Fit.Resolution = time.Minute
	cfg.Fit.Concurrency = 4
	cfg.Fit.Timeout = 30 * time.Second

	cfg.Notion.BaseURL = "https://api.notion.com/v1"
	cfg.Notion.Version = "2022-06-28"
	cfg.Notion.DateProperty = "日付"
	cfg.Notion.ReflectionProperty = "振り返り"
	cfg.Notion.TitlePrefix = "Google Fit Data "
	cfg.Notion.Timeout = 30 * time.Second

	cfg.Credential.Backend = "redis"
	cfg.Credential.Key = "google_fit"
	cfg.Credential.TokenURI = "https://oauth2.googleapis.com/token"
	cfg.Credential.MaxAgeDays = 90

	cfg.GitHub.BaseURL = "https://api.github.com"
	cfg.GitHub.RepoLimit = 4
	cfg.GitHub.Property = "Github"

	cfg.Weather.BaseURL = "https://www.data.jma.go.jp/stats/etrn/view"
	cfg.Weather.PrecNo = "44"
	cfg.Weather.BlockNo = "47662"

	cfg.Webhook.Addr = ":8080"
	cfg.Webhook.DedupTTL = 5 * time.Minute
	cfg.Webhook.MaxWeatherDays = 60

	cfg.Batch.Delay = 2 * time.Second

	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	return cfg
}

func applyEnv(cfg *Config) {
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Database = getEnv("DB_NAME", cfg.Database.Database)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", cfg.MQTT.Broker)
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", cfg.MQTT.ClientID)
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", cfg.MQTT.Username)
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", cfg.MQTT.Password)
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", cfg.MQTT.Topic)

	cfg.Timezone = getEnv("TIMEZONE", cfg.Timezone)

	cfg.Fit.BaseURL = getEnv("FIT_BASE_URL", cfg.Fit.BaseURL)
	if v := os.Getenv("AUTHORITATIVE_SOURCES"); v != "" {
		cfg.Fit.AuthoritativeSources = splitList(v)
	}
	cfg.Fit.Resolution = getEnvDuration("FIT_RESOLUTION", cfg.Fit.Resolution)
	cfg.Fit.Concurrency = getEnvInt("FIT_FETCH_CONCURRENCY", cfg.Fit.Concurrency)

	cfg.Notion.BaseURL = getEnv("NOTION_BASE_URL", cfg.Notion.BaseURL)
	cfg.Notion.Secret = getEnv("NOTION_SECRET", cfg.Notion.Secret)
	cfg.Notion.DatabaseID = getEnv("DATABASE_ID", cfg.Notion.DatabaseID)
	cfg.Notion.ReflectionProperty = getEnv("NOTION_REFLECTION_PROPERTY", cfg.Notion.ReflectionProperty)
	cfg.Notion.TitlePrefix = getEnv("NOTION_TITLE_PREFIX", cfg.Notion.TitlePrefix)
	if v := os.Getenv("NOTION_EXTENDED_PROPERTIES"); v != "" {
		cfg.Notion.ExtendedProperties = v == "true"
	}

	cfg.Credential.Backend = getEnv("CREDENTIAL_BACKEND", cfg.Credential.Backend)
	cfg.Credential.Key = getEnv("CREDENTIAL_KEY", cfg.Credential.Key)
	cfg.Credential.TokenURI = getEnv("OAUTH_TOKEN_URI", cfg.Credential.TokenURI)

	cfg.GitHub.BaseURL = getEnv("GITHUB_BASE_URL", cfg.GitHub.BaseURL)
	cfg.GitHub.Token = getEnv("GITHUB_TOKEN", cfg.GitHub.Token)

	cfg.Weather.BaseURL = getEnv("WEATHER_BASE_URL", cfg.Weather.BaseURL)
	cfg.Weather.PrecNo = getEnv("WEATHER_PREC_NO", cfg.Weather.PrecNo)
	cfg.Weather.BlockNo = getEnv("WEATHER_BLOCK_NO", cfg.Weather.BlockNo)

	cfg.Webhook.Addr = getEnv("WEBHOOK_ADDR", cfg.Webhook.Addr)
	if port := os.Getenv("PORT"); port != "" {
		cfg.Webhook.Addr = ":" + port
	}
	cfg.Webhook.APIKey = getEnv("WEBHOOK_API_KEY", cfg.Webhook.APIKey)
	cfg.Webhook.DedupTTL = getEnvDuration("WEBHOOK_DEDUP_TTL", cfg.Webhook.DedupTTL)

	cfg.Batch.Delay = getEnvDuration("BATCH_DELAY", cfg.Batch.Delay)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
}

// Location 解析时区，找不到时区数据库时退回固定 +09:00
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.FixedZone("JST", 9*60*60)
}

// ValidateNotion 检查 Notion 相关必填项
func (c *Config) ValidateNotion() error {
	var missing []string
	if c.Notion.Secret == "" {
		missing = append(missing, "NOTION_SECRET")
	}
	if c.Notion.DatabaseID == "" {
		missing = append(missing, "DATABASE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateGitHub 检查 GitHub 同步必填项
func (c *Config) ValidateGitHub() error {
	if err := c.ValidateNotion(); err != nil {
		return err
	}
	if c.GitHub.Token == "" {
		return fmt.Errorf("missing required configuration: GITHUB_TOKEN")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// getEnvDuration 支持 "2s" 这样的时长，也支持纯数字（按秒）
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
