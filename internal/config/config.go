package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// BackendConfig points at the hosted auth and data service.
type BackendConfig struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	JWTSecret      string
	ProfileTable   string
	Timeout        time.Duration
}

type SessionConfig struct {
	CookieName    string
	TTL           time.Duration
	Secure        bool
	SigningSecret string
	BusyTTL       time.Duration
	RefreshLeeway time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

type StorageConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	Region     string
	PresignTTL time.Duration
}

// AssetsConfig holds the object keys served from storage and the URLs used
// when no storage endpoint is configured.
type AssetsConfig struct {
	LogoObject      string
	LoginHeroObject string
	HomeHeroObject  string
	LogoURL         string
	LoginHeroURL    string
	HomeHeroURL     string
}

type DashboardConfig struct {
	RefreshSpec string
	CacheTTL    time.Duration
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Backend          BackendConfig
	Session          SessionConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Assets           AssetsConfig
	Dashboard        DashboardConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("ELRETIRO")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, decoderOptions); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("config: backend.url is required")
	}
	if c.Backend.AnonKey == "" {
		return fmt.Errorf("config: backend.anonkey is required")
	}
	if c.Session.SigningSecret == "" {
		return fmt.Errorf("config: session.signingsecret is required")
	}
	return nil
}

func decoderOptions(dc *mapstructure.DecoderConfig) {
	dc.TagName = "mapstructure"
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("backend.url", "")
	v.SetDefault("backend.anonkey", "")
	v.SetDefault("backend.servicerolekey", "")
	v.SetDefault("backend.jwtsecret", "")
	v.SetDefault("backend.profiletable", "profiles")
	v.SetDefault("backend.timeout", "15s")

	v.SetDefault("session.cookiename", "retiro_session")
	v.SetDefault("session.ttl", "720h") // 30 days
	v.SetDefault("session.secure", true)
	v.SetDefault("session.signingsecret", "")
	v.SetDefault("session.busyttl", "30s")
	v.SetDefault("session.refreshleeway", "60s")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "console:auth-events")

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucket", "retiro-assets")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.presignttl", "1h")

	v.SetDefault("assets.logoobject", "logo_retiro.png")
	v.SetDefault("assets.loginheroobject", "login-hero.jpg")
	v.SetDefault("assets.homeheroobject", "home-hero.jpg")
	v.SetDefault("assets.logourl", "")
	v.SetDefault("assets.loginherourl", "https://images.unsplash.com/photo-1542601906990-b4d3fb778b09?w=600&q=80")
	v.SetDefault("assets.homeherourl", "https://images.unsplash.com/photo-1464638681273-0962e9b53566?w=800&q=80")

	v.SetDefault("dashboard.refreshspec", "0 */1 * * * *")
	v.SetDefault("dashboard.cachettl", "2m")

	v.SetDefault("allowcorsorigins", []string{})
}
