package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Addr           string   `mapstructure:"addr"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
	RatePerMinute  int      `mapstructure:"rate_per_minute"`
	CookieSecure   bool     `mapstructure:"cookie_secure"`
}

type GrpcConfig struct {
	Addr string `mapstructure:"addr"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// ProviderConfig selects the chart engine. "node" runs iztro through a node
// subprocess, "file" serves JSON fixtures from FixtureDir.
type ProviderConfig struct {
	Kind       string        `mapstructure:"kind"`
	NodeBinary string        `mapstructure:"node_binary"`
	ModuleDir  string        `mapstructure:"module_dir"`
	FixtureDir string        `mapstructure:"fixture_dir"`
	Fallback   string        `mapstructure:"fixture_fallback"`
	Locale     string        `mapstructure:"locale"`
	FixLeap    bool          `mapstructure:"fix_leap"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer"`
	JWTDuration time.Duration `mapstructure:"jwt_ttl"`
}

type FormConfig struct {
	MinYear int `mapstructure:"min_year"`
	MaxYear int `mapstructure:"max_year"`
}

type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// Config holds all runtime configuration. Values come from ziwei.yaml,
// ZIWEI_* env vars (dots become underscores) and defaults.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Grpc     GrpcConfig     `mapstructure:"grpc"`
	DB       DBConfig       `mapstructure:"db"`
	Provider ProviderConfig `mapstructure:"provider"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Form     FormConfig     `mapstructure:"form"`
	Log      LogConfig      `mapstructure:"log"`
	KBPath   string         `mapstructure:"kb_path"`
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".ziwei", "data.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.trusted_proxies", []string{"127.0.0.1"})
	v.SetDefault("http.rate_per_minute", 30)
	v.SetDefault("http.cookie_secure", false)
	v.SetDefault("grpc.addr", ":9090")
	v.SetDefault("db.path", defaultDBPath())
	v.SetDefault("provider.kind", "node")
	v.SetDefault("provider.node_binary", "node")
	v.SetDefault("provider.module_dir", ".")
	v.SetDefault("provider.fixture_dir", "testdata/charts")
	v.SetDefault("provider.locale", "zh-TW")
	v.SetDefault("provider.fix_leap", true)
	v.SetDefault("provider.timeout", 10*time.Second)
	// dev default (change for production)
	v.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	v.SetDefault("auth.jwt_issuer", "ziwei")
	v.SetDefault("auth.jwt_ttl", 24*time.Hour)
	v.SetDefault("form.min_year", 1930)
	v.SetDefault("form.max_year", 2026)
	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("kb_path", "")
}

// NewViper returns a viper instance wired for ziwei: optional config file,
// env prefix and defaults.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ziwei")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".ziwei"))
		}
	}
	v.SetEnvPrefix("ZIWEI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads the config file if one exists and unmarshals everything into a
// Config. A missing default config file is not an error; a missing explicit
// one is.
func Load(configFile string) (Config, error) {
	v := NewViper(configFile)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper unmarshals an already prepared viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Form.MinYear > cfg.Form.MaxYear {
		return Config{}, fmt.Errorf("form.min_year %d > form.max_year %d", cfg.Form.MinYear, cfg.Form.MaxYear)
	}
	return cfg, nil
}
