package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Defaults for values the config file does not set.
const (
	DefaultNamenodePort     = 8020
	DefaultNamenodeHTTPPort = 9870
	DefaultProxyPort        = 1080
	DefaultNamenodeHost     = "localhost"
	DefaultLogLevel         = "warn"
	DefaultTimeout          = 30 * time.Second
	DefaultRetries          = 2
	DefaultDuConcurrency    = 4

	// ConfigPathEnv overrides the default config file location.
	ConfigPathEnv = "HDFSH_CONFIG"
)

// Endpoint is a host with its namenode RPC and HTTP ports. Proxy endpoints
// only use Port.
type Endpoint struct {
	Host     string `validate:"required"`
	Port     int    `validate:"gt=0,lte=65535"`
	HTTPPort int    `validate:"gte=0,lte=65535"`
}

// Addr returns host:port.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// HTTPAddr returns host:httpPort.
func (e Endpoint) HTTPAddr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.HTTPPort))
}

// Config holds the resolved settings for one invocation.
type Config struct {
	// User is the remote identity; the default working directory is
	// /user/<User>.
	User string `validate:"required"`

	// Namenodes are tried in order; more than one means HA.
	Namenodes []Endpoint `validate:"required,min=1,dive"`

	// Proxy is an optional SOCKS5 proxy for all namenode traffic.
	Proxy *Endpoint `validate:"omitempty"`

	WorkdirFile     string        `validate:"required"`
	LogLevel        string        `validate:"required"`
	Timeout         time.Duration `validate:"gt=0"`
	Retries         int           `validate:"gte=0"`
	DuConcurrency   int           `validate:"gte=1"`
	MetricsTextfile string

	// File is the config file that was read, empty if none existed.
	File string
}

var validate = validator.New()

// Load reads the TOML config file at path (or the default location when
// path is empty) and fills anything it leaves unset from discovery: the
// Hadoop client configuration and the process environment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path == "" {
		path = DefaultConfigPath()
	}

	v := viper.New()
	setDefaults(v)

	file, err := readConfigFile(v, path)
	if err != nil {
		return nil, err
	}

	disc := discover()

	cfg := &Config{
		User:            v.GetString("hdfs.user"),
		WorkdirFile:     v.GetString("workdir.file"),
		LogLevel:        strings.ToLower(v.GetString("log.level")),
		Timeout:         v.GetDuration("client.timeout"),
		Retries:         v.GetInt("client.retries"),
		DuConcurrency:   v.GetInt("du.concurrency"),
		MetricsTextfile: v.GetString("metrics.textfile"),
		File:            file,
	}
	if cfg.User == "" {
		cfg.User = disc.User
	}

	if hosts := v.GetString("namenode.host"); hosts != "" {
		for _, h := range strings.Split(hosts, ",") {
			if h = strings.TrimSpace(h); h == "" {
				continue
			}
			cfg.Namenodes = append(cfg.Namenodes, Endpoint{
				Host:     h,
				Port:     v.GetInt("namenode.port"),
				HTTPPort: v.GetInt("namenode.http.port"),
			})
		}
	} else if len(disc.Namenodes) > 0 {
		cfg.Namenodes = disc.Namenodes
	} else {
		cfg.Namenodes = []Endpoint{{
			Host:     DefaultNamenodeHost,
			Port:     v.GetInt("namenode.port"),
			HTTPPort: v.GetInt("namenode.http.port"),
		}}
	}

	if host := v.GetString("proxy.host"); host != "" {
		cfg.Proxy = &Endpoint{Host: host, Port: v.GetInt("proxy.port")}
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("namenode.port", DefaultNamenodePort)
	v.SetDefault("namenode.http.port", DefaultNamenodeHTTPPort)
	v.SetDefault("proxy.port", DefaultProxyPort)
	v.SetDefault("workdir.file", filepath.Join(GetConfigDir(), "cwd"))
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("client.timeout", DefaultTimeout)
	v.SetDefault("client.retries", DefaultRetries)
	v.SetDefault("du.concurrency", DefaultDuConcurrency)
}

// readConfigFile loads path into v. A missing file is not an error; the
// returned name is empty in that case.
func readConfigFile(v *viper.Viper, path string) (string, error) {
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config file: %w", err)
	}
	return path, nil
}

// Validate checks struct tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)", e.Namespace(), e.Tag(), e.Value())
		}
		return err
	}
	return nil
}

// GetConfigDir returns $XDG_CONFIG_HOME/hdfsh, ~/.config/hdfsh, or "." if
// no home directory can be found.
func GetConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hdfsh")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "hdfsh")
}

// DefaultConfigPath returns the config file read when none is given.
func DefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.toml")
}
