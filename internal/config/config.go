package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"log-receiver/internal/logging"
	"log-receiver/internal/sink/kafka"
	"log-receiver/internal/sink/opensearch"
)

const (
	DefaultListenAddr        = "0.0.0.0:5560"
	DefaultPath              = "/logs"
	DefaultKafkaTopic        = "remote-logs"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

var (
	errMissingListenAddr = errors.New("server.listen_addr must be specified")
	errInvalidPath       = errors.New(`server.path must be an exact path starting with "/", without a trailing "/", braces or whitespace`)
	errNegativeBodyLimit = errors.New("server.max_body_bytes must not be negative")
	errNoSinks           = errors.New("at least one sink must be enabled")
)

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Path       string `yaml:"path"`
	// Zero means unlimited.
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type ConsoleConfig struct {
	Enabled bool `yaml:"enabled"`
}

type SinksConfig struct {
	Console    ConsoleConfig     `yaml:"console"`
	Kafka      kafka.Config      `yaml:"kafka"`
	OpenSearch opensearch.Config `yaml:"opensearch"`
}

type Config struct {
	Server      ServerConfig   `yaml:"server"`
	MetricsAddr string         `yaml:"metrics_addr"`
	Log         logging.Config `yaml:"log"`
	Sinks       SinksConfig    `yaml:"sinks"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:        DefaultListenAddr,
			Path:              DefaultPath,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			ShutdownTimeout:   DefaultShutdownTimeout,
		},
		Log:   logging.Config{Level: "info"},
		Sinks: SinksConfig{Console: ConsoleConfig{Enabled: true}},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("LISTEN_ADDR"); ok {
		cfg.Server.ListenAddr = v
	}
	if v, ok := lookup("METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup("MAX_BODY_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_BODY_BYTES %q: %w", v, err)
		}
		cfg.Server.MaxBodyBytes = n
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok {
		cfg.Sinks.Kafka.Brokers = splitList(v)
	}
	if v, ok := lookup("KAFKA_TOPIC"); ok {
		cfg.Sinks.Kafka.Topic = v
	}
	if v, ok := lookup("OPENSEARCH_ADDR"); ok {
		cfg.Sinks.OpenSearch.Addresses = splitList(v)
	}
	return nil
}

func (cfg *Config) Validate() error {
	if cfg.Server.ListenAddr == "" {
		return errMissingListenAddr
	}

	if cfg.Server.Path == "" {
		cfg.Server.Path = DefaultPath
	}
	if !validPath(cfg.Server.Path) {
		return errInvalidPath
	}

	if cfg.Server.MaxBodyBytes < 0 {
		return errNegativeBodyLimit
	}

	if cfg.Server.ReadHeaderTimeout <= 0 {
		cfg.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.KafkaEnabled() && cfg.Sinks.Kafka.Topic == "" {
		cfg.Sinks.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.OpenSearchEnabled() && cfg.Sinks.OpenSearch.IndexPrefix == "" {
		cfg.Sinks.OpenSearch.IndexPrefix = opensearch.DefaultIndexPrefix
	}

	if !cfg.Sinks.Console.Enabled && !cfg.KafkaEnabled() && !cfg.OpenSearchEnabled() {
		return errNoSinks
	}

	return nil
}

func (cfg *Config) KafkaEnabled() bool {
	return len(cfg.Sinks.Kafka.Brokers) > 0
}

func (cfg *Config) OpenSearchEnabled() bool {
	return len(cfg.Sinks.OpenSearch.Addresses) > 0
}

// validPath accepts only exact mux paths: a trailing "/" would register a
// subtree and braces are wildcard syntax.
func validPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") {
		return false
	}
	if strings.ContainsAny(p, "{}") {
		return false
	}
	return strings.IndexFunc(p, unicode.IsSpace) < 0
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
