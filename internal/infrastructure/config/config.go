// Package config loads service settings from defaults, an optional YAML
// file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bibbank/creditrisk/pkg/kafka"
	pgutil "github.com/bibbank/creditrisk/pkg/postgres"
	"github.com/bibbank/creditrisk/pkg/tlsutil"
)

// FileEnv names the optional YAML file applied before environment variables.
const FileEnv = "RISK_CONFIG_FILE"

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	Port     int    `yaml:"port"`
	MaxConns int32  `yaml:"max_conns"`
}

type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	EventsTopic   string   `yaml:"events_topic"`
	FeaturesTopic string   `yaml:"features_topic"`
	ConsumerGroup string   `yaml:"consumer_group"`
	SASLMechanism string   `yaml:"sasl_mechanism"`
	SASLUsername  string   `yaml:"sasl_username"`
	SASLPassword  string   `yaml:"sasl_password"`
	TLS           bool     `yaml:"tls"`
	SASLEnabled   bool     `yaml:"sasl_enabled"`
}

type TLSConfig struct {
	CertFile     string `yaml:"cert_file"`
	KeyFile      string `yaml:"key_file"`
	ClientCAFile string `yaml:"client_ca_file"`
}

type OutboxConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	BatchSize    int           `yaml:"batch_size"`
}

type ReconcileConfig struct {
	Workers   int `yaml:"workers"`
	BatchSize int `yaml:"batch_size"`
}

type Config struct {
	DB               DatabaseConfig  `yaml:"db"`
	Kafka            KafkaConfig     `yaml:"kafka"`
	TLS              TLSConfig       `yaml:"tls"`
	Outbox           OutboxConfig    `yaml:"outbox"`
	Reconcile        ReconcileConfig `yaml:"reconcile"`
	ServiceName      string          `yaml:"service_name"`
	ModelPath        string          `yaml:"model_path"`
	Environment      string          `yaml:"environment"`
	LogLevel         string          `yaml:"log_level"`
	LogFormat        string          `yaml:"log_format"`
	OTLPEndpoint     string          `yaml:"otlp_endpoint"`
	TraceSampleRatio float64         `yaml:"trace_sample_ratio"`
	GRPCPort         int             `yaml:"grpc_port"`
	HTTPPort         int             `yaml:"http_port"`
	GRPCReflection   bool            `yaml:"grpc_reflection"`
}

func defaults() Config {
	return Config{
		GRPCPort: 9095,
		HTTPPort: 8095,
		DB: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "risk",
			Name:     "creditrisk",
			SSLMode:  "require",
			MaxConns: 10,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			EventsTopic:   "risk.events",
			FeaturesTopic: "customer.features.updated",
			ConsumerGroup: "creditrisk",
			SASLMechanism: "PLAIN",
		},
		Outbox: OutboxConfig{
			PollInterval: time.Second,
			BatchSize:    100,
		},
		Reconcile: ReconcileConfig{
			Workers:   4,
			BatchSize: 500,
		},
		ServiceName:      "creditrisk",
		ModelPath:        "models/risk_classifier.json",
		Environment:      "development",
		LogLevel:         "info",
		LogFormat:        "json",
		TraceSampleRatio: 1,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// RISK_CONFIG_FILE if set, then environment variables.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv(FileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.GRPCPort = getEnvInt("GRPC_PORT", c.GRPCPort)
	c.HTTPPort = getEnvInt("HTTP_PORT", c.HTTPPort)
	c.GRPCReflection = getEnvBool("GRPC_REFLECTION", c.GRPCReflection)

	c.DB.Host = getEnv("DB_HOST", c.DB.Host)
	c.DB.Port = getEnvInt("DB_PORT", c.DB.Port)
	c.DB.User = getEnv("DB_USER", c.DB.User)
	c.DB.Password = getEnv("DB_PASSWORD", c.DB.Password)
	c.DB.Name = getEnv("DB_NAME", c.DB.Name)
	c.DB.SSLMode = getEnv("DB_SSLMODE", c.DB.SSLMode)
	c.DB.MaxConns = int32(getEnvInt("DB_MAX_CONNS", int(c.DB.MaxConns)))

	c.Kafka.Brokers = getEnvList("KAFKA_BROKERS", c.Kafka.Brokers)
	c.Kafka.EventsTopic = getEnv("KAFKA_EVENTS_TOPIC", c.Kafka.EventsTopic)
	c.Kafka.FeaturesTopic = getEnv("KAFKA_FEATURES_TOPIC", c.Kafka.FeaturesTopic)
	c.Kafka.ConsumerGroup = getEnv("KAFKA_CONSUMER_GROUP", c.Kafka.ConsumerGroup)
	c.Kafka.TLS = getEnvBool("KAFKA_TLS", c.Kafka.TLS)
	c.Kafka.SASLEnabled = getEnvBool("KAFKA_SASL_ENABLED", c.Kafka.SASLEnabled)
	c.Kafka.SASLMechanism = getEnv("KAFKA_SASL_MECHANISM", c.Kafka.SASLMechanism)
	c.Kafka.SASLUsername = getEnv("KAFKA_SASL_USERNAME", c.Kafka.SASLUsername)
	c.Kafka.SASLPassword = getEnv("KAFKA_SASL_PASSWORD", c.Kafka.SASLPassword)

	c.TLS.CertFile = getEnv("TLS_CERT_FILE", c.TLS.CertFile)
	c.TLS.KeyFile = getEnv("TLS_KEY_FILE", c.TLS.KeyFile)
	c.TLS.ClientCAFile = getEnv("TLS_CLIENT_CA_FILE", c.TLS.ClientCAFile)

	c.Outbox.PollInterval = getEnvDuration("OUTBOX_POLL_INTERVAL", c.Outbox.PollInterval)
	c.Outbox.BatchSize = getEnvInt("OUTBOX_BATCH_SIZE", c.Outbox.BatchSize)
	c.Reconcile.Workers = getEnvInt("RECONCILE_WORKERS", c.Reconcile.Workers)
	c.Reconcile.BatchSize = getEnvInt("RECONCILE_BATCH_SIZE", c.Reconcile.BatchSize)

	c.ModelPath = getEnv("ML_MODEL_PATH", c.ModelPath)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)
	c.TraceSampleRatio = getEnvFloat("OTEL_TRACES_SAMPLER_ARG", c.TraceSampleRatio)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" && c.Environment != "development" {
		errs = append(errs, errors.New("DB_PASSWORD is required outside development"))
	}
	if strings.TrimSpace(c.ModelPath) == "" {
		errs = append(errs, errors.New("ML_MODEL_PATH is required"))
	}
	for name, port := range map[string]int{"GRPC_PORT": c.GRPCPort, "HTTP_PORT": c.HTTPPort, "DB_PORT": c.DB.Port} {
		if port <= 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("%s %d is out of range", name, port))
		}
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		errs = append(errs, fmt.Errorf("trace sample ratio %v is outside [0,1]", c.TraceSampleRatio))
	}
	if c.Reconcile.Workers <= 0 {
		errs = append(errs, errors.New("RECONCILE_WORKERS must be positive"))
	}
	if c.Outbox.PollInterval <= 0 {
		errs = append(errs, errors.New("OUTBOX_POLL_INTERVAL must be positive"))
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// KafkaEnabled reports whether any broker is configured.
func (c Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

// Postgres converts the database settings for pkg/postgres.
func (c Config) Postgres() pgutil.Config {
	return pgutil.Config{
		Host:            c.DB.Host,
		Port:            c.DB.Port,
		User:            c.DB.User,
		Password:        c.DB.Password,
		Database:        c.DB.Name,
		SSLMode:         c.DB.SSLMode,
		MaxConns:        c.DB.MaxConns,
		ApplicationName: c.ServiceName,
		ConnectTimeout:  10 * time.Second,
	}
}

// KafkaClient converts the broker settings for pkg/kafka.
func (c Config) KafkaClient() kafka.Config {
	return kafka.Config{
		Brokers:       c.Kafka.Brokers,
		ConsumerGroup: c.Kafka.ConsumerGroup,
		TLS:           c.Kafka.TLS,
		SASLEnabled:   c.Kafka.SASLEnabled,
		SASLMechanism: c.Kafka.SASLMechanism,
		SASLUsername:  c.Kafka.SASLUsername,
		SASLPassword:  c.Kafka.SASLPassword,
	}
}

// ServerTLS converts the TLS settings for pkg/tlsutil.
func (c Config) ServerTLS() tlsutil.ServerConfig {
	return tlsutil.ServerConfig{
		CertFile:     c.TLS.CertFile,
		KeyFile:      c.TLS.KeyFile,
		ClientCAFile: c.TLS.ClientCAFile,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value. An explicitly empty list is
// not expressible; unset keeps the fallback.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
