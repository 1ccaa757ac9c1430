package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(FileEnv, "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9095", cfg.GRPCAddr())
	assert.Equal(t, ":8095", cfg.HTTPAddr())
	assert.Equal(t, "creditrisk", cfg.DB.Name)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "customer.features.updated", cfg.Kafka.FeaturesTopic)
	assert.Equal(t, time.Second, cfg.Outbox.PollInterval)
	assert.Equal(t, 4, cfg.Reconcile.Workers)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GRPC_PORT", "7000")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_SASL_ENABLED", "true")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("ML_MODEL_PATH", "gs://models/risk.json")
	t.Setenv("HTTP_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.GRPCPort)
	assert.Equal(t, 8095, cfg.HTTPPort, "unparseable values keep the fallback")
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.SASLEnabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Outbox.PollInterval)
	assert.Equal(t, "gs://models/risk.json", cfg.ModelPath)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
grpc_port: 9200
model_path: /srv/models/risk.json
db:
  host: db.internal
  password: from-file
kafka:
  brokers: [a:9092, b:9092]
outbox:
  poll_interval: 5s
`), 0o600))
	t.Setenv(FileEnv, path)
	t.Setenv("DB_HOST", "override.internal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.GRPCPort)
	assert.Equal(t, "/srv/models/risk.json", cfg.ModelPath)
	assert.Equal(t, "override.internal", cfg.DB.Host, "env wins over the file")
	assert.Equal(t, "from-file", cfg.DB.Password)
	assert.Equal(t, 5432, cfg.DB.Port, "unset file keys keep defaults")
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Outbox.PollInterval)
}

func TestLoadYAMLErrors(t *testing.T) {
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grpc_port: [1"), 0o600))
	t.Setenv(FileEnv, path)
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "password outside development", mutate: func(c *Config) { c.Environment = "production" }, wantErr: "DB_PASSWORD"},
		{name: "empty model path", mutate: func(c *Config) { c.ModelPath = " " }, wantErr: "ML_MODEL_PATH"},
		{name: "bad port", mutate: func(c *Config) { c.GRPCPort = 70000 }, wantErr: "GRPC_PORT"},
		{name: "sample ratio", mutate: func(c *Config) { c.TraceSampleRatio = 1.5 }, wantErr: "sample ratio"},
		{name: "workers", mutate: func(c *Config) { c.Reconcile.Workers = 0 }, wantErr: "RECONCILE_WORKERS"},
		{name: "half tls", mutate: func(c *Config) { c.TLS.CertFile = "cert.pem" }, wantErr: "TLS_CERT_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClientConversions(t *testing.T) {
	cfg := defaults()
	cfg.DB.Password = "p@ss/word"
	cfg.Kafka.SASLEnabled = true
	cfg.TLS = TLSConfig{CertFile: "server.pem", KeyFile: "server.key"}

	pg := cfg.Postgres()
	assert.Equal(t, "creditrisk", pg.Database)
	assert.Equal(t, "creditrisk", pg.ApplicationName)
	assert.Contains(t, pg.DSN(), "localhost:5432/creditrisk")

	k := cfg.KafkaClient()
	assert.Equal(t, []string{"localhost:9092"}, k.Brokers)
	assert.Equal(t, "creditrisk", k.ConsumerGroup)
	assert.True(t, k.SASLEnabled)

	assert.True(t, cfg.ServerTLS().Enabled())
	assert.Equal(t, ":9095", cfg.GRPCAddr())
	assert.Equal(t, ":8095", cfg.HTTPAddr())
}
