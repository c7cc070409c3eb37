package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "fundlens", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.Equal(t, "document.ingest", cfg.RabbitMQ.DocumentQueue)
	assert.Equal(t, 512, cfg.Ingest.ChunkSize)
	assert.Equal(t, 64, cfg.Ingest.ChunkOverlap)
	assert.Equal(t, 3600, cfg.Redis.AnswerTTLSeconds)
	assert.Equal(t, 5, cfg.Search.TopK)
	assert.Equal(t, 10, cfg.Search.HistoryWindow)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("MYSQL_DB", "fundlens_test")
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("SEARCH_TOP_K", "8")
	t.Setenv("INGEST_CHUNK_OVERLAP", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "fundlens_test", cfg.MySQL.DB)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 8, cfg.Search.TopK)
	// Unparseable numeric overrides keep the default.
	assert.Equal(t, 64, cfg.Ingest.ChunkOverlap)
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL.User = "fund"
	cfg.MySQL.Password = "secret"
	cfg.MySQL.Host = "db.internal"
	cfg.MySQL.Port = 3307
	cfg.MySQL.DB = "fundlens"
	cfg.MySQL.Params = "parseTime=true"

	assert.Equal(t, "fund:secret@tcp(db.internal:3307)/fundlens?parseTime=true", cfg.MySQLDSN())
}
