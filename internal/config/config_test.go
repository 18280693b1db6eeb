package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/rentchain"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestLoadYamlAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(`
engine:
  fqdn: rent.example.com
  operatorPrivateKey: "`+testKey+`"
  minimumTerm: 48h
server:
  database: postgres
  postgresDsn: "host=db user=postgres"
  redisAddr: "redis:6379"
`), 0o600)
	require.NoError(t, err)

	t.Setenv("RENTCHAIN_LISTEN", ":9999")

	conf, err := Load(path)
	require.NoError(t, err)

	operator, err := rentchain.PrivKeyToAddr(testKey)
	require.NoError(t, err)

	assert.Equal(t, "rent.example.com", conf.Engine.FQDN)
	assert.Equal(t, operator, conf.Engine.Operator)
	assert.Equal(t, 48*time.Hour, conf.Engine.Term)
	assert.Equal(t, "postgres", conf.Server.Database)
	assert.Equal(t, "redis:6379", conf.Server.RedisAddr)
	assert.Equal(t, ":9999", conf.Server.Listen)

	d := conf.Domain()
	assert.Equal(t, operator, d.Operator)
	assert.True(t, d.IsOperator(operator))
}

func TestLoadDefaults(t *testing.T) {
	conf, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", conf.Server.Database)
	assert.Equal(t, 30*24*time.Hour, conf.Engine.Term)
	assert.Empty(t, conf.Engine.Operator)
}

func TestLoadRejectsUnknownDatabase(t *testing.T) {
	t.Setenv("RENTCHAIN_DATABASE", "mysql")
	_, err := Load("")
	assert.Error(t, err)
}
