package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"CONFIG_FILE", "APP_PORT", "WEBHOOK_URL", "UPLOAD_WEBHOOK_URL", "UPLOAD_MAX_BYTES",
	"TABLE_STORE_DRIVER", "TABLE_STORE_TABLE",
	"SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL", "SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY",
	"MYSQL_HOST", "MYSQL_DB", "REDIS_ADDR", "RABBITMQ_URL", "JWT_SECRET", "LOG_LEVEL",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
}

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/chat")
	t.Setenv("UPLOAD_WEBHOOK_URL", "https://hooks.example.com/upload")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
}

func TestLoadFromEnvironment(t *testing.T) {
	clearConfigEnv(t)
	setValidEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://hooks.example.com/chat", cfg.Webhook.ChatURL)
	assert.Equal(t, "https://hooks.example.com/upload", cfg.Webhook.UploadURL)
	assert.Equal(t, TableStoreREST, cfg.TableStore.Driver)
	assert.Equal(t, "documents", cfg.TableStore.Table)
	assert.Equal(t, "anon-key", cfg.TableStore.APIKey)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.RabbitMQEnabled())
	assert.False(t, cfg.AuthEnabled())
}

func TestLoadTrimsAndPrefersPublicSupabaseNames(t *testing.T) {
	clearConfigEnv(t)
	setValidEnv(t)
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "  https://public.supabase.co  ")
	t.Setenv("NEXT_PUBLIC_SUPABASE_ANON_KEY", "\tpublic-key\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://public.supabase.co", cfg.TableStore.URL)
	assert.Equal(t, "public-key", cfg.TableStore.APIKey)
}

func TestLoadFailsWithoutTableStoreCredentials(t *testing.T) {
	clearConfigEnv(t)
	setValidEnv(t)
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table_store.url is required")
	assert.Contains(t, err.Error(), "table_store.api_key is required")
}

func TestLoadFailsOnMalformedTableStoreURL(t *testing.T) {
	clearConfigEnv(t)
	setValidEnv(t)
	t.Setenv("SUPABASE_URL", "project.supabase.co")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table_store.url")
}

func TestLoadFailsWithoutWebhooks(t *testing.T) {
	clearConfigEnv(t)
	setValidEnv(t)
	t.Setenv("WEBHOOK_URL", "")
	t.Setenv("UPLOAD_WEBHOOK_URL", "ftp://hooks.example.com/upload")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook.chat_url is required")
	assert.Contains(t, err.Error(), "webhook.upload_url must use http or https")
}

func TestLoadMySQLDriverDoesNotNeedRESTCredentials(t *testing.T) {
	clearConfigEnv(t)
	setValidEnv(t)
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("TABLE_STORE_DRIVER", "MySQL")
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_DB", "docchat")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, TableStoreMySQL, cfg.TableStore.Driver)
	assert.Equal(t, "root:@tcp(db.internal:3306)/docchat?parseTime=true&loc=Local&charset=utf8mb4", cfg.MySQLDSN())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearConfigEnv(t)
	setValidEnv(t)
	t.Setenv("TABLE_STORE_DRIVER", "sqlite")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown table_store.driver "sqlite"`)
}

func TestLoadFromTOMLFileWithEnvOverride(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
port = 9090

[webhook]
chat_url = "https://file.example.com/chat"
upload_url = "https://file.example.com/upload"

[table_store]
url = "https://file.supabase.co"
api_key = "file-key"
table = "docs"

[redis]
addr = "127.0.0.1:6379"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("WEBHOOK_URL", "https://env.example.com/chat")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "https://env.example.com/chat", cfg.Webhook.ChatURL)
	assert.Equal(t, "https://file.example.com/upload", cfg.Webhook.UploadURL)
	assert.Equal(t, "docs", cfg.TableStore.Table)
	assert.True(t, cfg.RedisEnabled())
}

func TestGetEnvAsIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("APP_PORT", "eighty")
	assert.Equal(t, 8080, getEnvAsInt(8080, "APP_PORT"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestFanoutLoggerWritesBothSinks(t *testing.T) {
	var text, jsonOut bytes.Buffer
	logger := newFanoutLogger(&text, &jsonOut, slog.LevelInfo)

	logger.Info("relay ready", "port", 8080)
	logger.Debug("hidden")

	assert.Contains(t, text.String(), "relay ready")
	assert.Contains(t, jsonOut.String(), `"msg":"relay ready"`)
	assert.NotContains(t, text.String(), "hidden")
}

func TestSetupLoggerWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.log")
	logger, closeLog := SetupLogger(LogConfig{Level: "debug", File: path})
	logger.Debug("upload relayed", "filename", "a.pdf")
	require.NoError(t, closeLog())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"upload relayed"`)
	assert.Contains(t, string(raw), `"filename":"a.pdf"`)
}
