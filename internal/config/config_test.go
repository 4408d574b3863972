package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))

	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, ":8080", cfg.Server.HTTPPort)
	assert.Equal(t, 500, cfg.Queue.Capacity)
	assert.Equal(t, 3, cfg.Queue.MaxAttempts)
	assert.Equal(t, 30*24*time.Hour, cfg.Queue.TTL)
	assert.Equal(t, 24*time.Hour, cfg.Escalation.ApproverAfter)
	assert.Equal(t, 72*time.Hour, cfg.Escalation.OversightAfter)
	assert.Equal(t, []string{"hr_manager", "hr_director"}, cfg.Escalation.OversightRoles)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, zerolog.InfoLevel, cfg.Log.ZerologLevel())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := writeConfig(t, `
log:
  level: debug
storage:
  driver: postgres
database:
  master:
    host: db
    port: "5432"
    user: u
    pass: p
    name: approvals
    ssl_mode: disable
queue:
  capacity: 50
escalation:
  approver_after: 12h
  oversight_after: 48h
directory:
  - id: sup-1
    email: sup@example.com
    role: supervisor
    active: true
approvers:
  supervisor: sup-1
`)

	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Master.Host)
	assert.Equal(t, "postgres://u:p@db.internal:5432/approvals?sslmode=disable", cfg.Database.Master.DSN())
	assert.Equal(t, 50, cfg.Queue.Capacity)
	assert.Equal(t, 50, cfg.Queue.BatchSize)
	assert.Equal(t, 12*time.Hour, cfg.Escalation.ApproverAfter)
	assert.Equal(t, zerolog.DebugLevel, cfg.Log.ZerologLevel())

	require.Len(t, cfg.Directory, 1)
	assert.Equal(t, "sup-1", cfg.Directory[0].UserID)
	assert.Equal(t, "supervisor", cfg.Directory[0].Role)
	assert.True(t, cfg.Directory[0].Active)
	assert.Equal(t, "sup-1", cfg.Approvers["supervisor"])
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown driver": "storage:\n  driver: sqlite\n",
		"thresholds":     "escalation:\n  approver_after: 72h\n  oversight_after: 24h\n",
		"log level":      "log:\n  level: loud\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestRabbitMQ_URL(t *testing.T) {
	r := RabbitMQ{User: "guest", Password: "secret", Host: "mq", Port: 5672}
	assert.Equal(t, "amqp://guest:secret@mq:5672", r.URL())
}
