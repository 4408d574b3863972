package storage

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/leave-approvals/internal/config"
)

func TestNewMemory(t *testing.T) {
	s := NewMemory()

	assert.NotNil(t, s.Approvals)
	assert.NotNil(t, s.Notifications)
	assert.NotNil(t, s.Delegations)
	assert.NotNil(t, s.Audits)
	assert.NotNil(t, s.Inbox)
	assert.NoError(t, s.Close())
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(&config.Config{Storage: config.Storage{Driver: "memory"}})
	require.NoError(t, err)
	assert.NotNil(t, s.Approvals)

	_, err = Open(&config.Config{Storage: config.Storage{Driver: "sqlite"}})
	assert.Error(t, err)
}

func TestNewPostgres_Close(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	s := NewPostgres(&dbpg.DB{Master: db})
	assert.NotNil(t, s.Notifications)

	assert.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
