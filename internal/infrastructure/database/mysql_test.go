package database

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordbase/backend/internal/config"
)

func TestBuildDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "127.0.0.1",
		DBPort:     "3306",
		DBUser:     "root",
		DBPassword: "secret",
		DBName:     "recordbase",
	}

	parsed, err := mysql.ParseDSN(BuildDSN(cfg))
	require.NoError(t, err)

	assert.Equal(t, "root", parsed.User)
	assert.Equal(t, "secret", parsed.Passwd)
	assert.Equal(t, "127.0.0.1:3306", parsed.Addr)
	assert.Equal(t, "recordbase", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, "CONCAT(@@sql_mode, ',ANSI_QUOTES')", parsed.Params["sql_mode"])
	assert.Empty(t, parsed.TLSConfig)
}

func TestIsRemoteHost(t *testing.T) {
	assert.False(t, isRemoteHost("localhost"))
	assert.False(t, isRemoteHost("127.0.0.1"))
	assert.False(t, isRemoteHost(""))
	assert.True(t, isRemoteHost("db.example.com"))
}
