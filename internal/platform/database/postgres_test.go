package database

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "app", Password: "secret", DBName: "seathold"}

	assert.Equal(t, "postgres://app:secret@db:5432/seathold?sslmode=disable", cfg.DSN())
}

func TestConfig_DSNEscapesCredentials(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "app:ro", Password: "p@ss/w:rd?#", DBName: "seathold", SSLMode: "require"}

	u, err := url.Parse(cfg.DSN())
	require.NoError(t, err)

	pass, ok := u.User.Password()
	assert.True(t, ok)
	assert.Equal(t, "p@ss/w:rd?#", pass)
	assert.Equal(t, "app:ro", u.User.Username())
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/seathold", u.Path)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
}
