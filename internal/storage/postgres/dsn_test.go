package postgres

import (
	"testing"

	"github.com/GoSim-25-26J-441/image-studio-backend/config"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "studio"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=studio sslmode=disable", DSN(cfg))

	cfg.DSN = "postgres://u:p@db/studio"
	assert.Equal(t, "postgres://u:p@db/studio", DSN(cfg))
}
