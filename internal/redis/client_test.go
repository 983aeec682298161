package redisclient

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/HouseOfSounds/VitaeEMR/internal/config"
)

func TestOptionsFromConfig(t *testing.T) {
	opts := options(config.Config{
		RedisAddr:     "cache:6380",
		RedisUsername: "emr",
		RedisPassword: "pw",
	})

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "emr", opts.Username)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 0, opts.DB)
}
