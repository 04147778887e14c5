package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("DISCOBALL_TEST_SET", "value")
	t.Setenv("DISCOBALL_TEST_EMPTY", "")

	assert.Equal(t, "value", GetEnv("DISCOBALL_TEST_SET", "fallback"))
	assert.Equal(t, "", GetEnv("DISCOBALL_TEST_EMPTY", "fallback"), "set but empty is still set")
	assert.Equal(t, "fallback", GetEnv("DISCOBALL_TEST_UNSET", "fallback"))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("DISCOBALL_TEST_TIMEOUT", "30s")
	t.Setenv("DISCOBALL_TEST_BAD", "soon")
	t.Setenv("DISCOBALL_TEST_NEG", "-1s")

	assert.Equal(t, 30*time.Second, GetEnvDuration("DISCOBALL_TEST_TIMEOUT", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("DISCOBALL_TEST_BAD", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("DISCOBALL_TEST_NEG", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("DISCOBALL_TEST_UNSET", time.Second))
}
