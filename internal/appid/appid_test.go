package appid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet_Defaults(t *testing.T) {
	t.Setenv(EnvConfigName, "")

	id := Get()
	assert.Equal(t, "industrylens", id.BinaryName)
	assert.Equal(t, "industrylens", id.ConfigName)
	assert.Equal(t, "INDUSTRYLENS", id.EnvPrefix)
	assert.NotEmpty(t, id.Description)
}

func TestGet_ConfigNameOverride(t *testing.T) {
	t.Setenv(EnvConfigName, "industrylens-dev")

	id := Get()
	assert.Equal(t, "industrylens-dev", id.ConfigName)
	assert.Equal(t, "industrylens", id.BinaryName)
}

func TestIdentity_EnvKey(t *testing.T) {
	id := Identity{EnvPrefix: "INDUSTRYLENS"}
	assert.Equal(t, "INDUSTRYLENS_LOG_LEVEL", id.EnvKey("log_level"))

	id.EnvPrefix = "X_"
	assert.Equal(t, "X_PORT", id.EnvKey("port"))
}
