// Package appid holds the identity strings shared by the CLI, the config
// loader and the HTTP service.
package appid

import (
	"os"
	"strings"
)

const (
	// BinaryName is the command name and the default service name in logs.
	BinaryName = "industrylens"

	// ConfigName is the directory name used under the XDG config root.
	ConfigName = "industrylens"

	// EnvPrefix prefixes every environment override (INDUSTRYLENS_PORT, ...).
	EnvPrefix = "INDUSTRYLENS"

	// Description is shown in CLI help.
	Description = "Industry overviews and financial table explanations from a language model"

	// EnvConfigName overrides ConfigName, mostly for tests and side-by-side installs.
	EnvConfigName = EnvPrefix + "_CONFIG_NAME"
)

// Identity describes how the binary names itself.
type Identity struct {
	BinaryName  string
	ConfigName  string
	EnvPrefix   string
	Description string
}

// Get returns the active identity.
func Get() Identity {
	id := Identity{
		BinaryName:  BinaryName,
		ConfigName:  ConfigName,
		EnvPrefix:   EnvPrefix,
		Description: Description,
	}
	if name := strings.TrimSpace(os.Getenv(EnvConfigName)); name != "" {
		id.ConfigName = name
	}
	return id
}

// EnvKey returns the prefixed environment variable name for key.
func (i Identity) EnvKey(key string) string {
	prefix := i.EnvPrefix
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return prefix + strings.ToUpper(key)
}
