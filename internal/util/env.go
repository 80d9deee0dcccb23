// Package util holds small helpers shared by the portal's commands and modules.
package util

import (
	"log/slog"
	"os"
	"strings"
)

// ParseBoolEnv reads a boolean environment variable, returning def when the
// variable is unset or not a recognized spelling. Recognized spellings are
// true/1/yes/on and false/0/no/off, case-insensitive; anything else logs a
// warning and falls back to def.
func ParseBoolEnv(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		slog.Warn("ParseBoolEnv: unrecognized boolean value", "key", key, "value", raw, "default", def)
		return def
	}
}
