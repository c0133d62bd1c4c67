package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of the environment variable, or the fallback
// when unset or blank. Used before config parsing is available.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	val = strings.TrimSpace(val)
	if val == "" {
		return fallback
	}
	return val
}
