// Package featureflags reads operator toggles from the environment.
package featureflags

import (
	"os"
	"strings"
)

// Known flags
const (
	// HostCache serves tenant host lookups from Redis
	HostCache = "host_cache"
)

// lookup is replaced in tests
var lookup = os.LookupEnv

// Enabled reports whether FLAG_<NAME> is set to 1, true, yes or on
// (case-insensitive). Unset or any other value means disabled.
func Enabled(name string) bool {
	v, ok := lookup("FLAG_" + strings.ToUpper(name))
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
